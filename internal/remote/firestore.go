package remote

import (
	"context"
	"fmt"

	"github.com/ldi/gotask/pkg/models"
	"google.golang.org/api/firestore/v1"
	"google.golang.org/api/option"
)

// maxCommitWrites is the Firestore limit on writes per commit.
const maxCommitWrites = 500

const listPageSize = 300

// FirestoreStore keeps each task as a document under
// users/{uid}/tasks/{id} using the Firestore REST API.
type FirestoreStore struct {
	srv       *firestore.Service
	projectID string
}

// NewFirestoreStore creates a store for projectID. Pass option.WithHTTPClient
// with an authorized client (see the auth package).
func NewFirestoreStore(ctx context.Context, projectID string, opts ...option.ClientOption) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore project id is required")
	}
	srv, err := firestore.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create firestore service: %w", err)
	}
	return &FirestoreStore{srv: srv, projectID: projectID}, nil
}

func (s *FirestoreStore) database() string {
	return fmt.Sprintf("projects/%s/databases/(default)", s.projectID)
}

func (s *FirestoreStore) userPath(userID string) string {
	return fmt.Sprintf("%s/documents/users/%s", s.database(), userID)
}

func (s *FirestoreStore) taskPath(userID, taskID string) string {
	return fmt.Sprintf("%s/tasks/%s", s.userPath(userID), taskID)
}

func (s *FirestoreStore) list(ctx context.Context, userID string, fn func(*firestore.Document) error) error {
	call := s.srv.Projects.Databases.Documents.List(s.userPath(userID), "tasks").PageSize(listPageSize)
	return call.Pages(ctx, func(resp *firestore.ListDocumentsResponse) error {
		for _, doc := range resp.Documents {
			if err := fn(doc); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *FirestoreStore) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	tasks := []models.Task{}
	err := s.list(ctx, userID, func(doc *firestore.Document) error {
		t, err := fromDocument(doc)
		if err != nil {
			return err
		}
		tasks = append(tasks, t)
		return nil
	})
	if err != nil {
		return nil, &Error{Op: "list", UserID: userID, Err: err}
	}
	return tasks, nil
}

// ReplaceAllTasks sets every task and then deletes documents whose id is not
// in tasks. Each commit is atomic; collections above the per-commit write
// limit are split across several commits, upserts first, so a failed commit
// never drops a task that is still wanted.
func (s *FirestoreStore) ReplaceAllTasks(ctx context.Context, userID string, tasks []models.Task) error {
	tasks = models.WithoutTutorial(tasks)
	keep := make(map[string]struct{}, len(tasks))
	writes := make([]*firestore.Write, 0, len(tasks))
	for _, t := range tasks {
		name := s.taskPath(userID, t.ID)
		keep[name] = struct{}{}
		writes = append(writes, &firestore.Write{Update: toDocument(name, t)})
	}

	err := s.list(ctx, userID, func(doc *firestore.Document) error {
		if _, ok := keep[doc.Name]; !ok {
			writes = append(writes, &firestore.Write{Delete: doc.Name})
		}
		return nil
	})
	if err != nil {
		return &Error{Op: "list", UserID: userID, Err: err}
	}

	for start := 0; start < len(writes); start += maxCommitWrites {
		end := min(start+maxCommitWrites, len(writes))
		req := &firestore.CommitRequest{Writes: writes[start:end]}
		if _, err := s.srv.Projects.Databases.Documents.Commit(s.database(), req).Context(ctx).Do(); err != nil {
			return &Error{Op: "commit", UserID: userID, Err: err}
		}
	}
	return nil
}
