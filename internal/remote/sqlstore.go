package remote

import (
	"context"

	"github.com/ldi/gotask/internal/db"
	"github.com/ldi/gotask/pkg/models"
)

// SQLStore keeps user documents in a sqlite database, typically a file
// shared between devices.
type SQLStore struct {
	db *db.DB
}

func NewSQLStore(d *db.DB) *SQLStore {
	return &SQLStore{db: d}
}

func (s *SQLStore) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	tasks, err := s.db.ListUserTasks(ctx, userID)
	if err != nil {
		return nil, &Error{Op: "list", UserID: userID, Err: err}
	}
	return tasks, nil
}

func (s *SQLStore) ReplaceAllTasks(ctx context.Context, userID string, tasks []models.Task) error {
	if err := s.db.ReplaceUserTasks(ctx, userID, models.WithoutTutorial(tasks)); err != nil {
		return &Error{Op: "replace", UserID: userID, Err: err}
	}
	return nil
}
