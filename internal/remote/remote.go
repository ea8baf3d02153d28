// Package remote holds the per-user task document stores.
package remote

import (
	"context"
	"fmt"

	"github.com/ldi/gotask/pkg/models"
)

// Store is a per-user document collection keyed by task id.
type Store interface {
	// ListTasks returns every task document stored for userID.
	ListTasks(ctx context.Context, userID string) ([]models.Task, error)
	// ReplaceAllTasks makes the user's collection equal to tasks: documents
	// whose id is absent are deleted and every task is upserted.
	ReplaceAllTasks(ctx context.Context, userID string, tasks []models.Task) error
}

// Error is a remote store failure.
type Error struct {
	Op     string
	UserID string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("remote store %s for %s: %v", e.Op, e.UserID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
