// Package reconcile merges the local and remote collections on sign-in.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/ldi/gotask/internal/remote"
	"github.com/ldi/gotask/pkg/models"
)

// Merge returns the union of both collections keyed by id. On collision the
// local task wins whole; fields are never mixed. Remote order comes first,
// then local-only tasks in local order. The tutorial task is ignored.
func Merge(local, remoteTasks []models.Task) []models.Task {
	merged := make([]models.Task, 0, len(local)+len(remoteTasks))
	index := make(map[string]int, len(local)+len(remoteTasks))

	put := func(t models.Task) {
		if t.IsTutorial() {
			return
		}
		if i, ok := index[t.ID]; ok {
			merged[i] = t
			return
		}
		index[t.ID] = len(merged)
		merged = append(merged, t)
	}
	for _, t := range remoteTasks {
		put(t)
	}
	for _, t := range local {
		put(t)
	}
	return merged
}

// ErrRemoteRead marks a Run that failed before anything was merged or written.
var ErrRemoteRead = errors.New("failed to read remote tasks")

// TaskWriter persists the merged collection on the device.
type TaskWriter interface {
	SaveTasks(ctx context.Context, tasks []models.Task) error
}

// Engine runs the one-shot persistence round that follows a sign-in.
type Engine struct {
	Local  TaskWriter
	Remote remote.Store
	Logger *log.Logger
}

func (e *Engine) logger() *log.Logger {
	if e.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return e.Logger
}

// Run reads the user's remote collection, merges it with local, saves the
// result locally and replaces the remote collection with it.
//
// A failed remote read is returned wrapping ErrRemoteRead so the caller can
// stay on local state. A
// failed local save is returned. A failed remote replace is logged only; the
// next push carries the merged set again.
func (e *Engine) Run(ctx context.Context, userID string, local []models.Task) ([]models.Task, error) {
	remoteTasks, err := e.Remote.ListTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteRead, err)
	}

	merged := Merge(local, remoteTasks)
	e.logger().Printf("reconcile %s: %d local, %d remote, %d merged", userID, len(local), len(remoteTasks), len(merged))

	if err := e.Local.SaveTasks(ctx, merged); err != nil {
		return merged, fmt.Errorf("failed to save merged tasks: %w", err)
	}
	if err := e.Remote.ReplaceAllTasks(ctx, userID, merged); err != nil {
		e.logger().Printf("reconcile %s: remote replace failed: %v", userID, err)
	}
	return merged, nil
}
