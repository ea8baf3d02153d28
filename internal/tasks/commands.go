package tasks

import (
	"time"

	"github.com/ldi/gotask/pkg/models"
)

// Command is a typed mutation of the task collection.
type Command interface {
	Type() string
}

// Add inserts a task unless its id is already present.
type Add struct {
	Task models.Task
}

// Update merges Patch into the task with ID.
type Update struct {
	ID    string
	Patch models.TaskPatch
}

// Delete removes every task whose id is listed.
type Delete struct {
	IDs []string
}

// TogglePin flips the pinned flag.
type TogglePin struct {
	ID string
}

// Duplicate copies Source under NewID with completed=false and CreatedAt as the
// creation time. The store fills NewID and CreatedAt when they are zero.
type Duplicate struct {
	Source    models.Task
	NewID     string
	CreatedAt time.Time
}

func (c Duplicate) copy() models.Task {
	dup := c.Source
	dup.ID = c.NewID
	dup.Completed = false
	dup.CreatedAt = c.CreatedAt
	return dup
}

// ReplaceAll swaps the whole collection.
type ReplaceAll struct {
	Tasks []models.Task
}

func (Add) Type() string        { return "task_added" }
func (Update) Type() string     { return "task_updated" }
func (Delete) Type() string     { return "tasks_deleted" }
func (TogglePin) Type() string  { return "task_pin_toggled" }
func (Duplicate) Type() string  { return "task_duplicated" }
func (ReplaceAll) Type() string { return "tasks_replaced" }
