package db

import (
	"context"
	"testing"
	"time"

	"github.com/ldi/gotask/pkg/models"
)

func remoteTask(id, text string) models.Task {
	return models.Task{
		ID:        id,
		Text:      text,
		Date:      time.Date(2024, 6, 4, 10, 0, 0, 0, time.UTC),
		Color:     models.DefaultColor,
		CreatedAt: time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC),
	}
}

func TestReplaceUserTasks(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	styled := remoteTask("b", "styled")
	styled.FontStyle = models.FontStyleItalic
	styled.FontWeight = models.FontWeightBold
	styled.Highlight = true
	styled.HighlightColor = models.DefaultHighlightColor
	styled.Pinned = true

	if err := db.ReplaceUserTasks(ctx, "u1", []models.Task{remoteTask("a", "first"), styled}); err != nil {
		t.Fatalf("ReplaceUserTasks failed: %v", err)
	}
	if err := db.ReplaceUserTasks(ctx, "u2", []models.Task{remoteTask("a", "other user")}); err != nil {
		t.Fatalf("ReplaceUserTasks failed: %v", err)
	}

	got, err := db.ListUserTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("ListUserTasks failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("Unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
	b := got[1]
	if b.FontStyle != models.FontStyleItalic || b.FontWeight != models.FontWeightBold || !b.Highlight || !b.Pinned {
		t.Errorf("Styling not preserved: %+v", b)
	}
	if !b.Date.Equal(styled.Date) || !b.CreatedAt.Equal(styled.CreatedAt) {
		t.Errorf("Timestamps not preserved: date=%v created=%v", b.Date, b.CreatedAt)
	}
	if got[0].FontStyle != "" || got[0].HighlightColor != "" {
		t.Errorf("Expected unset optional fields, got %+v", got[0])
	}

	// Second replace deletes missing ids and updates the rest.
	updated := remoteTask("b", "renamed")
	if err := db.ReplaceUserTasks(ctx, "u1", []models.Task{updated, remoteTask("c", "new")}); err != nil {
		t.Fatalf("ReplaceUserTasks failed: %v", err)
	}
	got, err = db.ListUserTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("ListUserTasks failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[0].Text != "renamed" || got[1].ID != "c" {
		t.Errorf("Unexpected tasks after replace: %+v", got)
	}

	other, err := db.ListUserTasks(ctx, "u2")
	if err != nil {
		t.Fatalf("ListUserTasks failed: %v", err)
	}
	if len(other) != 1 || other[0].Text != "other user" {
		t.Errorf("Other user's tasks changed: %+v", other)
	}
}

func TestListUserTasksEmpty(t *testing.T) {
	db := newTestDB(t)
	got, err := db.ListUserTasks(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListUserTasks failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", got)
	}
}

func TestReplaceUserTasksWithEmptySet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_ = db.ReplaceUserTasks(ctx, "u1", []models.Task{remoteTask("a", "x")})

	if err := db.ReplaceUserTasks(ctx, "u1", nil); err != nil {
		t.Fatalf("ReplaceUserTasks failed: %v", err)
	}
	got, _ := db.ListUserTasks(ctx, "u1")
	if len(got) != 0 {
		t.Errorf("Expected no tasks, got %d", len(got))
	}
}
