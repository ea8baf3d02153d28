package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ldi/gotask/pkg/models"
)

// ListUserTasks returns the task documents stored for userID in the order
// they were last written.
func (db *DB) ListUserTasks(ctx context.Context, userID string) ([]models.Task, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, text, date_ms, completed, important, pinned, color,
		       font_style, font_weight, highlight, highlight_color, created_at_ms
		FROM remote_tasks
		WHERE user_id = ?
		ORDER BY seq ASC, created_at_ms ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks for %s: %w", userID, err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var (
			t                               models.Task
			dateMS, createdMS               int64
			completed, important, pinned, h int
			fontStyle, fontWeight, hColor   sql.NullString
		)
		if err := rows.Scan(
			&t.ID, &t.Text, &dateMS, &completed, &important, &pinned, &t.Color,
			&fontStyle, &fontWeight, &h, &hColor, &createdMS,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		t.Date = time.UnixMilli(dateMS)
		t.CreatedAt = time.UnixMilli(createdMS)
		t.Completed = completed == 1
		t.Important = important == 1
		t.Pinned = pinned == 1
		t.Highlight = h == 1
		t.FontStyle = models.FontStyle(fontStyle.String)
		t.FontWeight = models.FontWeight(fontWeight.String)
		t.HighlightColor = hColor.String
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return tasks, nil
}

// ReplaceUserTasks makes the stored set for userID equal to tasks in one
// transaction: rows whose id is absent are deleted, every task is upserted.
func (db *DB) ReplaceUserTasks(ctx context.Context, userID string, tasks []models.Task) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	keep := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		keep[t.ID] = struct{}{}
	}

	existing, err := userTaskIDs(ctx, tx, userID)
	if err != nil {
		return err
	}
	for _, id := range existing {
		if _, ok := keep[id]; ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM remote_tasks WHERE user_id = ? AND id = ?`, userID, id); err != nil {
			return fmt.Errorf("failed to delete task %s: %w", id, err)
		}
	}

	for i, t := range tasks {
		if err := upsertUserTask(ctx, tx, userID, i, t); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replace: %w", err)
	}
	return nil
}

func userTaskIDs(ctx context.Context, exec executor, userID string) ([]string, error) {
	rows, err := exec.QueryContext(ctx, `SELECT id FROM remote_tasks WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func upsertUserTask(ctx context.Context, exec executor, userID string, seq int, t models.Task) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO remote_tasks (
			user_id, id, text, date_ms, completed, important, pinned, color,
			font_style, font_weight, highlight, highlight_color, created_at_ms, seq
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET
			text = excluded.text,
			date_ms = excluded.date_ms,
			completed = excluded.completed,
			important = excluded.important,
			pinned = excluded.pinned,
			color = excluded.color,
			font_style = excluded.font_style,
			font_weight = excluded.font_weight,
			highlight = excluded.highlight,
			highlight_color = excluded.highlight_color,
			created_at_ms = excluded.created_at_ms,
			seq = excluded.seq`,
		userID, t.ID, t.Text, t.Date.UnixMilli(), boolInt(t.Completed), boolInt(t.Important), boolInt(t.Pinned), t.Color,
		nullString(string(t.FontStyle)), nullString(string(t.FontWeight)), boolInt(t.Highlight), nullString(t.HighlightColor),
		t.CreatedAt.UnixMilli(), seq,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert task %s: %w", t.ID, err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
