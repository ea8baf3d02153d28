package db

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ldi/gotask/pkg/models"
)

// Keys of the device-local store.
const (
	KeyTasks        = "tasks"
	KeySettings     = "settings"
	KeyTutorialSeen = "tutorialSeen"
)

const snapshotVersion = 1

type snapshotMeta struct {
	RecordType string    `json:"record_type"`
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
}

type snapshotTask struct {
	RecordType string `json:"record_type"`
	models.Task
}

// EnableAutoSnapshot sets up a hook that exports a snapshot to path after
// every successful write of the tasks key. Export failures are logged.
func (db *DB) EnableAutoSnapshot(path string, logger *log.Logger) {
	db.SetOnChange(func(ctx context.Context, key string) {
		if key != KeyTasks {
			return
		}
		if err := db.ExportSnapshot(ctx, path); err != nil && logger != nil {
			logger.Printf("failed to export snapshot: %v", err)
		}
	})
}

// StoredTasks decodes the tasks key. A missing key yields an empty list.
func (db *DB) StoredTasks(ctx context.Context) ([]models.Task, error) {
	return storedTasks(ctx, db)
}

func storedTasks(ctx context.Context, exec executor) ([]models.Task, error) {
	raw, ok, err := get(ctx, exec, KeyTasks)
	if err != nil {
		return nil, err
	}
	tasks := []models.Task{}
	if !ok {
		return tasks, nil
	}
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode stored tasks: %w", err)
	}
	return tasks, nil
}

// ExportSnapshot writes the stored tasks as JSONL to path atomically using a
// temporary file. The first line is a meta record.
func (db *DB) ExportSnapshot(ctx context.Context, path string) error {
	tasks, err := db.StoredTasks(ctx)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "snapshot-*.jsonl")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempFile.Name())
		}
	}()

	w := bufio.NewWriter(tempFile)
	enc := json.NewEncoder(w)
	meta := snapshotMeta{RecordType: "meta", Version: snapshotVersion, ExportedAt: time.Now().UTC(), Count: len(tasks)}
	if err := enc.Encode(meta); err != nil {
		return fmt.Errorf("failed to write snapshot meta: %w", err)
	}
	for _, t := range tasks {
		if err := enc.Encode(snapshotTask{RecordType: "task", Task: t}); err != nil {
			return fmt.Errorf("failed to write snapshot line: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	filename := tempFile.Name()
	tempFile = nil // Prevent defer from removing it

	if err := os.Rename(filename, path); err != nil {
		os.Remove(filename)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// ImportSnapshot merges a JSONL snapshot into the stored tasks. Snapshot
// entries replace stored tasks with the same id; other stored tasks are kept.
func (db *DB) ImportSnapshot(ctx context.Context, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	tasks, err := storedTasks(ctx, tx)
	if err != nil {
		return 0, err
	}
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
	}

	imported := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var base struct {
			RecordType string `json:"record_type"`
		}
		if err := json.Unmarshal(line, &base); err != nil {
			return 0, fmt.Errorf("failed to unmarshal base record: %w", err)
		}

		switch base.RecordType {
		case "meta":
			var m snapshotMeta
			if err := json.Unmarshal(line, &m); err != nil {
				return 0, fmt.Errorf("failed to unmarshal meta: %w", err)
			}
			if m.Version > snapshotVersion {
				return 0, fmt.Errorf("unsupported snapshot version %d", m.Version)
			}
		case "task":
			var rec snapshotTask
			if err := json.Unmarshal(line, &rec); err != nil {
				return 0, fmt.Errorf("failed to unmarshal task: %w", err)
			}
			t := rec.Task
			if t.IsTutorial() {
				continue
			}
			if err := t.Validate(); err != nil {
				return 0, fmt.Errorf("invalid task in snapshot: %w", err)
			}
			if i, ok := index[t.ID]; ok {
				tasks[i] = t
			} else {
				index[t.ID] = len(tasks)
				tasks = append(tasks, t)
			}
			imported++
		}
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scanner error: %w", err)
	}

	raw, err := json.Marshal(tasks)
	if err != nil {
		return 0, fmt.Errorf("failed to encode tasks: %w", err)
	}
	if err := set(ctx, tx, KeyTasks, raw); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	db.triggerChange(ctx, KeyTasks)
	return imported, nil
}
