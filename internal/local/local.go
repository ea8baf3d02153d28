// Package local is the typed device-local store over the sqlite key/value table.
package local

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ldi/gotask/internal/db"
	"github.com/ldi/gotask/pkg/models"
)

// KV is the raw key/value surface the store needs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Error is a local store read or write failure.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("local store %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Store struct {
	kv KV
}

func New(kv KV) *Store {
	return &Store{kv: kv}
}

// LoadTasks returns the stored tasks. A missing key yields an empty list.
func (s *Store) LoadTasks(ctx context.Context) ([]models.Task, error) {
	tasks := []models.Task{}
	if _, err := s.load(ctx, db.KeyTasks, &tasks); err != nil {
		return nil, err
	}
	return models.WithoutTutorial(tasks), nil
}

// SaveTasks writes the collection. The tutorial task is never written.
func (s *Store) SaveTasks(ctx context.Context, tasks []models.Task) error {
	return s.save(ctx, db.KeyTasks, models.WithoutTutorial(tasks))
}

// ClearTasks removes the tasks key. Settings and the tutorial flag survive.
func (s *Store) ClearTasks(ctx context.Context) error {
	if err := s.kv.Remove(ctx, db.KeyTasks); err != nil {
		return &Error{Op: "remove", Key: db.KeyTasks, Err: err}
	}
	return nil
}

// LoadSettings returns stored settings merged over the defaults.
func (s *Store) LoadSettings(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()
	if _, err := s.load(ctx, db.KeySettings, &settings); err != nil {
		return models.DefaultSettings(), err
	}
	return settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings models.Settings) error {
	return s.save(ctx, db.KeySettings, settings)
}

func (s *Store) TutorialSeen(ctx context.Context) (bool, error) {
	var seen bool
	if _, err := s.load(ctx, db.KeyTutorialSeen, &seen); err != nil {
		return false, err
	}
	return seen, nil
}

func (s *Store) MarkTutorialSeen(ctx context.Context) error {
	return s.save(ctx, db.KeyTutorialSeen, true)
}

func (s *Store) load(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, &Error{Op: "read", Key: key, Err: err}
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, &Error{Op: "decode", Key: key, Err: err}
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &Error{Op: "encode", Key: key, Err: err}
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return &Error{Op: "write", Key: key, Err: err}
	}
	return nil
}
