// Package tasks holds the authoritative in-memory task collection.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ldi/gotask/pkg/models"
)

// Subscriber receives the full collection after every applied mutation.
// Subscribers run in mutation order and must not dispatch on the same store.
type Subscriber func(ctx context.Context, tasks []models.Task) error

// Store owns the task collection. All mutations go through Dispatch.
type Store struct {
	mu    sync.RWMutex
	state state

	// dispatchMu serializes reduce+notify so subscribers observe mutations in order.
	dispatchMu sync.Mutex

	subsMu sync.RWMutex
	subs   map[int]Subscriber
	nextID int

	newID func() string
	now   func() time.Time
}

type Option func(*Store)

// WithIDGenerator overrides uuid-based id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithClock overrides time.Now for createdAt stamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		state: newState(nil),
		subs:  make(map[int]Subscriber),
		newID: func() string { return uuid.New().String() },
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID returns a fresh task id.
func (s *Store) NewID() string {
	return s.newID()
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

// Dispatch applies cmd and, if the collection changed, notifies subscribers.
// The mutation is kept even when a subscriber fails; subscriber errors are joined.
func (s *Store) Dispatch(ctx context.Context, cmd Command) (bool, error) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	next, changed, err := s.reduce(cmd)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.state = next
	snapshot := next.clone()
	s.mu.Unlock()

	if !changed {
		return false, nil
	}
	return true, s.notify(ctx, snapshot)
}

func (s *Store) reduce(cmd Command) (state, bool, error) {
	switch c := cmd.(type) {
	case Add:
		next, changed := reduceAdd(s.state, c)
		return next, changed, nil
	case Update:
		next, changed := reduceUpdate(s.state, c)
		return next, changed, nil
	case Delete:
		next, changed := reduceDelete(s.state, c)
		return next, changed, nil
	case TogglePin:
		next, changed := reduceTogglePin(s.state, c)
		return next, changed, nil
	case Duplicate:
		if c.NewID == "" {
			c.NewID = s.newID()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = s.now()
		}
		next, changed := reduceDuplicate(s.state, c)
		return next, changed, nil
	case ReplaceAll:
		next, changed := reduceReplaceAll(s.state, c)
		return next, changed, nil
	default:
		return s.state, false, fmt.Errorf("unknown command %T", cmd)
	}
}

func (s *Store) notify(ctx context.Context, snapshot []models.Task) error {
	s.subsMu.RLock()
	subs := make([]Subscriber, 0, len(s.subs))
	// registration order
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	s.subsMu.RUnlock()

	var errs []error
	for _, fn := range subs {
		if err := fn(ctx, snapshot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Add inserts task. Adding an id that already exists is a no-op.
func (s *Store) Add(ctx context.Context, task models.Task) (bool, error) {
	return s.Dispatch(ctx, Add{Task: task})
}

func (s *Store) Update(ctx context.Context, id string, patch models.TaskPatch) (bool, error) {
	return s.Dispatch(ctx, Update{ID: id, Patch: patch})
}

func (s *Store) Delete(ctx context.Context, ids ...string) (bool, error) {
	return s.Dispatch(ctx, Delete{IDs: ids})
}

func (s *Store) TogglePin(ctx context.Context, id string) (bool, error) {
	return s.Dispatch(ctx, TogglePin{ID: id})
}

// Duplicate copies source and returns the new task.
func (s *Store) Duplicate(ctx context.Context, source models.Task) (models.Task, error) {
	cmd := Duplicate{Source: source, NewID: s.newID(), CreatedAt: s.now()}
	_, err := s.Dispatch(ctx, cmd)
	return cmd.copy(), err
}

func (s *Store) ReplaceAll(ctx context.Context, list []models.Task) error {
	_, err := s.Dispatch(ctx, ReplaceAll{Tasks: list})
	return err
}

// Tasks returns a copy of the collection in insertion order.
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Get returns the task with id.
func (s *Store) Get(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.state.index[id]
	if !ok {
		return models.Task{}, false
	}
	return s.state.tasks[i], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.tasks)
}
