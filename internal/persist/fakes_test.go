package persist

import (
	"context"
	"errors"
	"io"
	"log"
	"slices"
	"sync"

	"github.com/ldi/gotask/internal/remote"
	"github.com/ldi/gotask/pkg/models"
)

var quiet = log.New(io.Discard, "", 0)

type memLocal struct {
	mu       sync.Mutex
	tasks    []models.Task
	hasTasks bool
	settings models.Settings
	saves    [][]models.Task
	loadErr  error
	saveErr  error
}

func (m *memLocal) LoadTasks(context.Context) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return slices.Clone(m.tasks), nil
}

func (m *memLocal) SaveTasks(_ context.Context, list []models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = append(m.saves, slices.Clone(list))
	if m.saveErr != nil {
		return m.saveErr
	}
	m.tasks = models.WithoutTutorial(list)
	m.hasTasks = true
	return nil
}

func (m *memLocal) ClearTasks(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = nil
	m.hasTasks = false
	return nil
}

func (m *memLocal) LoadSettings(context.Context) (models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == (models.Settings{}) {
		return models.DefaultSettings(), nil
	}
	return m.settings, nil
}

func (m *memLocal) SaveSettings(_ context.Context, s models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	return nil
}

func (m *memLocal) lastSave() []models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saves) == 0 {
		return nil
	}
	return m.saves[len(m.saves)-1]
}

// memRemote records replaces. When gate is set each replace waits on it.
type memRemote struct {
	mu       sync.Mutex
	tasks    map[string][]models.Task
	replaces []replaceCall
	listErr  error
	pushErr  error
	gate     chan struct{}
	started  chan struct{}
}

type replaceCall struct {
	userID string
	tasks  []models.Task
}

func newMemRemote() *memRemote {
	return &memRemote{tasks: make(map[string][]models.Task)}
}

func (r *memRemote) ListTasks(_ context.Context, userID string) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, &remote.Error{Op: "list", UserID: userID, Err: r.listErr}
	}
	return slices.Clone(r.tasks[userID]), nil
}

func (r *memRemote) ReplaceAllTasks(ctx context.Context, userID string, list []models.Task) error {
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replaces = append(r.replaces, replaceCall{userID: userID, tasks: slices.Clone(list)})
	if r.pushErr != nil {
		return &remote.Error{Op: "replace", UserID: userID, Err: r.pushErr}
	}
	r.tasks[userID] = slices.Clone(list)
	return nil
}

func (r *memRemote) calls() []replaceCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.replaces)
}

// bareListRemote fails ListTasks with an unwrapped error.
type bareListRemote struct {
	*memRemote
	err error
}

func (b *bareListRemote) ListTasks(context.Context, string) ([]models.Task, error) {
	return nil, b.err
}

var errOffline = errors.New("offline")
