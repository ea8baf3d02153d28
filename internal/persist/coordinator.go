// Package persist keeps the task store, the device-local store and the
// remote store in step across a session.
package persist

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/ldi/gotask/internal/reconcile"
	"github.com/ldi/gotask/internal/remote"
	"github.com/ldi/gotask/internal/retention"
	"github.com/ldi/gotask/internal/tasks"
	"github.com/ldi/gotask/internal/week"
	"github.com/ldi/gotask/pkg/models"
)

type State string

const (
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateSigningOut State = "signing_out"
)

// LocalStore is the device-local persistence the coordinator drives.
type LocalStore interface {
	LoadTasks(ctx context.Context) ([]models.Task, error)
	SaveTasks(ctx context.Context, tasks []models.Task) error
	ClearTasks(ctx context.Context) error
	LoadSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error
}

type Options struct {
	// Remote is nil when the session never syncs.
	Remote      remote.Store
	Logger      *log.Logger
	Verbose     bool
	PushTimeout time.Duration
	Locale      week.Locale
	Now         func() time.Time
}

type Coordinator struct {
	store  *tasks.Store
	local  LocalStore
	remote remote.Store
	pusher *Pusher
	engine *reconcile.Engine
	logger *log.Logger
	locale week.Locale
	now    func() time.Time

	mu     sync.Mutex
	state  State
	userID string

	unsubscribe func()
}

func defaultLogger() *log.Logger {
	return log.New(os.Stderr, "gotask: ", log.LstdFlags)
}

// New wires a coordinator to store. It starts in Loading; call Start.
func New(store *tasks.Store, local LocalStore, opts Options) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = defaultLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Coordinator{
		store:  store,
		local:  local,
		remote: opts.Remote,
		logger: opts.Logger,
		locale: opts.Locale,
		now:    opts.Now,
		state:  StateLoading,
	}
	if opts.Remote != nil {
		c.pusher = NewPusher(opts.Remote, PushOptions{Timeout: opts.PushTimeout, Logger: opts.Logger, Verbose: opts.Verbose})
		c.engine = &reconcile.Engine{Local: local, Remote: opts.Remote, Logger: c.debugLogger(opts.Verbose)}
	}
	c.unsubscribe = store.Subscribe(c.onChange)
	return c
}

func (c *Coordinator) debugLogger(verbose bool) *log.Logger {
	if verbose {
		return c.logger
	}
	return nil
}

// Start loads the local collection and, for a signed-in user, reconciles it
// with the remote one; otherwise stale tasks are pruned. A local read
// failure is returned and the coordinator stays in Loading so nothing
// overwrites the stored collection.
func (c *Coordinator) Start(ctx context.Context, userID string) error {
	c.setState(StateLoading, userID)

	stored, err := c.local.LoadTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	var loadErr error
	if userID != "" && c.engine != nil {
		loadErr = c.signIn(ctx, userID, stored)
	} else {
		start := week.Compute(c.now(), c.locale).Start()
		kept := retention.FilterOnLoad(stored, start)
		if len(kept) != len(stored) {
			c.logger.Printf("retention dropped %d stale tasks", len(stored)-len(kept))
			if err := c.local.SaveTasks(ctx, kept); err != nil {
				loadErr = fmt.Errorf("failed to save pruned tasks: %w", err)
			}
		}
		if err := c.replace(ctx, kept); err != nil {
			loadErr = errors.Join(loadErr, err)
		}
	}

	c.setState(StateReady, userID)
	return loadErr
}

// signIn reconciles local with the user's remote collection. When the remote
// read fails the session keeps the local collection as is.
func (c *Coordinator) signIn(ctx context.Context, userID string, local []models.Task) error {
	merged, err := c.engine.Run(ctx, userID, local)
	switch {
	case errors.Is(err, reconcile.ErrRemoteRead):
		c.logger.Printf("sign-in %s: %v; continuing with local tasks", userID, err)
		return c.replace(ctx, local)
	case err != nil:
		// local save failed; keep the merged set in memory
		return errors.Join(err, c.replace(ctx, merged))
	}
	return c.replace(ctx, merged)
}

// replace swaps the store contents, keeping the tutorial task if shown.
func (c *Coordinator) replace(ctx context.Context, list []models.Task) error {
	if tut, ok := c.store.Get(models.TutorialTaskID); ok {
		list = append([]models.Task{tut}, models.WithoutTutorial(list)...)
	}
	return c.store.ReplaceAll(ctx, list)
}

func (c *Coordinator) onChange(ctx context.Context, list []models.Task) error {
	c.mu.Lock()
	state, userID := c.state, c.userID
	c.mu.Unlock()

	if state != StateReady {
		return nil
	}
	if userID != "" && c.pusher != nil {
		c.pusher.Push(userID, list)
	}
	return c.local.SaveTasks(ctx, models.WithoutTutorial(list))
}

// SetUser applies an identity change: none to id signs in, id to none signs
// out, id to another id does both.
func (c *Coordinator) SetUser(ctx context.Context, userID string) error {
	c.mu.Lock()
	current := c.userID
	c.mu.Unlock()

	if userID == current {
		return nil
	}
	if current != "" {
		if err := c.SignOut(ctx); err != nil {
			return err
		}
	}
	if userID == "" {
		return nil
	}
	if c.engine == nil {
		c.setState(StateReady, userID)
		return nil
	}

	c.setState(StateLoading, userID)
	err := c.signIn(ctx, userID, models.WithoutTutorial(c.store.Tasks()))
	c.setState(StateReady, userID)
	return err
}

// SignOut waits for pending pushes, removes the stored tasks and empties the
// store. Remote data is left alone and the reset is never pushed.
func (c *Coordinator) SignOut(ctx context.Context) error {
	c.mu.Lock()
	userID := c.userID
	c.state = StateSigningOut
	c.mu.Unlock()

	c.Flush()

	var errs []error
	if err := c.local.ClearTasks(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := c.store.ReplaceAll(ctx, nil); err != nil {
		errs = append(errs, err)
	}

	c.setState(StateReady, "")
	if userID != "" {
		c.logger.Printf("signed out %s", userID)
	}
	return errors.Join(errs...)
}

// Flush blocks until queued pushes have completed.
func (c *Coordinator) Flush() {
	if c.pusher != nil {
		c.pusher.Wait()
	}
}

// Close flushes pushes and detaches from the store.
func (c *Coordinator) Close() {
	c.unsubscribe()
	c.Flush()
}

func (c *Coordinator) setState(s State, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	c.userID = userID
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *Coordinator) Settings(ctx context.Context) (models.Settings, error) {
	return c.local.LoadSettings(ctx)
}

func (c *Coordinator) UpdateSettings(ctx context.Context, s models.Settings) error {
	return c.local.SaveSettings(ctx, s)
}

// Status is a snapshot of the sync state.
type Status struct {
	State         State     `json:"state"`
	UserID        string    `json:"user_id,omitempty"`
	Syncing       bool      `json:"syncing"`
	Remote        bool      `json:"remote"`
	Pushes        int       `json:"pushes"`
	Failures      int       `json:"failures"`
	LastPushError string    `json:"last_push_error,omitempty"`
	LastPushAt    time.Time `json:"last_push_at,omitzero"`
	Tasks         int       `json:"tasks"`
}

func (c *Coordinator) Status() Status {
	c.mu.Lock()
	st := Status{State: c.state, UserID: c.userID, Remote: c.pusher != nil}
	c.mu.Unlock()

	st.Tasks = len(models.WithoutTutorial(c.store.Tasks()))
	if c.pusher != nil {
		stats := c.pusher.Stats()
		st.Pushes = stats.Pushes
		st.Failures = stats.Failures
		st.LastPushAt = stats.LastAt
		if stats.LastError != nil {
			st.LastPushError = stats.LastError.Error()
		}
		st.Syncing = st.UserID != "" && c.pusher.Busy(st.UserID)
	}
	return st
}
