package persist

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ldi/gotask/internal/remote"
	"github.com/ldi/gotask/pkg/models"
)

const DefaultPushTimeout = 15 * time.Second

// Pusher replaces remote collections in the background. Per user at most one
// replace is in flight; pushes that arrive meanwhile collapse into a single
// follow-up carrying the latest collection.
type Pusher struct {
	remote  remote.Store
	timeout time.Duration
	logger  *log.Logger
	verbose bool

	mu    sync.Mutex
	users map[string]*pushSlot
	stats PushStats
	wg    sync.WaitGroup
}

type pushSlot struct {
	inFlight   bool
	hasPending bool
	pending    []models.Task
}

// PushStats describes completed pushes.
type PushStats struct {
	Pushes    int
	Failures  int
	LastError error
	LastAt    time.Time
}

type PushOptions struct {
	Timeout time.Duration
	Logger  *log.Logger
	// Verbose also logs successful pushes.
	Verbose bool
}

func NewPusher(r remote.Store, opts PushOptions) *Pusher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultPushTimeout
	}
	if opts.Logger == nil {
		opts.Logger = defaultLogger()
	}
	return &Pusher{
		remote:  r,
		timeout: opts.Timeout,
		logger:  opts.Logger,
		verbose: opts.Verbose,
		users:   make(map[string]*pushSlot),
	}
}

// Push schedules a replace of userID's collection with tasks.
func (p *Pusher) Push(userID string, tasks []models.Task) {
	tasks = models.WithoutTutorial(tasks)

	p.mu.Lock()
	slot, ok := p.users[userID]
	if !ok {
		slot = &pushSlot{}
		p.users[userID] = slot
	}
	if slot.inFlight {
		slot.pending = tasks
		slot.hasPending = true
		p.mu.Unlock()
		return
	}
	slot.inFlight = true
	p.wg.Add(1)
	p.mu.Unlock()

	go p.run(userID, tasks)
}

func (p *Pusher) run(userID string, tasks []models.Task) {
	defer p.wg.Done()
	for {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := p.remote.ReplaceAllTasks(ctx, userID, tasks)
		cancel()
		p.record(userID, len(tasks), err)

		p.mu.Lock()
		slot := p.users[userID]
		if !slot.hasPending {
			slot.inFlight = false
			p.mu.Unlock()
			return
		}
		tasks = slot.pending
		slot.pending = nil
		slot.hasPending = false
		p.mu.Unlock()
	}
}

func (p *Pusher) record(userID string, n int, err error) {
	p.mu.Lock()
	p.stats.Pushes++
	p.stats.LastAt = time.Now()
	p.stats.LastError = err
	if err != nil {
		p.stats.Failures++
	}
	p.mu.Unlock()

	if err != nil {
		p.logger.Printf("push %s failed: %v", userID, err)
		return
	}
	if p.verbose {
		p.logger.Printf("push %s: %d tasks", userID, n)
	}
}

// Wait blocks until no push is in flight or pending.
func (p *Pusher) Wait() {
	p.wg.Wait()
}

// Busy reports whether a push for userID is in flight.
func (p *Pusher) Busy(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	slot, ok := p.users[userID]
	return ok && slot.inFlight
}

func (p *Pusher) Stats() PushStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
