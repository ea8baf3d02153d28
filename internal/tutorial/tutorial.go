// Package tutorial seeds the onboarding task shown on first run.
package tutorial

import (
	"context"
	"fmt"
	"time"

	"github.com/ldi/gotask/internal/tasks"
	"github.com/ldi/gotask/internal/week"
	"github.com/ldi/gotask/pkg/models"
)

// Color of the onboarding task.
const Color = "#4a90e2"

// Flag persists whether the tutorial was dismissed.
type Flag interface {
	TutorialSeen(ctx context.Context) (bool, error)
	MarkTutorialSeen(ctx context.Context) error
}

type Seeder struct {
	store  *tasks.Store
	flag   Flag
	locale week.Locale
	now    func() time.Time
}

func NewSeeder(store *tasks.Store, flag Flag, locale week.Locale, now func() time.Time) *Seeder {
	if now == nil {
		now = time.Now
	}
	return &Seeder{store: store, flag: flag, locale: locale, now: now}
}

// Task builds the onboarding task dated today.
func (s *Seeder) Task() models.Task {
	now := s.now()
	return models.Task{
		ID:         models.TutorialTaskID,
		Text:       s.locale.Strings().TutorialTask,
		Date:       now,
		Important:  true,
		Color:      Color,
		FontWeight: models.FontWeightBold,
		CreatedAt:  now,
	}
}

// SeedIfFirstRun inserts the onboarding task unless seen is set. It returns
// the inserted task, or nil.
func (s *Seeder) SeedIfFirstRun(ctx context.Context, seen bool) (*models.Task, error) {
	if seen {
		return nil, nil
	}
	t := s.Task()
	if _, err := s.store.Add(ctx, t); err != nil {
		return &t, err
	}
	return &t, nil
}

// Seed reads the flag and seeds when it is unset.
func (s *Seeder) Seed(ctx context.Context) (*models.Task, error) {
	seen, err := s.flag.TutorialSeen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read tutorial flag: %w", err)
	}
	return s.SeedIfFirstRun(ctx, seen)
}

// Dismiss records the flag and removes the onboarding task.
func (s *Seeder) Dismiss(ctx context.Context) error {
	if err := s.flag.MarkTutorialSeen(ctx); err != nil {
		return fmt.Errorf("failed to save tutorial flag: %w", err)
	}
	if _, err := s.store.Delete(ctx, models.TutorialTaskID); err != nil {
		return err
	}
	return nil
}

// Active reports whether the onboarding task is in the store.
func (s *Seeder) Active() bool {
	_, ok := s.store.Get(models.TutorialTaskID)
	return ok
}
