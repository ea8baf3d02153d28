package tutorial

import (
	"context"
	"testing"
	"time"

	"github.com/ldi/gotask/internal/tasks"
	"github.com/ldi/gotask/internal/week"
	"github.com/ldi/gotask/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFlag struct{ seen bool }

func (f *memFlag) TutorialSeen(context.Context) (bool, error) { return f.seen, nil }
func (f *memFlag) MarkTutorialSeen(context.Context) error     { f.seen = true; return nil }

var now = time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC)

func TestSeedIfFirstRun(t *testing.T) {
	store := tasks.NewStore()
	s := NewSeeder(store, &memFlag{}, week.PtBR, func() time.Time { return now })

	got, err := s.SeedIfFirstRun(context.Background(), false)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.TutorialTaskID, got.ID)
	assert.Equal(t, week.PtBR.Strings().TutorialTask, got.Text)
	assert.True(t, got.Important)
	assert.Equal(t, Color, got.Color)
	assert.Equal(t, models.FontWeightBold, got.FontWeight)
	assert.True(t, s.Active())

	// Seeding twice keeps a single tutorial task.
	_, _ = s.SeedIfFirstRun(context.Background(), false)
	assert.Equal(t, 1, store.Len())
}

func TestSeedSkippedWhenSeen(t *testing.T) {
	store := tasks.NewStore()
	s := NewSeeder(store, &memFlag{seen: true}, week.EnUS, nil)

	got, err := s.Seed(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, store.Len())
}

func TestDismiss(t *testing.T) {
	store := tasks.NewStore()
	flag := &memFlag{}
	s := NewSeeder(store, flag, week.EnUS, func() time.Time { return now })
	ctx := context.Background()

	_, err := s.Seed(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Dismiss(ctx))

	assert.True(t, flag.seen)
	assert.False(t, s.Active())

	got, err := s.Seed(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
