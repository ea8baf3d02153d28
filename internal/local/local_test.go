package local

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ldi/gotask/internal/db"
	"github.com/ldi/gotask/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *db.DB) {
	t.Helper()
	d, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, d.Init(context.Background()))
	return New(d), d
}

func TestTasksRoundTripExcludesTutorial(t *testing.T) {
	s, d := newStore(t)
	ctx := context.Background()

	list := []models.Task{
		{ID: "a", Text: "one", Date: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)},
		{ID: models.TutorialTaskID, Text: "tutorial"},
	}
	require.NoError(t, s.SaveTasks(ctx, list))

	raw, ok, err := d.Get(ctx, db.KeyTasks)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, string(raw), models.TutorialTaskID)

	got, err := s.LoadTasks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.True(t, got[0].Date.Equal(list[0].Date))
}

func TestLoadTasksMissingKey(t *testing.T) {
	s, _ := newStore(t)
	got, err := s.LoadTasks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLoadTasksCorrupt(t *testing.T) {
	s, d := newStore(t)
	ctx := context.Background()
	require.NoError(t, d.Set(ctx, db.KeyTasks, []byte("{not json")))

	_, err := s.LoadTasks(ctx)
	var lerr *Error
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "decode", lerr.Op)
	assert.Equal(t, db.KeyTasks, lerr.Key)
}

func TestSettingsMergeOverDefaults(t *testing.T) {
	s, d := newStore(t)
	ctx := context.Background()

	got, err := s.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), got)

	require.NoError(t, d.Set(ctx, db.KeySettings, []byte(`{"theme":"dark","font_size":18}`)))
	got, err = s.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, got.Theme)
	assert.Equal(t, 18, got.FontSize)
	assert.True(t, got.ShowPreview)
	assert.Equal(t, models.ButtonSizeSmall, got.ButtonSize)
	assert.True(t, got.AutoSave)
}

func TestTutorialFlag(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	seen, err := s.TutorialSeen(ctx)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.MarkTutorialSeen(ctx))
	seen, err = s.TutorialSeen(ctx)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestClearTasksKeepsPreferences(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTasks(ctx, []models.Task{{ID: "a", Text: "x"}}))
	require.NoError(t, s.SaveSettings(ctx, models.Settings{Theme: models.ThemeDark, FontSize: 12}))
	require.NoError(t, s.MarkTutorialSeen(ctx))

	require.NoError(t, s.ClearTasks(ctx))

	got, err := s.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	settings, _ := s.LoadSettings(ctx)
	assert.Equal(t, models.ThemeDark, settings.Theme)
	seen, _ := s.TutorialSeen(ctx)
	assert.True(t, seen)
}

type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, f.err
}

func (f failingKV) Set(context.Context, string, []byte) error {
	return f.err
}

func (f failingKV) Remove(context.Context, string) error {
	return f.err
}

func TestErrorsAreTyped(t *testing.T) {
	boom := errors.New("disk gone")
	s := New(failingKV{err: boom})
	ctx := context.Background()

	err := s.SaveTasks(ctx, nil)
	var lerr *Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "write", lerr.Op)
	assert.ErrorIs(t, err, boom)

	_, err = s.LoadTasks(ctx)
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "read", lerr.Op)
}
