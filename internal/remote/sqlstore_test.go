package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/ldi/gotask/internal/db"
	"github.com/ldi/gotask/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLStore(t *testing.T) {
	d, err := db.Open(":memory:")
	require.NoError(t, err)
	defer d.Close()
	ctx := context.Background()
	require.NoError(t, d.Init(ctx))

	var s Store = NewSQLStore(d)
	tutorial := models.Task{ID: models.TutorialTaskID, Text: "hi"}
	require.NoError(t, s.ReplaceAllTasks(ctx, "u1", []models.Task{sampleTask("a", "1"), tutorial}))

	got, err := s.ListTasks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)

	require.NoError(t, s.ReplaceAllTasks(ctx, "u1", nil))
	got, err = s.ListTasks(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLStoreWrapsErrors(t *testing.T) {
	d, err := db.Open(":memory:")
	require.NoError(t, err)
	d.Close()

	_, err = NewSQLStore(d).ListTasks(context.Background(), "u1")
	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "list", rerr.Op)
}
