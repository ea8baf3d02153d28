package retention

import (
	"testing"
	"time"

	"github.com/ldi/gotask/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestFilterOnLoad(t *testing.T) {
	weekStart := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		task models.Task
		keep bool
	}{
		{"pinned old task survives", models.Task{ID: "A", Pinned: true, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, true},
		{"unpinned old task removed", models.Task{ID: "B", Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}, false},
		{"week start survives", models.Task{ID: "C", Date: weekStart}, true},
		{"late on week start survives", models.Task{ID: "D", Date: time.Date(2024, 6, 3, 23, 59, 0, 0, time.UTC)}, true},
		{"sunday before removed", models.Task{ID: "E", Date: time.Date(2024, 6, 2, 23, 59, 0, 0, time.UTC)}, false},
		{"future survives", models.Task{ID: "F", Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}, true},
		{"tutorial dropped", models.Task{ID: models.TutorialTaskID, Pinned: true, Date: weekStart}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterOnLoad([]models.Task{tt.task}, weekStart)
			if tt.keep {
				assert.Len(t, got, 1)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestFilterOnLoadUsesWeekStartLocation(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	weekStart := time.Date(2024, 6, 3, 0, 0, 0, 0, brt)

	// 01:00 UTC on Monday is still Sunday evening in BRT.
	sundayNight := models.Task{ID: "x", Date: time.Date(2024, 6, 3, 1, 0, 0, 0, time.UTC)}
	assert.Empty(t, FilterOnLoad([]models.Task{sundayNight}, weekStart))

	mondayMorning := models.Task{ID: "y", Date: time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)}
	assert.Len(t, FilterOnLoad([]models.Task{mondayMorning}, weekStart), 1)
}

func TestEvicted(t *testing.T) {
	weekStart := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	list := []models.Task{
		{ID: "keep", Date: weekStart},
		{ID: "drop", Date: weekStart.AddDate(0, 0, -1)},
		{ID: models.TutorialTaskID, Date: weekStart.AddDate(0, 0, -10)},
	}
	got := Evicted(list, weekStart)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "drop", got[0].ID)
	}
}
