// Package retention prunes stale tasks from an offline cold start.
package retention

import (
	"time"

	"github.com/ldi/gotask/internal/week"
	"github.com/ldi/gotask/pkg/models"
)

// FilterOnLoad keeps a task iff it is pinned or its calendar day, read in
// weekStart's location, is on or after weekStart. The tutorial task is dropped.
//
// Only apply this to the locally stored collection. A reconciled collection is
// already authoritative.
func FilterOnLoad(tasks []models.Task, weekStart time.Time) []models.Task {
	start := week.DateOnly(weekStart)
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsTutorial() {
			continue
		}
		if t.Pinned || !week.DateOnly(t.Date.In(start.Location())).Before(start) {
			out = append(out, t)
		}
	}
	return out
}

// Evicted returns the tasks FilterOnLoad would drop, tutorial excluded.
func Evicted(tasks []models.Task, weekStart time.Time) []models.Task {
	kept := make(map[string]struct{})
	for _, t := range FilterOnLoad(tasks, weekStart) {
		kept[t.ID] = struct{}{}
	}
	var out []models.Task
	for _, t := range tasks {
		if _, ok := kept[t.ID]; ok || t.IsTutorial() {
			continue
		}
		out = append(out, t)
	}
	return out
}
