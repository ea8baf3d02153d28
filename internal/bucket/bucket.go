// Package bucket projects the task collection onto the current week.
package bucket

import (
	"slices"
	"time"

	"github.com/ldi/gotask/internal/week"
	"github.com/ldi/gotask/pkg/models"
)

type BlockKind string

const (
	KindWeekday   BlockKind = "weekday"
	KindSeparator BlockKind = "separator"
	KindFutureDay BlockKind = "future_day"
)

// Block is one section of the board. Separator blocks carry no tasks.
type Block struct {
	Kind       BlockKind     `json:"kind"`
	Title      string        `json:"title"`
	DisplayKey string        `json:"display_key,omitempty"`
	ShortDate  string        `json:"short_date,omitempty"`
	Date       time.Time     `json:"date"`
	Tasks      []models.Task `json:"tasks"`
}

// KeyFor returns the bucket a task belongs to: the weekday display key when
// its date falls in w, otherwise the locale's day key.
func KeyFor(t models.Task, w week.Week, loc week.Locale) (key string, weekday bool) {
	if day, ok := w.Find(t.Date); ok {
		return day.DisplayKey, true
	}
	return loc.DayKey(w.DateOf(t.Date)), false
}

// Group partitions tasks by day. The tutorial task is left out. Tasks keep
// their input order within a bucket.
func Group(tasks []models.Task, w week.Week, loc week.Locale) map[string][]models.Task {
	groups := make(map[string][]models.Task)
	for _, t := range tasks {
		if t.IsTutorial() {
			continue
		}
		key, _ := KeyFor(t, w, loc)
		groups[key] = append(groups[key], t)
	}
	return groups
}

// Build returns the seven weekday blocks, then, when any task falls outside
// the week, a separator and one block per overflow day in ascending date order.
func Build(tasks []models.Task, w week.Week, loc week.Locale) []Block {
	groups := Group(tasks, w, loc)

	blocks := make([]Block, 0, len(w)+1)
	for _, day := range w {
		blocks = append(blocks, Block{
			Kind:       KindWeekday,
			Title:      day.Name,
			DisplayKey: day.DisplayKey,
			ShortDate:  day.ShortDate,
			Date:       day.Date,
			Tasks:      groups[day.DisplayKey],
		})
		delete(groups, day.DisplayKey)
	}
	if len(groups) == 0 {
		return blocks
	}

	future := make([]Block, 0, len(groups))
	for key, list := range groups {
		date := w.DateOf(list[0].Date)
		future = append(future, Block{
			Kind:       KindFutureDay,
			Title:      key,
			DisplayKey: key,
			ShortDate:  loc.ShortDate(date),
			Date:       date,
			Tasks:      list,
		})
	}
	slices.SortFunc(future, func(a, b Block) int {
		return a.Date.Compare(b.Date)
	})

	blocks = append(blocks, Block{Kind: KindSeparator, Title: loc.Strings().FutureTasks})
	return append(blocks, future...)
}

// SortForDisplay orders a bucket important-first, oldest first within each group.
// The input is not modified.
func SortForDisplay(tasks []models.Task) []models.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b models.Task) int {
		if a.Important != b.Important {
			if a.Important {
				return -1
			}
			return 1
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

// Count returns the number of tasks across blocks.
func Count(blocks []Block) int {
	n := 0
	for _, b := range blocks {
		n += len(b.Tasks)
	}
	return n
}
