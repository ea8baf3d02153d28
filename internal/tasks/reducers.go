package tasks

import (
	"slices"

	"github.com/ldi/gotask/pkg/models"
)

// state is copy-on-write: reducers return a new slice and never touch the old one.
type state struct {
	tasks []models.Task
	index map[string]int
}

func newState(list []models.Task) state {
	s := state{
		tasks: make([]models.Task, 0, len(list)),
		index: make(map[string]int, len(list)),
	}
	for _, t := range list {
		if _, dup := s.index[t.ID]; dup {
			continue
		}
		s.index[t.ID] = len(s.tasks)
		s.tasks = append(s.tasks, t)
	}
	return s
}

func (s state) clone() []models.Task {
	return slices.Clone(s.tasks)
}

// reduceAdd handles Add commands
func reduceAdd(s state, c Add) (state, bool) {
	if _, exists := s.index[c.Task.ID]; exists {
		return s, false
	}
	return newState(append(s.clone(), c.Task)), true
}

// reduceUpdate handles Update commands
func reduceUpdate(s state, c Update) (state, bool) {
	i, exists := s.index[c.ID]
	if !exists || c.Patch.IsEmpty() {
		return s, false
	}
	next := s.clone()
	next[i] = c.Patch.Apply(next[i])
	return newState(next), true
}

// reduceDelete handles Delete commands
func reduceDelete(s state, c Delete) (state, bool) {
	drop := make(map[string]struct{}, len(c.IDs))
	for _, id := range c.IDs {
		if _, exists := s.index[id]; exists {
			drop[id] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return s, false
	}
	next := make([]models.Task, 0, len(s.tasks)-len(drop))
	for _, t := range s.tasks {
		if _, gone := drop[t.ID]; !gone {
			next = append(next, t)
		}
	}
	return newState(next), true
}

// reduceTogglePin handles TogglePin commands
func reduceTogglePin(s state, c TogglePin) (state, bool) {
	i, exists := s.index[c.ID]
	if !exists {
		return s, false
	}
	next := s.clone()
	next[i].Pinned = !next[i].Pinned
	return newState(next), true
}

// reduceDuplicate handles Duplicate commands
func reduceDuplicate(s state, c Duplicate) (state, bool) {
	return reduceAdd(s, Add{Task: c.copy()})
}

// reduceReplaceAll handles ReplaceAll commands
func reduceReplaceAll(_ state, c ReplaceAll) (state, bool) {
	return newState(c.Tasks), true
}
