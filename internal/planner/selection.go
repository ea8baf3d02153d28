package planner

import (
	"slices"
	"sync"
)

// Selection provides thread-safe per-session multi-select state.
type Selection struct {
	mu       sync.RWMutex
	selected map[string]map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{
		selected: make(map[string]map[string]struct{}),
	}
}

func (s *Selection) set(session string) map[string]struct{} {
	if s.selected[session] == nil {
		s.selected[session] = make(map[string]struct{})
	}
	return s.selected[session]
}

// Toggle flips id and reports whether it is now selected.
func (s *Selection) Toggle(session, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.set(session)
	if _, ok := set[id]; ok {
		delete(set, id)
		return false
	}
	set[id] = struct{}{}
	return true
}

// ToggleAll selects every id unless all are already selected, in which case
// it deselects them. It reports whether the ids are now selected.
func (s *Selection) ToggleAll(session string, ids []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.set(session)
	all := len(ids) > 0
	for _, id := range ids {
		if _, ok := set[id]; !ok {
			all = false
			break
		}
	}
	for _, id := range ids {
		if all {
			delete(set, id)
		} else {
			set[id] = struct{}{}
		}
	}
	return !all && len(ids) > 0
}

func (s *Selection) Clear(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selected, session)
}

// Peek returns the selected ids in sorted order.
func (s *Selection) Peek(session string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.selected[session])
}

// GetAndClear returns the selected ids and empties the session.
func (s *Selection) GetAndClear(session string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := sortedKeys(s.selected[session])
	delete(s.selected, session)
	return ids
}

func sortedKeys(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
