package planner

import (
	"reflect"
	"sync"
	"testing"
)

func TestSelectionToggle(t *testing.T) {
	s := NewSelection()

	if !s.Toggle("s1", "b") {
		t.Error("Expected b to be selected")
	}
	s.Toggle("s1", "a")
	s.Toggle("s2", "c")

	if got := s.Peek("s1"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Unexpected selection: %v", got)
	}
	if s.Toggle("s1", "b") {
		t.Error("Expected b to be deselected")
	}
	if got := s.Peek("s1"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Unexpected selection: %v", got)
	}
	if got := s.Peek("s2"); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("Sessions should be independent: %v", got)
	}
}

func TestSelectionToggleAll(t *testing.T) {
	s := NewSelection()
	s.Toggle("s", "a")

	if !s.ToggleAll("s", []string{"a", "b"}) {
		t.Error("Expected partial selection to select all")
	}
	if got := s.Peek("s"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Unexpected selection: %v", got)
	}
	if s.ToggleAll("s", []string{"a", "b"}) {
		t.Error("Expected full selection to deselect")
	}
	if got := s.Peek("s"); len(got) != 0 {
		t.Errorf("Expected empty selection, got %v", got)
	}
	if s.ToggleAll("s", nil) {
		t.Error("Expected empty day to select nothing")
	}
}

func TestSelectionGetAndClear(t *testing.T) {
	s := NewSelection()
	s.Toggle("s", "a")

	if got := s.GetAndClear("s"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Unexpected ids: %v", got)
	}
	if got := s.GetAndClear("s"); len(got) != 0 {
		t.Errorf("Expected cleared selection, got %v", got)
	}
}

func TestSelectionConcurrency(t *testing.T) {
	s := NewSelection()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Toggle("s", string(rune('a'+i%26)))
			_ = s.Peek("s")
		}(i)
	}
	wg.Wait()
}
