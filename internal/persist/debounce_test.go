package persist

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var calls, last atomic.Int32

	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Trigger(func() {
			calls.Add(1)
			last.Store(n)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("Expected 1 call, got %d", got)
	}
	if got := last.Load(); got != 5 {
		t.Errorf("Expected last trigger to win, got %d", got)
	}
	if d.Pending() {
		t.Error("Expected nothing pending after firing")
	}
}

func TestDebouncerFlush(t *testing.T) {
	d := NewDebouncer(time.Hour)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })

	if !d.Pending() {
		t.Fatal("Expected pending function")
	}
	d.Flush()
	if calls.Load() != 1 {
		t.Fatalf("Expected flush to run the function")
	}
	d.Flush()
	if calls.Load() != 1 {
		t.Errorf("Expected second flush to be a no-op")
	}
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("Expected stopped function not to run")
	}
}
