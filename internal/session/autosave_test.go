package session

import (
	"testing"
	"time"
)

type savedWrite struct {
	index int
	text  string
}

func newTestAutosave(interval, debounce time.Duration) (*AutosaveEngine, *[]savedWrite) {
	writes := &[]savedWrite{}
	e := NewAutosaveEngine(interval, debounce, func(index int, text string) {
		*writes = append(*writes, savedWrite{index: index, text: text})
	})
	return e, writes
}

func TestAutosavePeriodicTick(t *testing.T) {
	now := time.Now()
	e, writes := newTestAutosave(5*time.Second, time.Second)
	e.Bind(0, now)

	e.Touch("draft answer", now)
	e.Tick(now.Add(500 * time.Millisecond))
	if len(*writes) != 0 {
		t.Fatalf("persisted before interval elapsed: %v", *writes)
	}

	e.Tick(now.Add(5 * time.Second))
	if len(*writes) != 1 || (*writes)[0].text != "draft answer" {
		t.Fatalf("writes = %v, want one periodic save", *writes)
	}
}

func TestAutosaveNeverPersistsUnchangedTwice(t *testing.T) {
	now := time.Now()
	e, writes := newTestAutosave(5*time.Second, time.Second)
	e.Bind(0, now)

	e.Touch("stable answer", now)

	// Two consecutive interval ticks over a buffer that stopped changing:
	// exactly one persisted write.
	e.Tick(now.Add(5 * time.Second))
	e.Tick(now.Add(10 * time.Second))
	if len(*writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(*writes))
	}

	e.Touch("stable answer edited", now.Add(11*time.Second))
	e.Tick(now.Add(15 * time.Second))
	if len(*writes) != 2 {
		t.Fatalf("writes = %d after edit, want 2", len(*writes))
	}
}

func TestAutosaveDebounceSavesSooner(t *testing.T) {
	now := time.Now()
	e, writes := newTestAutosave(5*time.Second, time.Second)
	e.Bind(0, now)

	e.Touch("quick", now)
	// One second of quiet is enough; the 5s interval has not elapsed.
	e.Tick(now.Add(1100 * time.Millisecond))
	if len(*writes) != 1 {
		t.Fatalf("writes = %d, want debounce save", len(*writes))
	}
}

func TestAutosaveIgnoresEmptyBuffer(t *testing.T) {
	now := time.Now()
	e, writes := newTestAutosave(5*time.Second, time.Second)
	e.Bind(0, now)

	e.Touch("   ", now)
	e.Tick(now.Add(6 * time.Second))
	if len(*writes) != 0 {
		t.Fatalf("persisted blank buffer: %v", *writes)
	}
}

func TestAutosaveStopsAfterSlotSubmitted(t *testing.T) {
	now := time.Now()
	e, writes := newTestAutosave(5*time.Second, time.Second)
	e.Bind(0, now)

	e.Touch("answer", now)
	e.Stop()

	e.Touch("late edit", now.Add(time.Second))
	e.Tick(now.Add(10 * time.Second))
	if len(*writes) != 0 {
		t.Fatalf("engine persisted after Stop: %v", *writes)
	}
}

func TestAutosaveBindResetsState(t *testing.T) {
	now := time.Now()
	e, writes := newTestAutosave(5*time.Second, time.Second)
	e.Bind(0, now)
	e.Touch("first question answer", now)
	e.Tick(now.Add(5 * time.Second))

	e.Bind(1, now.Add(6*time.Second))
	if e.LastSaved() != "" {
		t.Fatalf("lastSaved = %q after rebind, want empty", e.LastSaved())
	}
	e.Touch("second question answer", now.Add(7*time.Second))
	e.Tick(now.Add(12 * time.Second))

	if len(*writes) != 2 {
		t.Fatalf("writes = %d, want 2", len(*writes))
	}
	if (*writes)[1].index != 1 {
		t.Fatalf("second write bound to index %d, want 1", (*writes)[1].index)
	}
}
