package session

import (
	"strings"
	"time"
)

// AutosaveEngine periodically persists the in-progress answer for the
// active question. Two triggers: a fixed-interval tick, and a quiet-period
// debounce that saves sooner once typing pauses. A persist is never a
// submission; it only updates the slot's saved buffer.
//
// Like the timer, the engine is driven by the controller heartbeat and is
// not safe for concurrent use on its own.
type AutosaveEngine struct {
	interval time.Duration
	debounce time.Duration
	persist  func(index int, text string)

	index        int
	draft        string
	lastSaved    string
	lastEdit     time.Time
	lastPeriodic time.Time
	active       bool
}

// NewAutosaveEngine creates an engine. persist receives the bound question
// index and the trimmed buffer.
func NewAutosaveEngine(interval, debounce time.Duration, persist func(index int, text string)) *AutosaveEngine {
	return &AutosaveEngine{
		interval: interval,
		debounce: debounce,
		persist:  persist,
	}
}

// Bind points the engine at a new question slot and clears edit state.
func (e *AutosaveEngine) Bind(index int, now time.Time) {
	e.index = index
	e.draft = ""
	e.lastSaved = ""
	e.lastEdit = time.Time{}
	e.lastPeriodic = now
	e.active = true
}

// Stop deactivates the engine. Called when the bound slot is submitted;
// a frozen slot must never receive another write.
func (e *AutosaveEngine) Stop() {
	e.active = false
}

// Touch records a keystroke update to the live buffer.
func (e *AutosaveEngine) Touch(text string, now time.Time) {
	if !e.active {
		return
	}
	e.draft = text
	e.lastEdit = now
}

// Tick evaluates both save triggers against the current time. An unchanged
// buffer is never persisted twice.
func (e *AutosaveEngine) Tick(now time.Time) {
	if !e.active {
		return
	}

	trimmed := strings.TrimSpace(e.draft)
	changed := trimmed != "" && trimmed != e.lastSaved

	quiet := !e.lastEdit.IsZero() && now.Sub(e.lastEdit) >= e.debounce
	periodicDue := now.Sub(e.lastPeriodic) >= e.interval

	if changed && (quiet || periodicDue) {
		e.persist(e.index, trimmed)
		e.lastSaved = trimmed
	}
	if periodicDue {
		e.lastPeriodic = now
	}
}

// LastSaved returns the most recently persisted buffer for the bound slot.
func (e *AutosaveEngine) LastSaved() string { return e.lastSaved }

// Active reports whether the engine is bound to an unsubmitted slot.
func (e *AutosaveEngine) Active() bool { return e.active }
