package session

// CountdownTimer is the per-question deadline. One instance survives all
// questions in a session; Bind, not construction, is the reset point, so
// advancing questions never leaks a scheduled task.
//
// The timer has no goroutine of its own. The controller's heartbeat calls
// Tick once per second while holding the session lock, which keeps the
// timeout callback on the same cooperative timeline as every other event.
type CountdownTimer struct {
	onTimeout func(index int)

	index     int
	remaining int
	running   bool
	fired     bool
}

// NewCountdownTimer creates a timer. onTimeout receives the bound question
// index and is invoked at most once per binding.
func NewCountdownTimer(onTimeout func(index int)) *CountdownTimer {
	return &CountdownTimer{onTimeout: onTimeout}
}

// Bind stops any running countdown and restarts it for the given question
// index with the given limit in seconds. Limits below 1 are clamped to 1.
// Binding resets the one-shot guard.
func (t *CountdownTimer) Bind(index, limitSec int) {
	if limitSec < 1 {
		limitSec = 1
	}
	t.index = index
	t.remaining = limitSec
	t.running = true
	t.fired = false
}

// Stop halts the countdown. Idempotent.
func (t *CountdownTimer) Stop() {
	t.running = false
}

// Tick advances the countdown by one second. On reaching zero it fires the
// timeout callback exactly once and stops; it never re-fires for the same
// binding.
func (t *CountdownTimer) Tick() {
	if !t.running || t.fired {
		return
	}
	t.remaining--
	if t.remaining > 0 {
		return
	}
	t.remaining = 0
	t.fired = true
	t.running = false
	if t.onTimeout != nil {
		t.onTimeout(t.index)
	}
}

// Remaining returns the seconds left for the current binding.
func (t *CountdownTimer) Remaining() int { return t.remaining }

// Running reports whether the countdown is active.
func (t *CountdownTimer) Running() bool { return t.running }

// BoundIndex returns the question index of the current binding.
func (t *CountdownTimer) BoundIndex() int { return t.index }
