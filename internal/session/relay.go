package session

import "sync"

// Relay is an Emitter whose target can be swapped at runtime. The
// controller keeps emitting through the same Relay across WebSocket
// reconnects; events emitted while no target is attached are dropped.
type Relay struct {
	mu     sync.Mutex
	target Emitter
}

// NewRelay creates a detached relay.
func NewRelay() *Relay {
	return &Relay{}
}

// SetTarget points the relay at a new emitter. Pass nil to detach.
func (r *Relay) SetTarget(target Emitter) {
	r.mu.Lock()
	r.target = target
	r.mu.Unlock()
}

func (r *Relay) Emit(ev Event) {
	r.mu.Lock()
	target := r.target
	r.mu.Unlock()
	if target != nil {
		target.Emit(ev)
	}
}

// ActivatorRelay is an Activator whose target can be swapped at runtime.
// It remembers the attach state so a target connected mid-session is
// brought up to date immediately.
type ActivatorRelay struct {
	mu       sync.Mutex
	target   Activator
	attached bool
}

// NewActivatorRelay creates a detached activator relay.
func NewActivatorRelay() *ActivatorRelay {
	return &ActivatorRelay{}
}

// SetTarget points the relay at a new activator, replaying the current
// attach state onto it.
func (r *ActivatorRelay) SetTarget(target Activator) {
	r.mu.Lock()
	r.target = target
	attached := r.attached
	r.mu.Unlock()
	if target == nil {
		return
	}
	if attached {
		target.Attach()
	} else {
		target.Detach()
	}
}

func (r *ActivatorRelay) Attach() {
	r.mu.Lock()
	r.attached = true
	target := r.target
	r.mu.Unlock()
	if target != nil {
		target.Attach()
	}
}

func (r *ActivatorRelay) Detach() {
	r.mu.Lock()
	r.attached = false
	target := r.target
	r.mu.Unlock()
	if target != nil {
		target.Detach()
	}
}
