package session

// Activator attaches and detaches exit interception at the client boundary
// (beforeunload prompt, history back trapping). Listener lifetime is tied
// to session phase, not page mount timing: the guard attaches on entering
// Running and detaches on leaving it.
type Activator interface {
	Attach()
	Detach()
}

// NoopActivator satisfies Activator for tests and transports with no
// navigation to guard.
type NoopActivator struct{}

func (NoopActivator) Attach() {}
func (NoopActivator) Detach() {}

// NavigationGuard intercepts back navigation during an active session.
// Tab-close and refresh interception happen natively at the client once
// attached; in-app back raises a confirmation modal handled here.
type NavigationGuard struct {
	activator Activator
	attached  bool
	modalOpen bool
}

// NewNavigationGuard creates a guard around the given activator.
func NewNavigationGuard(activator Activator) *NavigationGuard {
	if activator == nil {
		activator = NoopActivator{}
	}
	return &NavigationGuard{activator: activator}
}

// SetPhase activates or deactivates interception for the given phase.
// Outside Running the listeners are detached, not merely ignored.
func (g *NavigationGuard) SetPhase(p Phase) {
	if p == PhaseRunning {
		if !g.attached {
			g.activator.Attach()
			g.attached = true
		}
		return
	}
	if g.attached {
		g.activator.Detach()
		g.attached = false
	}
	g.modalOpen = false
}

// BackIntent records an in-app back attempt. Returns true when the
// confirmation modal should be shown; the session keeps running underneath.
func (g *NavigationGuard) BackIntent() bool {
	if !g.attached {
		return false
	}
	g.modalOpen = true
	return true
}

// Stay dismisses the modal without touching session state.
func (g *NavigationGuard) Stay() {
	g.modalOpen = false
}

// ModalOpen reports whether the leave-confirmation modal is up.
func (g *NavigationGuard) ModalOpen() bool { return g.modalOpen }

// Attached reports whether client listeners are currently installed.
func (g *NavigationGuard) Attached() bool { return g.attached }
