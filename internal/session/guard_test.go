package session

import "testing"

type fakeActivator struct {
	attaches int
	detaches int
}

func (a *fakeActivator) Attach() { a.attaches++ }
func (a *fakeActivator) Detach() { a.detaches++ }

func TestNavigationGuardAttachFollowsPhase(t *testing.T) {
	act := &fakeActivator{}
	g := NewNavigationGuard(act)

	g.SetPhase(PhaseAwaitingPermissions)
	g.SetPhase(PhaseReady)
	if act.attaches != 0 {
		t.Fatalf("attached before Running: %d", act.attaches)
	}

	g.SetPhase(PhaseRunning)
	if act.attaches != 1 || !g.Attached() {
		t.Fatalf("attaches = %d, attached = %v", act.attaches, g.Attached())
	}

	// Re-entering the same phase must not stack listeners.
	g.SetPhase(PhaseRunning)
	if act.attaches != 1 {
		t.Fatalf("attaches after repeat SetPhase = %d, want 1", act.attaches)
	}

	g.SetPhase(PhaseEnded)
	if act.detaches != 1 || g.Attached() {
		t.Fatalf("detaches = %d, attached = %v", act.detaches, g.Attached())
	}
}

func TestNavigationGuardBackIntentOpensModal(t *testing.T) {
	g := NewNavigationGuard(&fakeActivator{})

	if g.BackIntent() {
		t.Fatal("BackIntent honored while detached")
	}

	g.SetPhase(PhaseRunning)
	if !g.BackIntent() {
		t.Fatal("BackIntent ignored while running")
	}
	if !g.ModalOpen() {
		t.Fatal("modal not open after BackIntent")
	}

	g.Stay()
	if g.ModalOpen() {
		t.Fatal("modal still open after Stay")
	}
}

func TestNavigationGuardPhaseChangeClosesModal(t *testing.T) {
	g := NewNavigationGuard(&fakeActivator{})
	g.SetPhase(PhaseRunning)
	g.BackIntent()

	g.SetPhase(PhaseEnded)
	if g.ModalOpen() {
		t.Fatal("modal survived phase transition out of Running")
	}
}

func TestNavigationGuardNilActivatorDefaultsToNoop(t *testing.T) {
	g := NewNavigationGuard(nil)
	g.SetPhase(PhaseRunning)
	if !g.Attached() {
		t.Fatal("guard did not attach with noop activator")
	}
}
