package session

import "testing"

func TestCountdownTimerFiresExactlyOnce(t *testing.T) {
	fired := 0
	timer := NewCountdownTimer(func(index int) { fired++ })

	timer.Bind(0, 60)
	for i := 0; i < 59; i++ {
		timer.Tick()
		if fired != 0 {
			t.Fatalf("timeout fired early at tick %d", i+1)
		}
	}

	timer.Tick()
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}

	// Extra ticks against the same binding must not re-fire.
	for i := 0; i < 10; i++ {
		timer.Tick()
	}
	if fired != 1 {
		t.Fatalf("fired = %d after extra ticks, want 1", fired)
	}
}

func TestCountdownTimerRebindResetsOneShotGuard(t *testing.T) {
	var indices []int
	timer := NewCountdownTimer(func(index int) { indices = append(indices, index) })

	timer.Bind(0, 2)
	timer.Tick()
	timer.Tick()

	timer.Bind(1, 3)
	if timer.Remaining() != 3 {
		t.Fatalf("remaining = %d after rebind, want 3", timer.Remaining())
	}
	timer.Tick()
	timer.Tick()
	timer.Tick()

	if len(indices) != 2 || indices[0] != 0 || indices[1] != 1 {
		t.Fatalf("timeout indices = %v, want [0 1]", indices)
	}
}

func TestCountdownTimerClampsNonPositiveLimit(t *testing.T) {
	fired := 0
	timer := NewCountdownTimer(func(int) { fired++ })

	timer.Bind(0, 0)
	if timer.Remaining() != 1 {
		t.Fatalf("remaining = %d for zero limit, want clamp to 1", timer.Remaining())
	}

	timer.Bind(0, -30)
	if timer.Remaining() != 1 {
		t.Fatalf("remaining = %d for negative limit, want clamp to 1", timer.Remaining())
	}

	timer.Tick()
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
}

func TestCountdownTimerStopIsIdempotent(t *testing.T) {
	fired := 0
	timer := NewCountdownTimer(func(int) { fired++ })

	timer.Bind(0, 5)
	timer.Tick()
	timer.Stop()
	timer.Stop()

	for i := 0; i < 10; i++ {
		timer.Tick()
	}
	if fired != 0 {
		t.Fatalf("fired = %d after stop, want 0", fired)
	}
	if timer.Running() {
		t.Fatal("timer still reports running after Stop")
	}
}
