package session

import "testing"

type recordingEmitter struct {
	events []Event
}

func (e *recordingEmitter) Emit(ev Event) {
	e.events = append(e.events, ev)
}

type recordingActivator struct {
	attaches int
	detaches int
}

func (a *recordingActivator) Attach() { a.attaches++ }
func (a *recordingActivator) Detach() { a.detaches++ }

func TestRelayDropsEventsWhileDetached(t *testing.T) {
	r := NewRelay()
	r.Emit(Event{Type: EventNotice})

	sink := &recordingEmitter{}
	r.SetTarget(sink)
	r.Emit(Event{Type: EventCountdown})

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 event after attach, got %d", len(sink.events))
	}
	if sink.events[0].Type != EventCountdown {
		t.Errorf("expected countdown event, got %s", sink.events[0].Type)
	}

	r.SetTarget(nil)
	r.Emit(Event{Type: EventNotice})
	if len(sink.events) != 1 {
		t.Errorf("detached relay delivered an event")
	}
}

func TestRelaySwapTarget(t *testing.T) {
	r := NewRelay()
	first := &recordingEmitter{}
	second := &recordingEmitter{}

	r.SetTarget(first)
	r.Emit(Event{Type: EventNotice})
	r.SetTarget(second)
	r.Emit(Event{Type: EventNotice})

	if len(first.events) != 1 || len(second.events) != 1 {
		t.Errorf("expected one event per target, got %d and %d", len(first.events), len(second.events))
	}
}

func TestActivatorRelayReplaysAttachState(t *testing.T) {
	r := NewActivatorRelay()
	r.Attach()

	// A target connected mid-session must immediately match the
	// remembered state.
	late := &recordingActivator{}
	r.SetTarget(late)
	if late.attaches != 1 {
		t.Fatalf("expected replayed attach, got %d", late.attaches)
	}

	r.Detach()
	if late.detaches != 1 {
		t.Errorf("expected forwarded detach, got %d", late.detaches)
	}

	// Reconnect after detach replays the detached state.
	next := &recordingActivator{}
	r.SetTarget(next)
	if next.attaches != 0 || next.detaches != 1 {
		t.Errorf("expected detach replay, got attaches=%d detaches=%d", next.attaches, next.detaches)
	}
}
