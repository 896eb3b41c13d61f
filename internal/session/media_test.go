package session

import (
	"context"
	"errors"
	"testing"
)

type fakeHandle struct {
	stops int
}

func (h *fakeHandle) StopTracks() { h.stops++ }

func TestMediaLifecycleAcquireAndRelease(t *testing.T) {
	m := NewMediaLifecycle()
	h := &fakeHandle{}

	got, err := m.Acquire(context.Background(), ResolvedGateway{Handle: h})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got != h {
		t.Fatal("Acquire returned a different handle")
	}
	if !m.Granted() {
		t.Fatal("Granted() = false after successful acquire")
	}

	m.Release()
	if h.stops != 1 {
		t.Fatalf("stops = %d, want 1", h.stops)
	}
	if m.Handle() != nil {
		t.Fatal("handle not cleared after release")
	}
}

func TestMediaLifecycleDoubleReleaseIsNoop(t *testing.T) {
	m := NewMediaLifecycle()
	h := &fakeHandle{}
	if _, err := m.Acquire(context.Background(), ResolvedGateway{Handle: h}); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	m.Release()
	m.Release()
	if h.stops != 1 {
		t.Fatalf("stops = %d after double release, want 1", h.stops)
	}

	// Release with no handle at all is also safe.
	NewMediaLifecycle().Release()
}

func TestMediaLifecycleAcquireWhileLiveReturnsExisting(t *testing.T) {
	m := NewMediaLifecycle()
	first := &fakeHandle{}
	second := &fakeHandle{}

	if _, err := m.Acquire(context.Background(), ResolvedGateway{Handle: first}); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	got, err := m.Acquire(context.Background(), ResolvedGateway{Handle: second})
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if got != first {
		t.Fatal("second Acquire did not return the existing handle")
	}
}

func TestMediaLifecycleDeniedThenRetry(t *testing.T) {
	m := NewMediaLifecycle()

	_, err := m.Acquire(context.Background(), ResolvedGateway{Err: errors.New("Permission denied")})
	var denied *MediaAccessDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("err = %v, want MediaAccessDeniedError", err)
	}
	if m.Granted() {
		t.Fatal("Granted() = true after denial")
	}

	h := &fakeHandle{}
	if _, err := m.Acquire(context.Background(), ResolvedGateway{Handle: h}); err != nil {
		t.Fatalf("retry Acquire: %v", err)
	}
	if !m.Granted() {
		t.Fatal("retry did not grant")
	}
}
