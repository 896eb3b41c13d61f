package service

import (
	"testing"

	"github.com/google/uuid"
)

func TestRegistryPutConverges(t *testing.T) {
	r := NewSessionRegistry()
	id := uuid.New()

	first := &LiveSession{}
	second := &LiveSession{}

	if got := r.Put(id, first); got != first {
		t.Fatal("first Put should return its own session")
	}
	if got := r.Put(id, second); got != first {
		t.Error("second Put for the same interview should return the existing session")
	}
	if r.Count() != 1 {
		t.Errorf("expected 1 live session, got %d", r.Count())
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewSessionRegistry()
	id := uuid.New()
	r.Put(id, &LiveSession{})
	r.Remove(id)

	if _, ok := r.Get(id); ok {
		t.Error("session still reachable after Remove")
	}
	if r.Count() != 0 {
		t.Errorf("expected empty registry, got %d", r.Count())
	}
}
