package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// scriptedDetector replays a fixed category sequence, repeating the last
// entry once exhausted.
type scriptedDetector struct {
	script []string
	pos    int
}

func (d *scriptedDetector) Sample(h MediaHandle) (Observation, error) {
	if d.pos >= len(d.script) {
		return Observation{Category: d.script[len(d.script)-1]}, nil
	}
	obs := Observation{Category: d.script[d.pos]}
	d.pos++
	return obs, nil
}

func TestSamplerLogsOnlyCategoryChanges(t *testing.T) {
	log := NewActivityLog(uuid.New())
	det := &scriptedDetector{script: []string{
		MovementMinimal,
		MovementMinimal,
		MovementSignificant,
		MovementSignificant,
		MovementMinimal,
	}}
	s := NewBackgroundSampler(5*time.Second, det, log)

	now := time.Now()
	s.Start(&fakeHandle{}, now)
	for i := 1; i <= 5; i++ {
		s.Tick(now.Add(time.Duration(i*5) * time.Second))
	}

	// minimal→significant and significant→minimal; the first sample and
	// repeats never log.
	if log.Len() != 2 {
		t.Fatalf("log entries = %d, want 2", log.Len())
	}
	entries := log.Snapshot()
	if entries[0].Message != "User movement changed to significant" {
		t.Fatalf("first entry = %q", entries[0].Message)
	}
	if entries[1].Message != "User movement changed to minimal" {
		t.Fatalf("second entry = %q", entries[1].Message)
	}
}

func TestSamplerRespectsInterval(t *testing.T) {
	log := NewActivityLog(uuid.New())
	det := &scriptedDetector{script: []string{MovementMinimal, MovementSignificant}}
	s := NewBackgroundSampler(5*time.Second, det, log)

	now := time.Now()
	s.Start(&fakeHandle{}, now)
	for i := 1; i <= 4; i++ {
		s.Tick(now.Add(time.Duration(i) * time.Second))
	}
	if det.pos != 0 {
		t.Fatalf("sampled %d times before interval elapsed", det.pos)
	}
	s.Tick(now.Add(5 * time.Second))
	if det.pos != 1 {
		t.Fatalf("samples after interval = %d, want 1", det.pos)
	}
}

func TestSamplerStopHaltsSampling(t *testing.T) {
	log := NewActivityLog(uuid.New())
	det := &scriptedDetector{script: []string{MovementMinimal}}
	s := NewBackgroundSampler(5*time.Second, det, log)

	now := time.Now()
	s.Start(&fakeHandle{}, now)
	s.Stop()
	s.Stop()
	s.Tick(now.Add(10 * time.Second))
	if det.pos != 0 || s.Active() {
		t.Fatalf("sampler still live after Stop: pos=%d active=%v", det.pos, s.Active())
	}
}
