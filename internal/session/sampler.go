package session

import (
	"fmt"
	"math/rand"
	"time"
)

// Observation is one categorized sample taken from the media stream.
type Observation struct {
	Category string
}

// Movement categories produced by the stub detector.
const (
	MovementMinimal     = "minimal"
	MovementSignificant = "significant"
)

// MotionDetector produces one observation from the live media handle.
// The real detection algorithm is out of scope here; StubDetector stands
// in, and any replacement must preserve the sampler's edge-triggered
// logging contract.
type MotionDetector interface {
	Sample(h MediaHandle) (Observation, error)
}

// StubDetector is the placeholder detector: a random split between
// significant and minimal movement.
// TODO: replace with frame-differencing once the capture relay ships.
type StubDetector struct {
	rng *rand.Rand
}

// NewStubDetector creates a stub detector with its own PRNG.
func NewStubDetector(seed int64) *StubDetector {
	return &StubDetector{rng: rand.New(rand.NewSource(seed))}
}

func (d *StubDetector) Sample(h MediaHandle) (Observation, error) {
	if d.rng.Float64() > 0.7 {
		return Observation{Category: MovementSignificant}, nil
	}
	return Observation{Category: MovementMinimal}, nil
}

// BackgroundSampler takes one observation per fixed interval while the
// session runs, and appends an activity entry only when the observed
// category differs from the previous sample. Edge-triggered logging bounds
// log growth to state changes, not raw sample count.
type BackgroundSampler struct {
	interval time.Duration
	detector MotionDetector
	log      *ActivityLog

	handle     MediaHandle
	last       string
	lastSample time.Time
	active     bool
}

// NewBackgroundSampler creates a sampler appending to log.
func NewBackgroundSampler(interval time.Duration, detector MotionDetector, log *ActivityLog) *BackgroundSampler {
	return &BackgroundSampler{
		interval: interval,
		detector: detector,
		log:      log,
	}
}

// Start begins sampling against the given handle.
func (s *BackgroundSampler) Start(h MediaHandle, now time.Time) {
	s.handle = h
	s.last = ""
	s.lastSample = now
	s.active = true
}

// Stop halts sampling immediately. Idempotent.
func (s *BackgroundSampler) Stop() {
	s.active = false
	s.handle = nil
}

// Active reports whether the sampler is running.
func (s *BackgroundSampler) Active() bool { return s.active }

// Tick takes a sample if the interval has elapsed.
func (s *BackgroundSampler) Tick(now time.Time) {
	if !s.active || now.Sub(s.lastSample) < s.interval {
		return
	}
	s.lastSample = now

	obs, err := s.detector.Sample(s.handle)
	if err != nil {
		return
	}
	if s.last != "" && obs.Category != s.last {
		s.log.Movement(fmt.Sprintf("User movement changed to %s", obs.Category), now)
	}
	s.last = obs.Category
}
