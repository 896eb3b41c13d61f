package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/prepdeck/intervue-backend/internal/model"
)

// ActivityLog is the append-only audit trail of a session. Entries are
// never mutated, only grown; a snapshot accompanies every submission.
// The controller lock serializes all writers.
type ActivityLog struct {
	interviewID uuid.UUID
	entries     []model.ActivityEntry
}

// NewActivityLog creates an empty log for an interview.
func NewActivityLog(interviewID uuid.UUID) *ActivityLog {
	return &ActivityLog{interviewID: interviewID}
}

// Append adds one entry.
func (l *ActivityLog) Append(kind model.ActivityKind, message string, at time.Time) {
	l.entries = append(l.entries, model.ActivityEntry{
		InterviewID: l.interviewID,
		Kind:        kind,
		Message:     message,
		RecordedAt:  at,
	})
}

// Movement appends a movement-change entry (used by the sampler).
func (l *ActivityLog) Movement(message string, at time.Time) {
	l.Append(model.ActivityMovement, message, at)
}

// Snapshot returns a copy of all entries so far.
func (l *ActivityLog) Snapshot() []model.ActivityEntry {
	out := make([]model.ActivityEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *ActivityLog) Len() int { return len(l.entries) }
