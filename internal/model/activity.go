package model

import (
	"time"

	"github.com/google/uuid"
)

// ActivityKind classifies an activity log entry.
type ActivityKind string

const (
	ActivitySessionStart ActivityKind = "session-start"
	ActivityTabBlur      ActivityKind = "tab-blur"
	ActivityTabHidden    ActivityKind = "tab-hidden"
	ActivityTimeout      ActivityKind = "timeout"
	ActivityMovement     ActivityKind = "movement"
	ActivityPasteBlocked ActivityKind = "paste-blocked"
)

// ActivityEntry is one timestamped observation in an interview's audit
// trail. Entries are append-only; they are never mutated after creation.
type ActivityEntry struct {
	InterviewID uuid.UUID    `json:"interview_id"`
	Kind        ActivityKind `json:"kind"`
	Message     string       `json:"message"`
	RecordedAt  time.Time    `json:"recorded_at"`
}
