package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTimeLimitSec is applied when a question row carries no time limit.
const DefaultTimeLimitSec = 60

// Question represents a single interview question. Immutable once loaded
// into a session; the authoritative copy lives in the question bank.
type Question struct {
	ID           uuid.UUID `json:"id"`
	DomainID     uuid.UUID `json:"domain_id"`
	QuestionText string    `json:"question_text"`
	TimeLimitSec int       `json:"time_limit_sec"`
	OrderNum     int       `json:"order_num"`
	CreatedAt    time.Time `json:"created_at"`
}

// EffectiveTimeLimit returns the per-question countdown in seconds,
// falling back to the default when the stored value is unset.
func (q Question) EffectiveTimeLimit() int {
	if q.TimeLimitSec <= 0 {
		return DefaultTimeLimitSec
	}
	return q.TimeLimitSec
}
