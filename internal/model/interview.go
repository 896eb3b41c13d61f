package model

import (
	"time"

	"github.com/google/uuid"
)

// InterviewStatus enumerates persisted interview states.
type InterviewStatus string

const (
	InterviewStatusInProgress InterviewStatus = "IN_PROGRESS"
	InterviewStatusCompleted  InterviewStatus = "COMPLETED"
	InterviewStatusAbandoned  InterviewStatus = "ABANDONED"
)

// Interview represents a candidate's run through a domain's question set.
type Interview struct {
	ID         uuid.UUID       `json:"id"`
	DomainID   uuid.UUID       `json:"domain_id"`
	UserID     int             `json:"user_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Status     InterviewStatus `json:"status"`

	// AnsweredCount is filled by the service layer, not stored.
	AnsweredCount int `json:"answered_count"`
}

// StartInterviewRequest is the payload for starting an interview.
type StartInterviewRequest struct {
	DomainID string `json:"domain_id" binding:"required,uuid"`
}
