package model

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionCause records which path froze an answer slot.
type SubmissionCause string

const (
	CauseNone    SubmissionCause = "none"
	CauseManual  SubmissionCause = "manual"
	CauseTimeout SubmissionCause = "timeout"
)

// Response is the persisted form of one submitted answer slot.
// At most one row per (interview, question).
type Response struct {
	ID           uuid.UUID       `json:"id"`
	InterviewID  uuid.UUID       `json:"interview_id"`
	QuestionID   uuid.UUID       `json:"question_id"`
	ResponseText string          `json:"response_text"`
	Cause        SubmissionCause `json:"cause"`
	SubmittedAt  time.Time       `json:"submitted_at"`
}
