package model

import (
	"time"

	"github.com/google/uuid"
)

// ResponseSummary pairs a question with the candidate's final answer,
// as handed to the analysis stage.
type ResponseSummary struct {
	QuestionID   uuid.UUID `json:"question_id"`
	QuestionText string    `json:"question_text"`
	UserResponse string    `json:"user_response"`
}

// AnalysisBundle is the terminal output of a finished session: everything
// the analysis stage needs, self-contained.
type AnalysisBundle struct {
	InterviewID uuid.UUID         `json:"interview_id"`
	DomainName  string            `json:"domain_name"`
	AdminName   string            `json:"admin_name"`
	Questions   []Question        `json:"questions"`
	Responses   []ResponseSummary `json:"responses"`
	ActivityLog []ActivityEntry   `json:"activity_log"`
}

// QuestionFeedback is the per-question outcome of analysis.
type QuestionFeedback struct {
	QuestionID   uuid.UUID `json:"question_id"`
	QuestionText string    `json:"question_text"`
	UserResponse string    `json:"user_response"`
	Score        float64   `json:"score"`
	Feedback     string    `json:"feedback"`
}

// Report is the stored analysis result for a completed interview.
type Report struct {
	InterviewID    uuid.UUID          `json:"interview_id"`
	TotalQuestions int                `json:"total_questions"`
	AverageScore   float64            `json:"average_score"`
	Feedback       []QuestionFeedback `json:"feedback"`
	CreatedAt      time.Time          `json:"created_at"`
}
