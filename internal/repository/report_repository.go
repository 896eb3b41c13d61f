package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepdeck/intervue-backend/internal/model"
)

// ReportRepository handles analysis report data access.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Upsert stores a report; re-analysis replaces the previous result.
func (r *ReportRepository) Upsert(ctx context.Context, rep *model.Report) error {
	feedback, err := json.Marshal(rep.Feedback)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO reports (interview_id, total_questions, average_score, feedback, created_at)
		 VALUES ($1, $2, $3, $4::jsonb, $5)
		 ON CONFLICT (interview_id) DO UPDATE
		 SET total_questions = EXCLUDED.total_questions,
		     average_score = EXCLUDED.average_score,
		     feedback = EXCLUDED.feedback,
		     created_at = EXCLUDED.created_at`,
		rep.InterviewID, rep.TotalQuestions, rep.AverageScore, feedback, time.Now())
	return err
}

// GetByInterview retrieves the analysis report for an interview.
func (r *ReportRepository) GetByInterview(ctx context.Context, interviewID uuid.UUID) (*model.Report, error) {
	rep := &model.Report{}
	var feedback []byte
	err := r.pool.QueryRow(ctx,
		`SELECT interview_id, total_questions, average_score, feedback, created_at
		 FROM reports WHERE interview_id = $1`, interviewID,
	).Scan(&rep.InterviewID, &rep.TotalQuestions, &rep.AverageScore, &feedback, &rep.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(feedback, &rep.Feedback); err != nil {
		return nil, err
	}
	return rep, nil
}
