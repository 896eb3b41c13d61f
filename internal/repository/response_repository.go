package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepdeck/intervue-backend/internal/model"
)

// ResponseRepository handles submitted answer data access.
type ResponseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository creates a new ResponseRepository.
func NewResponseRepository(pool *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{pool: pool}
}

// Upsert writes a response, overwriting an earlier write for the same
// slot. Timeout writes never overwrite a manual submission: the manual
// path persisted the candidate's confirmed text, the timeout path only a
// snapshot.
func (r *ResponseRepository) Upsert(ctx context.Context, resp *model.Response) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO responses (interview_id, question_id, response_text, cause, submitted_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (interview_id, question_id) DO UPDATE
		 SET response_text = EXCLUDED.response_text,
		     cause = EXCLUDED.cause,
		     submitted_at = EXCLUDED.submitted_at
		 WHERE responses.cause <> 'manual' OR EXCLUDED.cause = 'manual'`,
		resp.InterviewID, resp.QuestionID, resp.ResponseText, resp.Cause, time.Now())
	return err
}

// ListByInterview retrieves all responses for an interview in question
// order.
func (r *ResponseRepository) ListByInterview(ctx context.Context, interviewID uuid.UUID) ([]model.Response, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.interview_id, r.question_id, r.response_text, r.cause, r.submitted_at
		 FROM responses r
		 JOIN questions q ON r.question_id = q.id
		 WHERE r.interview_id = $1
		 ORDER BY q.order_num`, interviewID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []model.Response
	for rows.Next() {
		var resp model.Response
		if err := rows.Scan(&resp.ID, &resp.InterviewID, &resp.QuestionID, &resp.ResponseText, &resp.Cause, &resp.SubmittedAt); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// CountByInterview returns how many responses an interview has.
func (r *ResponseRepository) CountByInterview(ctx context.Context, interviewID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM responses WHERE interview_id = $1`, interviewID,
	).Scan(&n)
	return n, err
}
