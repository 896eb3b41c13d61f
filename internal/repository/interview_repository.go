package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepdeck/intervue-backend/internal/model"
)

// InterviewRepository handles interview run data access.
type InterviewRepository struct {
	pool *pgxpool.Pool
}

// NewInterviewRepository creates a new InterviewRepository.
func NewInterviewRepository(pool *pgxpool.Pool) *InterviewRepository {
	return &InterviewRepository{pool: pool}
}

// Create inserts a new in-progress interview.
func (r *InterviewRepository) Create(ctx context.Context, iv *model.Interview) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO interviews (domain_id, user_id, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, started_at`,
		iv.DomainID, iv.UserID, model.InterviewStatusInProgress,
	).Scan(&iv.ID, &iv.StartedAt)
}

// GetByID retrieves one interview.
func (r *InterviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Interview, error) {
	iv := &model.Interview{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, domain_id, user_id, started_at, finished_at, status
		 FROM interviews WHERE id = $1`, id,
	).Scan(&iv.ID, &iv.DomainID, &iv.UserID, &iv.StartedAt, &iv.FinishedAt, &iv.Status)
	if err != nil {
		return nil, err
	}
	return iv, nil
}

// GetActiveByUser retrieves the user's in-progress interview, if any.
func (r *InterviewRepository) GetActiveByUser(ctx context.Context, userID int) (*model.Interview, error) {
	iv := &model.Interview{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, domain_id, user_id, started_at, finished_at, status
		 FROM interviews
		 WHERE user_id = $1 AND status = $2
		 ORDER BY started_at DESC
		 LIMIT 1`, userID, model.InterviewStatusInProgress,
	).Scan(&iv.ID, &iv.DomainID, &iv.UserID, &iv.StartedAt, &iv.FinishedAt, &iv.Status)
	if err != nil {
		return nil, err
	}
	return iv, nil
}

// Finish marks an interview completed or abandoned and stamps finished_at.
func (r *InterviewRepository) Finish(ctx context.Context, id uuid.UUID, status model.InterviewStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE interviews SET status = $1, finished_at = $2 WHERE id = $3`,
		status, time.Now(), id)
	return err
}

// ListByUser retrieves a user's interviews, most recent first.
func (r *InterviewRepository) ListByUser(ctx context.Context, userID int) ([]model.Interview, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, domain_id, user_id, started_at, finished_at, status
		 FROM interviews
		 WHERE user_id = $1
		 ORDER BY started_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interviews []model.Interview
	for rows.Next() {
		var iv model.Interview
		if err := rows.Scan(&iv.ID, &iv.DomainID, &iv.UserID, &iv.StartedAt, &iv.FinishedAt, &iv.Status); err != nil {
			return nil, err
		}
		interviews = append(interviews, iv)
	}
	return interviews, rows.Err()
}
