package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepdeck/intervue-backend/internal/model"
)

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByDomain retrieves all questions for a domain, ordered by order_num.
func (r *QuestionRepository) ListByDomain(ctx context.Context, domainID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, domain_id, question_text, time_limit_sec, order_num, created_at
		 FROM questions WHERE domain_id = $1
		 ORDER BY order_num`, domainID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.DomainID, &q.QuestionText, &q.TimeLimitSec, &q.OrderNum, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (domain_id, question_text, time_limit_sec, order_num)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		q.DomainID, q.QuestionText, q.TimeLimitSec, q.OrderNum,
	).Scan(&q.ID, &q.CreatedAt)
}
