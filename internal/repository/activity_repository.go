package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepdeck/intervue-backend/internal/model"
)

// ActivityRepository handles activity audit trail data access.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

// InsertBatch bulk-inserts activity entries with COPY.
func (r *ActivityRepository) InsertBatch(ctx context.Context, entries []model.ActivityEntry) error {
	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []interface{}{e.InterviewID, e.Kind, e.Message, e.RecordedAt})
	}
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"activity_entries"},
		[]string{"interview_id", "kind", "message", "recorded_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

// Insert writes a single activity entry.
func (r *ActivityRepository) Insert(ctx context.Context, e *model.ActivityEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO activity_entries (interview_id, kind, message, recorded_at)
		 VALUES ($1, $2, $3, $4)`,
		e.InterviewID, e.Kind, e.Message, e.RecordedAt)
	return err
}

// ListByInterview retrieves an interview's audit trail in recorded order.
func (r *ActivityRepository) ListByInterview(ctx context.Context, interviewID uuid.UUID) ([]model.ActivityEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT interview_id, kind, message, recorded_at
		 FROM activity_entries
		 WHERE interview_id = $1
		 ORDER BY recorded_at`, interviewID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.ActivityEntry
	for rows.Next() {
		var e model.ActivityEntry
		if err := rows.Scan(&e.InterviewID, &e.Kind, &e.Message, &e.RecordedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
