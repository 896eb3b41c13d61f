package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepdeck/intervue-backend/internal/config"
	"github.com/prepdeck/intervue-backend/internal/service"
)

// ResponseWorker consumes persist_responses_queue and UPSERTs timeout
// submissions into PostgreSQL. This is the reconciliation path for
// best-effort submissions: the session already committed the slot in
// memory, the worker makes the row catch up.
type ResponseWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewResponseWorker creates a new ResponseWorker.
func NewResponseWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ResponseWorker {
	return &ResponseWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "response_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *ResponseWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *ResponseWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.PersistResponsesQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var payload service.ResponseQueuePayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.persistResponse(ctx, &payload); err != nil {
		w.log.Error().Err(err).
			Str("interview_id", payload.InterviewID).
			Str("question_id", payload.QuestionID).
			Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.PersistResponsesQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *ResponseWorker) persistResponse(ctx context.Context, p *service.ResponseQueuePayload) error {
	interviewID, err := uuid.Parse(p.InterviewID)
	if err != nil {
		return err
	}
	questionID, err := uuid.Parse(p.QuestionID)
	if err != nil {
		return err
	}

	// UPSERT, but a manual submission that raced ahead is never
	// overwritten by the queued timeout snapshot.
	_, err = w.pool.Exec(ctx,
		`INSERT INTO responses (interview_id, question_id, response_text, cause, submitted_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (interview_id, question_id) DO UPDATE
		 SET response_text = EXCLUDED.response_text,
		     cause = EXCLUDED.cause,
		     submitted_at = EXCLUDED.submitted_at
		 WHERE responses.cause <> 'manual'`,
		interviewID, questionID, p.ResponseText, p.Cause, time.Unix(p.SubmittedAt, 0),
	)
	return err
}

// drain processes all remaining items in the queue before shutdown.
func (w *ResponseWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistResponsesQueue).Result()
		if err != nil {
			break
		}

		var payload service.ResponseQueuePayload
		if err := json.Unmarshal([]byte(result), &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persistResponse(ctx, &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistResponsesQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
