package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepdeck/intervue-backend/internal/config"
	"github.com/prepdeck/intervue-backend/internal/model"
	"github.com/prepdeck/intervue-backend/internal/repository"
	"github.com/prepdeck/intervue-backend/internal/service"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// ActivityWorker consumes persist_activity_queue and bulk-inserts audit
// trail entries. High-volume path: every blur, hidden-tab, movement and
// timeout event of every live session flows through here.
type ActivityWorker struct {
	activities *repository.ActivityRepository
	rdb        *redis.Client
	log        zerolog.Logger
}

// NewActivityWorker creates a new ActivityWorker.
func NewActivityWorker(activities *repository.ActivityRepository, rdb *redis.Client, log zerolog.Logger) *ActivityWorker {
	return &ActivityWorker{
		activities: activities,
		rdb:        rdb,
		log:        log.With().Str("component", "activity_worker").Logger(),
	}
}

func (w *ActivityWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ActivityWorker started")

	buffer := make([]*service.ActivityQueuePayload, 0, BatchSize)
	lastFlush := time.Now()

	for {
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlush) >= BatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0]
				lastFlush = time.Now()
			}
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistActivityQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue // Queue empty, loop back to check flush timer
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		if len(result) < 2 {
			continue
		}

		var payload service.ActivityQueuePayload
		if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
			// Malformed JSON cannot be retried. Log and discard.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed JSON")
			continue
		}

		buffer = append(buffer, &payload)
	}
}

// flushSafe attempts bulk insert, then fallback insert, then requeue.
func (w *ActivityWorker) flushSafe(ctx context.Context, batch []*service.ActivityQueuePayload) {
	if len(batch) == 0 {
		return
	}
	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
	}
}

func (w *ActivityWorker) bulkInsert(ctx context.Context, batch []*service.ActivityQueuePayload) error {
	entries := make([]model.ActivityEntry, 0, len(batch))
	for _, p := range batch {
		entry, err := toEntry(p)
		if err != nil {
			// Trigger fallback, which handles the bad UUID individually.
			return err
		}
		entries = append(entries, *entry)
	}
	return w.activities.InsertBatch(ctx, entries)
}

func (w *ActivityWorker) fallbackInsert(ctx context.Context, batch []*service.ActivityQueuePayload) {
	requeueList := make([]*service.ActivityQueuePayload, 0)

	for _, p := range batch {
		entry, err := toEntry(p)
		if err != nil {
			w.log.Error().Str("interview_id", p.InterviewID).Msg("Dropping activity entry with invalid UUID")
			continue
		}

		if err := w.activities.Insert(ctx, entry); err != nil {
			w.log.Error().Err(err).Str("interview_id", p.InterviewID).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, p)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

// toEntry converts a queue payload into the storable entry form.
func toEntry(p *service.ActivityQueuePayload) (*model.ActivityEntry, error) {
	interviewID, err := uuid.Parse(p.InterviewID)
	if err != nil {
		return nil, err
	}
	return &model.ActivityEntry{
		InterviewID: interviewID,
		Kind:        model.ActivityKind(p.Kind),
		Message:     p.Message,
		RecordedAt:  time.Unix(p.RecordedAt, 0),
	}, nil
}

func (w *ActivityWorker) requeue(ctx context.Context, items []*service.ActivityQueuePayload) {
	pipe := w.rdb.Pipeline()
	for _, p := range items {
		data, _ := json.Marshal(p)
		pipe.RPush(ctx, config.WorkerKey.PersistActivityQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue items to Redis. Data loss occurred.")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("Requeued failed items back to Redis")
	// Back off so a hard-down DB is not hammered.
	time.Sleep(2 * time.Second)
}

func (w *ActivityWorker) shutdown(buffer []*service.ActivityQueuePayload) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
