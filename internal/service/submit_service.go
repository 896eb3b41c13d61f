package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prepdeck/intervue-backend/internal/config"
	"github.com/prepdeck/intervue-backend/internal/model"
	"github.com/prepdeck/intervue-backend/internal/repository"
	"github.com/prepdeck/intervue-backend/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ResponseQueuePayload is the wire form of a queued timeout submission,
// consumed by the response worker.
type ResponseQueuePayload struct {
	InterviewID  string `json:"interview_id"`
	QuestionID   string `json:"question_id"`
	ResponseText string `json:"response_text"`
	Cause        string `json:"cause"`
	SubmittedAt  int64  `json:"submitted_at"`
}

// ActivityQueuePayload is the wire form of one queued activity entry,
// consumed by the activity worker.
type ActivityQueuePayload struct {
	InterviewID string `json:"interview_id"`
	Kind        string `json:"kind"`
	Message     string `json:"message"`
	RecordedAt  int64  `json:"recorded_at"`
}

// SubmitService is the backend submission path for the session engine.
// Manual submissions write synchronously so a failure can block and be
// retried by the candidate; timeout submissions go through the Redis
// persistence queue and reconcile in the background.
type SubmitService struct {
	responses *repository.ResponseRepository
	rdb       *redis.Client
	log       zerolog.Logger

	// flushed tracks how many activity entries per interview were already
	// queued, so each snapshot only enqueues its delta.
	mu      sync.Mutex
	flushed map[uuid.UUID]int
}

// NewSubmitService creates a new SubmitService.
func NewSubmitService(responses *repository.ResponseRepository, rdb *redis.Client, log zerolog.Logger) *SubmitService {
	return &SubmitService{
		responses: responses,
		rdb:       rdb,
		log:       log.With().Str("component", "submit_service").Logger(),
		flushed:   make(map[uuid.UUID]int),
	}
}

// Submit persists one frozen answer slot.
func (s *SubmitService) Submit(ctx context.Context, interviewID, questionID uuid.UUID, text string, cause model.SubmissionCause, activity []model.ActivityEntry) error {
	s.FlushActivity(ctx, interviewID, activity)

	if cause == model.CauseTimeout {
		return s.enqueueResponse(ctx, interviewID, questionID, text, cause)
	}

	err := s.responses.Upsert(ctx, &model.Response{
		InterviewID:  interviewID,
		QuestionID:   questionID,
		ResponseText: text,
		Cause:        cause,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrSubmitNetwork, err)
	}
	return nil
}

func (s *SubmitService) enqueueResponse(ctx context.Context, interviewID, questionID uuid.UUID, text string, cause model.SubmissionCause) error {
	raw, err := json.Marshal(ResponseQueuePayload{
		InterviewID:  interviewID.String(),
		QuestionID:   questionID.String(),
		ResponseText: text,
		Cause:        string(cause),
		SubmittedAt:  time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistResponsesQueue, raw).Err(); err != nil {
		return fmt.Errorf("%w: %v", session.ErrSubmitNetwork, err)
	}
	return nil
}

// FlushActivity enqueues the not-yet-queued tail of an activity snapshot.
func (s *SubmitService) FlushActivity(ctx context.Context, interviewID uuid.UUID, entries []model.ActivityEntry) {
	s.mu.Lock()
	seen := s.flushed[interviewID]
	if seen > len(entries) {
		// Snapshots only grow; a shorter one means stale bookkeeping.
		seen = 0
	}
	delta := entries[seen:]
	s.flushed[interviewID] = len(entries)
	s.mu.Unlock()

	if len(delta) == 0 {
		return
	}

	pipe := s.rdb.Pipeline()
	for _, e := range delta {
		raw, err := json.Marshal(ActivityQueuePayload{
			InterviewID: e.InterviewID.String(),
			Kind:        string(e.Kind),
			Message:     e.Message,
			RecordedAt:  e.RecordedAt.Unix(),
		})
		if err != nil {
			continue
		}
		pipe.RPush(ctx, config.WorkerKey.PersistActivityQueue, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Int("count", len(delta)).Msg("Activity enqueue failed")
	}
}

// Forget drops per-interview bookkeeping after the session ends.
func (s *SubmitService) Forget(interviewID uuid.UUID) {
	s.mu.Lock()
	delete(s.flushed, interviewID)
	s.mu.Unlock()
}
