package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prepdeck/intervue-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// draftTTL bounds how long an orphaned draft hash survives in Redis.
const draftTTL = 24 * time.Hour

// DraftService mirrors auto-saved answer buffers into a Redis hash keyed
// by question index. The session engine writes through it fire-and-forget;
// a reconnecting client reads the hash back to restore its textarea.
type DraftService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewDraftService creates a new DraftService.
func NewDraftService(rdb *redis.Client, log zerolog.Logger) *DraftService {
	return &DraftService{
		rdb: rdb,
		log: log.With().Str("component", "draft_service").Logger(),
	}
}

// SaveDraft writes one auto-saved buffer. Failures are logged, never
// surfaced: the in-memory session state is authoritative.
func (s *DraftService) SaveDraft(interviewID uuid.UUID, index int, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := config.CacheKey.InterviewDraftsKey(interviewID)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, strconv.Itoa(index), text)
	pipe.Expire(ctx, key, draftTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("interview_id", interviewID.String()).Msg("Draft mirror failed")
	}
}

// LoadDrafts returns all mirrored buffers for an interview, keyed by
// question index.
func (s *DraftService) LoadDrafts(ctx context.Context, interviewID uuid.UUID) (map[int]string, error) {
	raw, err := s.rdb.HGetAll(ctx, config.CacheKey.InterviewDraftsKey(interviewID)).Result()
	if err != nil {
		return nil, err
	}
	drafts := make(map[int]string, len(raw))
	for field, text := range raw {
		index, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		drafts[index] = text
	}
	return drafts, nil
}

// ClearDrafts removes an interview's draft hash after the session ends.
func (s *DraftService) ClearDrafts(ctx context.Context, interviewID uuid.UUID) {
	if err := s.rdb.Del(ctx, config.CacheKey.InterviewDraftsKey(interviewID)).Err(); err != nil {
		s.log.Warn().Err(err).Str("interview_id", interviewID.String()).Msg("Draft cleanup failed")
	}
}
