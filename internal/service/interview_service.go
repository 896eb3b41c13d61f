package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prepdeck/intervue-backend/internal/config"
	"github.com/prepdeck/intervue-backend/internal/model"
	"github.com/prepdeck/intervue-backend/internal/repository"
	"github.com/prepdeck/intervue-backend/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Interview service errors.
var (
	ErrDomainNotFound     = errors.New("domain not found")
	ErrInterviewNotFound  = errors.New("interview not found")
	ErrInterviewNotActive = errors.New("interview is not in progress")
	ErrEmptyQuestionSet   = errors.New("domain has no questions")
	ErrNotOwner           = errors.New("interview belongs to another user")
	ErrReportNotReady     = errors.New("report is not ready yet")
)

// InterviewService orchestrates interview runs: creating the DB row,
// spinning up the in-memory session controller, and tearing both down at
// the end.
type InterviewService struct {
	cfg *config.Config

	domainRepo    *repository.DomainRepository
	questionRepo  *repository.QuestionRepository
	interviewRepo *repository.InterviewRepository
	responseRepo  *repository.ResponseRepository
	activityRepo  *repository.ActivityRepository
	reportRepo    *repository.ReportRepository

	submit   *SubmitService
	drafts   *DraftService
	registry *SessionRegistry
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewInterviewService creates a new InterviewService.
func NewInterviewService(
	cfg *config.Config,
	domainRepo *repository.DomainRepository,
	questionRepo *repository.QuestionRepository,
	interviewRepo *repository.InterviewRepository,
	responseRepo *repository.ResponseRepository,
	activityRepo *repository.ActivityRepository,
	reportRepo *repository.ReportRepository,
	submit *SubmitService,
	drafts *DraftService,
	registry *SessionRegistry,
	rdb *redis.Client,
	log zerolog.Logger,
) *InterviewService {
	return &InterviewService{
		cfg:           cfg,
		domainRepo:    domainRepo,
		questionRepo:  questionRepo,
		interviewRepo: interviewRepo,
		responseRepo:  responseRepo,
		activityRepo:  activityRepo,
		reportRepo:    reportRepo,
		submit:        submit,
		drafts:        drafts,
		registry:      registry,
		rdb:           rdb,
		log:           log.With().Str("component", "interview_service").Logger(),
	}
}

// ListDomains returns all interview domains.
func (s *InterviewService) ListDomains(ctx context.Context) ([]model.Domain, error) {
	return s.domainRepo.List(ctx)
}

// Start creates a new interview run for a candidate. The session
// controller itself is created lazily on WebSocket attach.
func (s *InterviewService) Start(ctx context.Context, userID int, domainID uuid.UUID) (*model.Interview, error) {
	domain, err := s.domainRepo.GetByID(ctx, domainID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDomainNotFound
		}
		return nil, fmt.Errorf("get domain: %w", err)
	}

	questions, err := s.questionRepo.ListByDomain(ctx, domain.ID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrEmptyQuestionSet
	}

	iv := &model.Interview{DomainID: domain.ID, UserID: userID}
	if err := s.interviewRepo.Create(ctx, iv); err != nil {
		return nil, fmt.Errorf("create interview: %w", err)
	}

	// Stamp the start time in Redis so reconnect handling and monitoring
	// can read it without a DB round trip.
	startKey := config.CacheKey.InterviewStartKey(iv.ID)
	if err := s.rdb.Set(ctx, startKey, iv.StartedAt.Unix(), 24*time.Hour).Err(); err != nil {
		s.log.Warn().Err(err).Str("interview_id", iv.ID.String()).Msg("Start time cache failed")
	}

	s.log.Info().
		Str("interview_id", iv.ID.String()).
		Str("domain", domain.Name).
		Int("user_id", userID).
		Msg("Interview created")
	return iv, nil
}

// Attach resolves the live session controller for an interview, creating
// it on first attach. The caller rebinds the returned relays to its
// connection.
func (s *InterviewService) Attach(ctx context.Context, userID int, interviewID uuid.UUID) (*LiveSession, error) {
	if ls, ok := s.registry.Get(interviewID); ok {
		if err := s.authorize(ctx, userID, interviewID); err != nil {
			return nil, err
		}
		return ls, nil
	}

	iv, err := s.interviewRepo.GetByID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInterviewNotFound
		}
		return nil, fmt.Errorf("get interview: %w", err)
	}
	if iv.UserID != userID {
		return nil, ErrNotOwner
	}
	if iv.Status != model.InterviewStatusInProgress {
		return nil, ErrInterviewNotActive
	}

	domain, err := s.domainRepo.GetByID(ctx, iv.DomainID)
	if err != nil {
		return nil, fmt.Errorf("get domain: %w", err)
	}
	questions, err := s.questionRepo.ListByDomain(ctx, iv.DomainID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	for i := range questions {
		if questions[i].TimeLimitSec <= 0 {
			questions[i].TimeLimitSec = s.cfg.DefaultTimeLimitSec
		}
	}

	emitter := session.NewRelay()
	activator := session.NewActivatorRelay()
	controller := session.New(session.Config{
		InterviewID:      iv.ID,
		Domain:           *domain,
		Submitter:        s.submit,
		Handoff:          &sessionHandoff{svc: s},
		Emitter:          emitter,
		Activator:        activator,
		Drafts:           s.drafts,
		AutosaveInterval: s.cfg.AutosaveInterval,
		AutosaveDebounce: s.cfg.AutosaveDebounce,
		SamplerInterval:  s.cfg.SamplerInterval,
		Logger:           s.log,
	})
	if err := controller.LoadQuestions(questions); err != nil {
		return nil, err
	}

	// Restore auto-saved buffers from a previous controller instance
	// (server restart mid-interview).
	if drafts, err := s.drafts.LoadDrafts(ctx, iv.ID); err == nil && len(drafts) > 0 {
		controller.RestoreDrafts(drafts)
	}

	ls := s.registry.Put(iv.ID, &LiveSession{
		Controller: controller,
		Emitter:    emitter,
		Activator:  activator,
	})
	return ls, nil
}

func (s *InterviewService) authorize(ctx context.Context, userID int, interviewID uuid.UUID) error {
	iv, err := s.interviewRepo.GetByID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInterviewNotFound
		}
		return fmt.Errorf("get interview: %w", err)
	}
	if iv.UserID != userID {
		return ErrNotOwner
	}
	return nil
}

// History returns a candidate's past and current interviews with how many
// questions each one answered.
func (s *InterviewService) History(ctx context.Context, userID int) ([]model.Interview, error) {
	interviews, err := s.interviewRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range interviews {
		count, err := s.responseRepo.CountByInterview(ctx, interviews[i].ID)
		if err != nil {
			return nil, fmt.Errorf("count responses: %w", err)
		}
		interviews[i].AnsweredCount = count
	}
	return interviews, nil
}

// ListResponses returns a candidate's persisted answers for one interview,
// in question order.
func (s *InterviewService) ListResponses(ctx context.Context, userID int, interviewID uuid.UUID) ([]model.Response, error) {
	if err := s.authorize(ctx, userID, interviewID); err != nil {
		return nil, err
	}
	return s.responseRepo.ListByInterview(ctx, interviewID)
}

// ListActivity returns the proctoring trail recorded for one interview.
func (s *InterviewService) ListActivity(ctx context.Context, userID int, interviewID uuid.UUID) ([]model.ActivityEntry, error) {
	if err := s.authorize(ctx, userID, interviewID); err != nil {
		return nil, err
	}
	return s.activityRepo.ListByInterview(ctx, interviewID)
}

// GetReport returns the analysis report for a completed interview,
// preferring the Redis cache over the DB row.
func (s *InterviewService) GetReport(ctx context.Context, userID int, interviewID uuid.UUID) (*model.Report, error) {
	if err := s.authorize(ctx, userID, interviewID); err != nil {
		return nil, err
	}

	cached, err := s.rdb.Get(ctx, config.CacheKey.InterviewReportKey(interviewID)).Result()
	if err == nil {
		report := &model.Report{}
		if err := json.Unmarshal([]byte(cached), report); err == nil {
			return report, nil
		}
	}

	report, err := s.reportRepo.GetByInterview(ctx, interviewID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotReady
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return report, nil
}

// ─── Session handoff ────────────────────────────────────────────────────

// sessionHandoff receives terminal session outcomes. Both callbacks run
// under the controller lock, so the real work moves to a goroutine.
type sessionHandoff struct {
	svc *InterviewService
}

func (h *sessionHandoff) Completed(bundle *model.AnalysisBundle) {
	go h.svc.completeInterview(context.Background(), bundle)
}

func (h *sessionHandoff) Abandoned(interviewID uuid.UUID) {
	go h.svc.abandonInterview(context.Background(), interviewID)
}

func (s *InterviewService) completeInterview(ctx context.Context, bundle *model.AnalysisBundle) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.interviewRepo.Finish(ctx, bundle.InterviewID, model.InterviewStatusCompleted); err != nil {
		s.log.Error().Err(err).Str("interview_id", bundle.InterviewID.String()).Msg("Complete update failed")
	}

	// Queue the full bundle for the analysis worker.
	raw, err := json.Marshal(bundle)
	if err == nil {
		if err := s.rdb.RPush(ctx, config.WorkerKey.AnalyzeInterviewQueue, raw).Err(); err != nil {
			s.log.Error().Err(err).Str("interview_id", bundle.InterviewID.String()).Msg("Analysis enqueue failed")
		}
	}

	s.submit.FlushActivity(ctx, bundle.InterviewID, bundle.ActivityLog)
	s.submit.Forget(bundle.InterviewID)
	s.drafts.ClearDrafts(ctx, bundle.InterviewID)
	s.registry.Remove(bundle.InterviewID)
	s.log.Info().Str("interview_id", bundle.InterviewID.String()).Msg("Interview completed")
}

func (s *InterviewService) abandonInterview(ctx context.Context, interviewID uuid.UUID) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.interviewRepo.Finish(ctx, interviewID, model.InterviewStatusAbandoned); err != nil {
		s.log.Error().Err(err).Str("interview_id", interviewID.String()).Msg("Abandon update failed")
	}
	s.submit.Forget(interviewID)
	s.drafts.ClearDrafts(ctx, interviewID)
	s.registry.Remove(interviewID)
	s.log.Info().Str("interview_id", interviewID.String()).Msg("Interview abandoned")
}
