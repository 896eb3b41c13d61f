package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepdeck/intervue-backend/internal/config"
	"github.com/prepdeck/intervue-backend/internal/model"
	"github.com/prepdeck/intervue-backend/internal/repository"
	"github.com/prepdeck/intervue-backend/internal/service"
)

// reportCacheTTL keeps the freshly built report hot for the first fetch.
const reportCacheTTL = time.Hour

// AnalysisWorker consumes analyze_interviews_queue, scores each finished
// interview's bundle through the Evaluator and stores the report.
type AnalysisWorker struct {
	reports   *repository.ReportRepository
	evaluator *service.Evaluator
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewAnalysisWorker creates a new AnalysisWorker.
func NewAnalysisWorker(reports *repository.ReportRepository, evaluator *service.Evaluator, rdb *redis.Client, log zerolog.Logger) *AnalysisWorker {
	return &AnalysisWorker{
		reports:   reports,
		evaluator: evaluator,
		rdb:       rdb,
		log:       log.With().Str("component", "analysis_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *AnalysisWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AnalysisWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *AnalysisWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.AnalyzeInterviewQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var bundle model.AnalysisBundle
	if err := json.Unmarshal([]byte(result[1]), &bundle); err != nil {
		w.log.Error().Err(err).Msg("Discarding malformed bundle")
		return
	}

	report := w.evaluator.Analyze(&bundle)
	if err := w.reports.Upsert(ctx, report); err != nil {
		w.log.Error().Err(err).
			Str("interview_id", bundle.InterviewID.String()).
			Msg("Report persist error, retrying in 5s")
		w.rdb.RPush(ctx, config.WorkerKey.AnalyzeInterviewQueue, result[1])
		time.Sleep(5 * time.Second)
		return
	}

	// Cache the report so the candidate's first fetch skips the DB.
	if raw, err := json.Marshal(report); err == nil {
		key := config.CacheKey.InterviewReportKey(bundle.InterviewID)
		if err := w.rdb.Set(ctx, key, raw, reportCacheTTL).Err(); err != nil {
			w.log.Warn().Err(err).Msg("Report cache write failed")
		}
	}

	w.log.Info().
		Str("interview_id", bundle.InterviewID.String()).
		Float64("average_score", report.AverageScore).
		Int("questions", report.TotalQuestions).
		Msg("Interview analyzed")
}
