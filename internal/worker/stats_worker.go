package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/courseloom/courseloom-backend/internal/config"
	"github.com/courseloom/courseloom-backend/internal/service"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	StatsBatchSize    = 50
	StatsBatchTimeout = 2 * time.Second
	StatsPollTimeout  = 1 * time.Second
)

// StatsWorker consumes refresh_stats_queue and recomputes cached aggregates.
// Items are batched and deduplicated so a burst of submissions on one quiz
// costs a single recompute.
type StatsWorker struct {
	statsService *service.StatisticsService
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewStatsWorker creates a new StatsWorker.
func NewStatsWorker(statsService *service.StatisticsService, rdb *redis.Client, log zerolog.Logger) *StatsWorker {
	return &StatsWorker{
		statsService: statsService,
		rdb:          rdb,
		log:          log.With().Str("component", "stats_worker").Logger(),
	}
}

type statsPayload struct {
	QuizID    string `json:"quiz_id"`
	StudentID string `json:"student_id"`
}

// Start begins the batching worker loop. Call in a goroutine.
func (w *StatsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("StatsWorker started")

	batch := make([]*statsPayload, 0, StatsBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= StatsBatchSize || time.Since(lastFlush) >= StatsBatchTimeout) {

			w.flush(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flush(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, StatsPollTimeout, config.WorkerKey.RefreshStatsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p statsPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

// flush deduplicates the batch, recomputes each touched quiz's aggregates and
// invalidates each touched student's cache. A failed quiz recompute is
// requeued.
func (w *StatsWorker) flush(ctx context.Context, batch []*statsPayload) {
	if len(batch) == 0 {
		return
	}

	quizzes := make(map[uuid.UUID]bool)
	students := make(map[uuid.UUID]bool)
	for _, p := range batch {
		if id, err := uuid.Parse(p.QuizID); err == nil {
			quizzes[id] = true
		}
		if id, err := uuid.Parse(p.StudentID); err == nil {
			students[id] = true
		}
	}

	for quizID := range quizzes {
		if _, err := w.statsService.RefreshQuizStatistics(ctx, quizID); err != nil {
			w.log.Error().Err(err).Str("quiz_id", quizID.String()).Msg("Stats refresh failed — requeueing")
			raw, _ := json.Marshal(statsPayload{QuizID: quizID.String()})
			w.rdb.RPush(ctx, config.WorkerKey.RefreshStatsQueue, raw)
		}
	}

	for studentID := range students {
		w.statsService.InvalidateStudentStatistics(ctx, studentID)
	}

	w.log.Debug().
		Int("items", len(batch)).
		Int("quizzes", len(quizzes)).
		Int("students", len(students)).
		Msg("Stats batch flushed")
}
