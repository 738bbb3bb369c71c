package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/courseloom/courseloom-backend/internal/config"
	"github.com/courseloom/courseloom-backend/internal/model"
	"github.com/courseloom/courseloom-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DraftWorker consumes persist_drafts_queue and flushes autosaved draft
// answers from Redis into the attempt row. Drafts for attempts that were
// submitted meanwhile are dropped by the status guard in the repository.
type DraftWorker struct {
	attemptRepo *repository.AttemptRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewDraftWorker creates a new DraftWorker.
func NewDraftWorker(attemptRepo *repository.AttemptRepository, rdb *redis.Client, log zerolog.Logger) *DraftWorker {
	return &DraftWorker{
		attemptRepo: attemptRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "draft_worker").Logger(),
	}
}

type draftPayload struct {
	AttemptID string `json:"attempt_id"`
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *DraftWorker) Start(ctx context.Context) {
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

func (w *DraftWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.PersistDraftsQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var payload draftPayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.persistDrafts(ctx, &payload); err != nil {
		w.log.Error().Err(err).
			Str("attempt_id", payload.AttemptID).
			Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.PersistDraftsQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *DraftWorker) persistDrafts(ctx context.Context, p *draftPayload) error {
	attemptID, err := uuid.Parse(p.AttemptID)
	if err != nil {
		return err
	}

	drafts, err := w.rdb.HGetAll(ctx, config.CacheKey.AttemptAutosaveKey(p.AttemptID)).Result()
	if err != nil {
		return err
	}
	if len(drafts) == 0 {
		// Hash was cleared by a submission; nothing left to persist.
		return nil
	}

	answers := make([]model.Answer, 0, len(drafts))
	for field, value := range drafts {
		questionID, err := uuid.Parse(field)
		if err != nil {
			w.log.Warn().Str("field", field).Msg("Skipping malformed draft field")
			continue
		}
		answers = append(answers, model.Answer{QuestionID: questionID, Value: value})
	}

	return w.attemptRepo.UpdateDraftAnswers(ctx, attemptID, answers)
}

// drain processes all remaining items in the queue before shutdown.
func (w *DraftWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistDraftsQueue).Result()
		if err != nil {
			break
		}

		var payload draftPayload
		if err := json.Unmarshal([]byte(result), &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persistDrafts(ctx, &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistDraftsQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
