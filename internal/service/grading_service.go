package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/courseloom/courseloom-backend/internal/config"
	"github.com/courseloom/courseloom-backend/internal/model"
	"github.com/courseloom/courseloom-backend/internal/repository"
	"github.com/courseloom/courseloom-backend/internal/scoring"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrAttemptNotPending = errors.New("attempt is not awaiting manual grading")
	ErrInvalidGradeBatch = errors.New("grade batch is not valid")
)

// GradingService applies educator grades to pending attempts. A grade batch
// is all-or-nothing: one bad entry rejects the whole request.
type GradingService struct {
	attemptRepo *repository.AttemptRepository
	quizRepo    *repository.QuizRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewGradingService creates a new GradingService.
func NewGradingService(
	attemptRepo *repository.AttemptRepository,
	quizRepo *repository.QuizRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *GradingService {
	return &GradingService{
		attemptRepo: attemptRepo,
		quizRepo:    quizRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "grading_service").Logger(),
	}
}

// GradeAttempt applies a batch of manual grades to a pending attempt. Once
// every answer has a grade the attempt transitions to graded and its scoring
// summary materializes.
func (s *GradingService) GradeAttempt(ctx context.Context, attemptID uuid.UUID, req *model.GradeAttemptRequest) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.Status != model.AttemptStatusPending {
		return nil, ErrAttemptNotPending
	}

	graded, err := scoring.ApplyManualGrades(attempt.Questions, attempt.Answers, req.Grades)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGradeBatch, err)
	}

	attempt.Answers = graded
	if scoring.UngradedCount(graded) == 0 {
		quiz, err := s.quizRepo.GetByID(ctx, attempt.QuizID)
		if err != nil {
			return nil, fmt.Errorf("get quiz: %w", err)
		}
		attempt.Status = model.AttemptStatusGraded
		attempt.Scoring = scoring.Summarize(attempt.Questions, graded, quiz.PassingScore)
	}

	if err := s.attemptRepo.ApplyGrades(ctx, attempt); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrAttemptNotPending
		}
		return nil, fmt.Errorf("apply grades: %w", err)
	}

	if attempt.Status == model.AttemptStatusGraded {
		s.enqueueStatsRefresh(ctx, attempt.QuizID, attempt.StudentID)
	}
	return attempt, nil
}

func (s *GradingService) enqueueStatsRefresh(ctx context.Context, quizID, studentID uuid.UUID) {
	raw, _ := json.Marshal(statsPayload{QuizID: quizID.String(), StudentID: studentID.String()})
	if err := s.rdb.RPush(ctx, config.WorkerKey.RefreshStatsQueue, raw).Err(); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("stats enqueue failed")
	}
}
