package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/courseloom/courseloom-backend/internal/config"
	"github.com/courseloom/courseloom-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// StatisticsService serves aggregated quiz and student statistics through a
// Redis cache. Pending attempts never contribute to any aggregate.
type StatisticsService struct {
	statsRepo *repository.StatisticsRepository
	quizRepo  *repository.QuizRepository
	rdb       *redis.Client
	ttl       time.Duration
	log       zerolog.Logger
}

// NewStatisticsService creates a new StatisticsService.
func NewStatisticsService(
	statsRepo *repository.StatisticsRepository,
	quizRepo *repository.QuizRepository,
	rdb *redis.Client,
	ttl time.Duration,
	log zerolog.Logger,
) *StatisticsService {
	return &StatisticsService{
		statsRepo: statsRepo,
		quizRepo:  quizRepo,
		rdb:       rdb,
		ttl:       ttl,
		log:       log.With().Str("component", "statistics_service").Logger(),
	}
}

// GetQuizStatistics returns the aggregate view of a quiz, cached for the
// configured TTL.
func (s *StatisticsService) GetQuizStatistics(ctx context.Context, quizID uuid.UUID) (*repository.QuizStatistics, error) {
	key := config.CacheKey.QuizStatsKey(quizID.String())

	raw, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		stats := &repository.QuizStatistics{}
		if err := json.Unmarshal([]byte(raw), stats); err == nil {
			return stats, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get stats cache: %w", err)
	}

	return s.RefreshQuizStatistics(ctx, quizID)
}

// RefreshQuizStatistics recomputes a quiz's aggregates from PostgreSQL and
// rewrites the cache entry.
func (s *StatisticsService) RefreshQuizStatistics(ctx context.Context, quizID uuid.UUID) (*repository.QuizStatistics, error) {
	stats, err := s.statsRepo.GetQuizStatistics(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("compute quiz statistics: %w", err)
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("marshal statistics: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.QuizStatsKey(quizID.String()), raw, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("stats cache write failed")
	}
	return stats, nil
}

// GetStudentStatistics returns the student's per-quiz aggregates, cached for
// the configured TTL.
func (s *StatisticsService) GetStudentStatistics(ctx context.Context, studentID uuid.UUID) ([]repository.StudentQuizStatistics, error) {
	key := config.CacheKey.StudentStatsKey(studentID.String())

	raw, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		var stats []repository.StudentQuizStatistics
		if err := json.Unmarshal([]byte(raw), &stats); err == nil {
			return stats, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get stats cache: %w", err)
	}

	stats, err := s.statsRepo.GetStudentStatistics(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("compute student statistics: %w", err)
	}

	if cached, err := json.Marshal(stats); err == nil {
		_ = s.rdb.Set(ctx, key, cached, s.ttl).Err()
	}
	return stats, nil
}

// InvalidateStudentStatistics drops a student's cached aggregates so the next
// read recomputes them.
func (s *StatisticsService) InvalidateStudentStatistics(ctx context.Context, studentID uuid.UUID) {
	s.rdb.Del(ctx, config.CacheKey.StudentStatsKey(studentID.String()))
}

// PrewarmQuizStatistics recomputes aggregates for every published quiz. Run
// on a schedule so educator dashboards stay warm.
func (s *StatisticsService) PrewarmQuizStatistics(ctx context.Context) {
	ids, err := s.quizRepo.ListPublished(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("stats prewarm: list published failed")
		return
	}

	warmed := 0
	for _, id := range ids {
		if _, err := s.RefreshQuizStatistics(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("quiz_id", id.String()).Msg("stats prewarm failed")
			continue
		}
		warmed++
	}
	s.log.Info().Int("quizzes", warmed).Msg("Quiz statistics prewarmed")
}
