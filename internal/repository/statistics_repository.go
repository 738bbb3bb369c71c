package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatisticsRepository derives read-only aggregates over finished attempts.
// Attempts still pending manual grading never enter a score denominator.
type StatisticsRepository struct {
	pool *pgxpool.Pool
}

// NewStatisticsRepository creates a new StatisticsRepository.
func NewStatisticsRepository(pool *pgxpool.Pool) *StatisticsRepository {
	return &StatisticsRepository{pool: pool}
}

// QuizStatistics summarizes all graded outcomes of one quiz.
type QuizStatistics struct {
	QuizID       uuid.UUID `json:"quiz_id"`
	GradedCount  int       `json:"graded_count"`
	PendingCount int       `json:"pending_count"`
	Average      float64   `json:"average"`
	Highest      float64   `json:"highest"`
	Lowest       float64   `json:"lowest"`
	PassRate     float64   `json:"pass_rate"`
}

// GetQuizStatistics aggregates score percentages over completed and graded
// attempts of a quiz. An empty denominator yields zeroes, never NaN.
func (r *StatisticsRepository) GetQuizStatistics(ctx context.Context, quizID uuid.UUID) (*QuizStatistics, error) {
	stats := &QuizStatistics{QuizID: quizID}

	var avg, highest, lowest *float64
	var passed int
	err := r.pool.QueryRow(ctx,
		`SELECT
			COUNT(*) FILTER (WHERE status IN ('completed', 'graded')),
			COUNT(*) FILTER (WHERE status = 'pending'),
			AVG((scoring->>'score_percentage')::float8) FILTER (WHERE status IN ('completed', 'graded')),
			MAX((scoring->>'score_percentage')::float8) FILTER (WHERE status IN ('completed', 'graded')),
			MIN((scoring->>'score_percentage')::float8) FILTER (WHERE status IN ('completed', 'graded')),
			COUNT(*) FILTER (WHERE status IN ('completed', 'graded') AND (scoring->>'passed')::bool)
		 FROM attempts
		 WHERE quiz_id = $1`, quizID,
	).Scan(&stats.GradedCount, &stats.PendingCount, &avg, &highest, &lowest, &passed)
	if err != nil {
		return nil, err
	}

	if stats.GradedCount > 0 {
		stats.Average = *avg
		stats.Highest = *highest
		stats.Lowest = *lowest
		stats.PassRate = float64(passed) / float64(stats.GradedCount) * 100
	}
	return stats, nil
}

// StudentQuizStatistics summarizes one student's history on one quiz.
// TotalAttempts counts every status; score fields cover graded outcomes only.
type StudentQuizStatistics struct {
	QuizID        uuid.UUID  `json:"quiz_id"`
	QuizTitle     string     `json:"quiz_title"`
	TotalAttempts int        `json:"total_attempts"`
	GradedCount   int        `json:"graded_count"`
	AvgScore      float64    `json:"avg_score"`
	BestScore     float64    `json:"best_score"`
	PassedCount   int        `json:"passed_count"`
	LastAttemptAt *time.Time `json:"last_attempt_at"`
}

// GetStudentStatistics aggregates a student's attempts per quiz.
func (r *StatisticsRepository) GetStudentStatistics(ctx context.Context, studentID uuid.UUID) ([]StudentQuizStatistics, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT
			a.quiz_id,
			q.title,
			COUNT(*),
			COUNT(*) FILTER (WHERE a.status IN ('completed', 'graded')),
			AVG((a.scoring->>'score_percentage')::float8) FILTER (WHERE a.status IN ('completed', 'graded')),
			MAX((a.scoring->>'score_percentage')::float8) FILTER (WHERE a.status IN ('completed', 'graded')),
			COUNT(*) FILTER (WHERE a.status IN ('completed', 'graded') AND (a.scoring->>'passed')::bool),
			MAX(a.started_at)
		 FROM attempts a
		 JOIN quizzes q ON a.quiz_id = q.id
		 WHERE a.student_id = $1
		 GROUP BY a.quiz_id, q.title
		 ORDER BY MAX(a.started_at) DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []StudentQuizStatistics
	for rows.Next() {
		var s StudentQuizStatistics
		var avg, best *float64
		if err := rows.Scan(&s.QuizID, &s.QuizTitle, &s.TotalAttempts,
			&s.GradedCount, &avg, &best, &s.PassedCount, &s.LastAttemptAt); err != nil {
			return nil, err
		}
		if s.GradedCount > 0 {
			s.AvgScore = *avg
			s.BestScore = *best
		}
		stats = append(stats, s)
	}
	if stats == nil {
		stats = []StudentQuizStatistics{}
	}
	return stats, rows.Err()
}
