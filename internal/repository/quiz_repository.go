package repository

import (
	"context"

	"github.com/courseloom/courseloom-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuizRepository handles quiz data access. Question sets live as JSONB on the
// quiz row; the engine never mutates a published definition.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

const quizColumns = `id, course_id, chapter_id, lecture_id, title, questions,
	duration_minutes, passing_score, max_attempts, shuffle_questions,
	shuffle_options, show_correct_answers, deadline, total_points,
	is_published, created_at, updated_at`

func scanQuiz(row interface{ Scan(dest ...any) error }) (*model.Quiz, error) {
	q := &model.Quiz{}
	err := row.Scan(&q.ID, &q.CourseID, &q.ChapterID, &q.LectureID, &q.Title,
		&q.Questions, &q.DurationMinutes, &q.PassingScore, &q.MaxAttempts,
		&q.ShuffleQuestions, &q.ShuffleOptions, &q.ShowCorrectAnswers,
		&q.Deadline, &q.TotalPoints, &q.IsPublished, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetByID retrieves a quiz by its UUID.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	return scanQuiz(r.pool.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id))
}

// ListByCourse retrieves all quizzes of a course, newest first.
func (r *QuizRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes
		 WHERE course_id = $1
		 ORDER BY created_at DESC`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, rows.Err()
}

// ListPublished retrieves the IDs of all published quizzes.
func (r *QuizRepository) ListPublished(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM quizzes WHERE is_published`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Create inserts a new quiz definition as unpublished.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (course_id, chapter_id, lecture_id, title, questions,
		     duration_minutes, passing_score, max_attempts, shuffle_questions,
		     shuffle_options, show_correct_answers, deadline, total_points)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		q.CourseID, q.ChapterID, q.LectureID, q.Title, q.Questions,
		q.DurationMinutes, q.PassingScore, q.MaxAttempts, q.ShuffleQuestions,
		q.ShuffleOptions, q.ShowCorrectAnswers, q.Deadline, q.TotalPoints,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update replaces an unpublished quiz definition.
func (r *QuizRepository) Update(ctx context.Context, q *model.Quiz) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quizzes
		 SET title = $2, questions = $3, duration_minutes = $4, passing_score = $5,
		     max_attempts = $6, shuffle_questions = $7, shuffle_options = $8,
		     show_correct_answers = $9, deadline = $10, total_points = $11,
		     updated_at = NOW()
		 WHERE id = $1 AND NOT is_published`,
		q.ID, q.Title, q.Questions, q.DurationMinutes, q.PassingScore,
		q.MaxAttempts, q.ShuffleQuestions, q.ShuffleOptions,
		q.ShowCorrectAnswers, q.Deadline, q.TotalPoints)
	return err
}

// SetPublished toggles the published flag.
func (r *QuizRepository) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET is_published = $2, updated_at = NOW() WHERE id = $1`,
		id, published)
	return err
}

// Delete removes an unpublished quiz.
func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM quizzes WHERE id = $1 AND NOT is_published`, id)
	return err
}
