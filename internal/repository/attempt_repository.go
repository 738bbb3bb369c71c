package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/courseloom/courseloom-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrStatusConflict is returned when a conditional status update matches no
// row: the attempt was already moved out of the expected status by a
// concurrent request.
var ErrStatusConflict = errors.New("attempt is not in the expected status")

// AttemptRepository handles attempt data access. The question snapshot,
// answers and scoring summary are JSONB columns on the attempt row, so a
// submission or grading batch lands in one atomic write.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

const attemptColumns = `id, quiz_id, student_id, attempt_number, status,
	started_at, submitted_at, time_spent_seconds, timed_out, questions,
	answers, scoring`

func scanAttempt(row interface{ Scan(dest ...any) error }) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := row.Scan(&a.ID, &a.QuizID, &a.StudentID, &a.AttemptNumber, &a.Status,
		&a.StartedAt, &a.SubmittedAt, &a.TimeSpentSeconds, &a.TimedOut,
		&a.Questions, &a.Answers, &a.Scoring)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an attempt by its UUID.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE id = $1`, id))
}

// CountByQuizAndStudent counts every attempt of a student on a quiz,
// regardless of status. An abandoned in-progress attempt still counts.
func (r *AttemptRepository) CountByQuizAndStudent(ctx context.Context, quizID, studentID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts WHERE quiz_id = $1 AND student_id = $2`,
		quizID, studentID,
	).Scan(&count)
	return count, err
}

// Create inserts a new in-progress attempt. The attempt number is assigned
// inside the insert so it stays sequential per (student, quiz); the unique
// index turns a concurrent double-start into a 23505, surfaced as
// ErrStatusConflict for the caller to retry.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO attempts (quiz_id, student_id, attempt_number, status, questions, answers)
		 VALUES ($1, $2,
		     (SELECT COUNT(*) + 1 FROM attempts WHERE quiz_id = $1 AND student_id = $2),
		     $3, $4, $5)
		 RETURNING id, attempt_number, started_at`,
		a.QuizID, a.StudentID, model.AttemptStatusInProgress, a.Questions, a.Answers,
	).Scan(&a.ID, &a.AttemptNumber, &a.StartedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrStatusConflict
		}
		return err
	}
	a.Status = model.AttemptStatusInProgress
	return nil
}

// Submit moves an attempt out of in_progress in a single compare-and-set
// write. Exactly one of two racing submissions can win; the loser gets
// ErrStatusConflict.
func (r *AttemptRepository) Submit(ctx context.Context, a *model.Attempt) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE attempts
		 SET status = $2, submitted_at = $3, time_spent_seconds = $4,
		     timed_out = $5, answers = $6, scoring = $7
		 WHERE id = $1 AND status = $8`,
		a.ID, a.Status, a.SubmittedAt, a.TimeSpentSeconds,
		a.TimedOut, a.Answers, a.Scoring, model.AttemptStatusInProgress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

// ApplyGrades writes a manual grading result. The status guard makes the
// batch atomic against concurrent grading of the same attempt.
func (r *AttemptRepository) ApplyGrades(ctx context.Context, a *model.Attempt) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE attempts
		 SET status = $2, answers = $3, scoring = $4
		 WHERE id = $1 AND status = $5`,
		a.ID, a.Status, a.Answers, a.Scoring, model.AttemptStatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

// UpdateDraftAnswers stores autosaved draft answers on an in-progress attempt.
// Drafts on attempts that were submitted meanwhile are dropped silently.
func (r *AttemptRepository) UpdateDraftAnswers(ctx context.Context, id uuid.UUID, answers []model.Answer) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE attempts SET answers = $2
		 WHERE id = $1 AND status = $3`,
		id, answers, model.AttemptStatusInProgress)
	return err
}

// ListByStudent retrieves all attempts of a student, newest first.
func (r *AttemptRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+` FROM attempts
		 WHERE student_id = $1
		 ORDER BY started_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAttempts(rows)
}

// AttemptResult combines student display data with attempt outcome for
// educator listings.
type AttemptResult struct {
	AttemptID     uuid.UUID             `json:"attempt_id"`
	StudentID     uuid.UUID             `json:"student_id"`
	StudentName   string                `json:"student_name"`
	StudentEmail  string                `json:"student_email"`
	AttemptNumber int                   `json:"attempt_number"`
	Status        model.AttemptStatus   `json:"status"`
	StartedAt     time.Time             `json:"started_at"`
	SubmittedAt   *time.Time            `json:"submitted_at"`
	Scoring       *model.ScoringSummary `json:"scoring"`
}

// ListByQuiz retrieves paginated attempt results for a quiz, optionally
// filtered by status.
func (r *AttemptRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID, status *model.AttemptStatus, page, perPage int) ([]AttemptResult, int, error) {
	offset := (page - 1) * perPage

	baseQuery := `
		FROM attempts a
		JOIN users u ON a.student_id = u.id
		WHERE a.quiz_id = $1
	`
	args := []any{quizID}
	if status != nil {
		args = append(args, *status)
		baseQuery += ` AND a.status = $2`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) `+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT a.id, a.student_id, u.name, u.email, a.attempt_number,
		       a.status, a.started_at, a.submitted_at, a.scoring
		` + baseQuery + `
		ORDER BY a.started_at DESC
		LIMIT $` + fmt.Sprintf("%d", len(args)+1) + ` OFFSET $` + fmt.Sprintf("%d", len(args)+2)
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []AttemptResult
	for rows.Next() {
		var res AttemptResult
		if err := rows.Scan(&res.AttemptID, &res.StudentID, &res.StudentName,
			&res.StudentEmail, &res.AttemptNumber, &res.Status,
			&res.StartedAt, &res.SubmittedAt, &res.Scoring); err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}

func collectAttempts(rows pgx.Rows) ([]model.Attempt, error) {
	var attempts []model.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *a)
	}
	return attempts, rows.Err()
}
