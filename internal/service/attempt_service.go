package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

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
	ErrMaxAttemptsReached = errors.New("maximum attempts reached for this quiz")
	ErrDeadlinePassed     = errors.New("quiz deadline has passed")
	ErrAlreadySubmitted   = errors.New("attempt was already submitted")
	ErrNotAttemptOwner    = errors.New("attempt belongs to another student")
	ErrAttemptNotActive   = errors.New("attempt is not in progress")
)

// AttemptService handles the attempt lifecycle: start, autosave, submit and
// read-back with answer redaction.
type AttemptService struct {
	attemptRepo *repository.AttemptRepository
	quizRepo    *repository.QuizRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	attemptRepo *repository.AttemptRepository,
	quizRepo *repository.QuizRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		attemptRepo: attemptRepo,
		quizRepo:    quizRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "attempt_service").Logger(),
	}
}

// Eligibility describes whether a student may start a new attempt right now.
type Eligibility struct {
	Reason       model.EligibilityReason `json:"reason"`
	AttemptsUsed int                     `json:"attempts_used"`
	AttemptsLeft int                     `json:"attempts_left"`
}

// CheckEligibility reports the student's standing against the quiz's attempt
// limit and deadline without starting anything.
func (s *AttemptService) CheckEligibility(ctx context.Context, quizID, studentID uuid.UUID) (*Eligibility, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if !quiz.IsPublished {
		return nil, ErrQuizNotPublished
	}

	used, err := s.attemptRepo.CountByQuizAndStudent(ctx, quizID, studentID)
	if err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}

	return &Eligibility{
		Reason:       scoring.CheckEligibility(quiz, used, time.Now()),
		AttemptsUsed: used,
		AttemptsLeft: scoring.AttemptsLeft(quiz, used),
	}, nil
}

// StartAttempt creates a new in-progress attempt with a frozen question
// snapshot. Abandoned attempts count toward the limit like any other.
func (s *AttemptService) StartAttempt(ctx context.Context, quizID, studentID uuid.UUID) (*model.Attempt, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if !quiz.IsPublished {
		return nil, ErrQuizNotPublished
	}

	// A duplicate attempt number from two concurrent starts trips the unique
	// index; re-check eligibility and retry once with a fresh count.
	for try := 0; try < 2; try++ {
		used, err := s.attemptRepo.CountByQuizAndStudent(ctx, quizID, studentID)
		if err != nil {
			return nil, fmt.Errorf("count attempts: %w", err)
		}

		switch scoring.CheckEligibility(quiz, used, time.Now()) {
		case model.EligibilityMaxAttemptsReached:
			return nil, ErrMaxAttemptsReached
		case model.EligibilityDeadlinePassed:
			return nil, ErrDeadlinePassed
		}

		attempt := &model.Attempt{
			QuizID:    quizID,
			StudentID: studentID,
			Questions: scoring.Snapshot(quiz, scoring.NewRNG(randSeed(), randSeed())),
			Answers:   []model.Answer{},
		}

		err = s.attemptRepo.Create(ctx, attempt)
		if err == nil {
			return s.redactAttempt(attempt, quiz), nil
		}
		if !errors.Is(err, repository.ErrStatusConflict) {
			return nil, fmt.Errorf("create attempt: %w", err)
		}
	}
	return nil, repository.ErrStatusConflict
}

// Autosave stores a draft answer in the attempt's Redis hash and queues it for
// asynchronous persistence. The hot path never touches PostgreSQL beyond the
// ownership check.
func (s *AttemptService) Autosave(ctx context.Context, attemptID, studentID uuid.UUID, req *model.AutosaveAnswerRequest) error {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		return fmt.Errorf("get attempt: %w", err)
	}
	if attempt.StudentID != studentID {
		return ErrNotAttemptOwner
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return ErrAttemptNotActive
	}

	key := config.CacheKey.AttemptAutosaveKey(attemptID.String())
	if err := s.rdb.HSet(ctx, key, req.QuestionID.String(), req.Value).Err(); err != nil {
		return fmt.Errorf("autosave answer: %w", err)
	}

	raw, _ := json.Marshal(draftPayload{AttemptID: attemptID.String()})
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistDraftsQueue, raw).Err(); err != nil {
		s.log.Warn().Err(err).Str("attempt_id", attemptID.String()).Msg("draft enqueue failed")
	}
	return nil
}

// AttemptState is the live view a student polls (or streams) during an
// attempt: draft answers plus the remaining clock.
type AttemptState struct {
	AttemptID        uuid.UUID           `json:"attempt_id"`
	Status           model.AttemptStatus `json:"status"`
	AutosavedAnswers map[string]string   `json:"autosaved_answers"`
	RemainingSeconds float64             `json:"remaining_seconds"`
}

// GetState returns the current attempt state. Duration comes from the Redis
// quiz cache with a PostgreSQL fallback and self-heal.
func (s *AttemptService) GetState(ctx context.Context, attemptID, studentID uuid.UUID) (*AttemptState, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.StudentID != studentID {
		return nil, ErrNotAttemptOwner
	}

	drafts, err := s.rdb.HGetAll(ctx, config.CacheKey.AttemptAutosaveKey(attemptID.String())).Result()
	if err != nil {
		return nil, fmt.Errorf("get draft answers: %w", err)
	}

	durationMinutes, err := s.quizDuration(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}

	remaining := time.Until(attempt.StartedAt.Add(time.Duration(durationMinutes) * time.Minute))
	if remaining < 0 || attempt.Status != model.AttemptStatusInProgress {
		remaining = 0
	}

	return &AttemptState{
		AttemptID:        attempt.ID,
		Status:           attempt.Status,
		AutosavedAnswers: drafts,
		RemainingSeconds: remaining.Seconds(),
	}, nil
}

// quizDuration reads the duration cache, falling back to PostgreSQL and
// healing the cache on a miss.
func (s *AttemptService) quizDuration(ctx context.Context, quizID uuid.UUID) (int, error) {
	key := config.CacheKey.QuizDurationKey(quizID.String())

	val, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		if minutes, convErr := strconv.Atoi(val); convErr == nil {
			return minutes, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("get quiz duration: %w", err)
	}

	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return 0, fmt.Errorf("get quiz: %w", err)
	}
	_ = s.rdb.Set(ctx, key, quiz.DurationMinutes, 0)
	return quiz.DurationMinutes, nil
}

// SubmitAttempt grades the submitted answers against the frozen snapshot and
// moves the attempt out of in_progress in one compare-and-set write. Late
// submissions are accepted, flagged as timed out, and their time spent is
// clamped to the quiz duration.
func (s *AttemptService) SubmitAttempt(ctx context.Context, attemptID, studentID uuid.UUID, req *model.SubmitAttemptRequest) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.StudentID != studentID {
		return nil, ErrNotAttemptOwner
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return nil, ErrAlreadySubmitted
	}

	quiz, err := s.quizRepo.GetByID(ctx, attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	now := time.Now()
	seconds, timedOut := scoring.ElapsedTime(attempt.StartedAt, now, quiz.DurationMinutes)

	answers, status := scoring.EvaluateSubmission(attempt.Questions, req.Answers)

	attempt.Status = status
	attempt.SubmittedAt = &now
	attempt.TimeSpentSeconds = seconds
	attempt.TimedOut = timedOut
	attempt.Answers = answers
	attempt.Scoring = scoring.Summarize(attempt.Questions, answers, quiz.PassingScore)

	if err := s.attemptRepo.Submit(ctx, attempt); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrAlreadySubmitted
		}
		return nil, fmt.Errorf("submit attempt: %w", err)
	}

	s.rdb.Del(ctx, config.CacheKey.AttemptAutosaveKey(attemptID.String()))
	s.enqueueStatsRefresh(ctx, attempt.QuizID, attempt.StudentID)

	return s.redactAttempt(attempt, quiz), nil
}

// GetAttempt returns an attempt for its owner, with correct answers redacted
// unless the quiz reveals them and the attempt is finished.
func (s *AttemptService) GetAttempt(ctx context.Context, attemptID, studentID uuid.UUID) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.StudentID != studentID {
		return nil, ErrNotAttemptOwner
	}

	quiz, err := s.quizRepo.GetByID(ctx, attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	return s.redactAttempt(attempt, quiz), nil
}

// GetAttemptForEducator returns an attempt without redaction.
func (s *AttemptService) GetAttemptForEducator(ctx context.Context, attemptID uuid.UUID) (*model.Attempt, error) {
	return s.attemptRepo.GetByID(ctx, attemptID)
}

// ListByStudent returns the student's attempt history, redacted per quiz.
func (s *AttemptService) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Attempt, error) {
	attempts, err := s.attemptRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	quizzes := map[uuid.UUID]*model.Quiz{}
	for i := range attempts {
		quiz, ok := quizzes[attempts[i].QuizID]
		if !ok {
			quiz, err = s.quizRepo.GetByID(ctx, attempts[i].QuizID)
			if err != nil {
				continue
			}
			quizzes[attempts[i].QuizID] = quiz
		}
		attempts[i] = *s.redactAttempt(&attempts[i], quiz)
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}
	return attempts, nil
}

// ListByQuiz returns paginated attempt results for educator review.
func (s *AttemptService) ListByQuiz(ctx context.Context, quizID uuid.UUID, status *model.AttemptStatus, page, perPage int) ([]repository.AttemptResult, int, error) {
	return s.attemptRepo.ListByQuiz(ctx, quizID, status, page, perPage)
}

// redactAttempt strips answer keys from the snapshot unless the quiz reveals
// them and the attempt has finished.
func (s *AttemptService) redactAttempt(attempt *model.Attempt, quiz *model.Quiz) *model.Attempt {
	if quiz.ShowCorrectAnswers && attempt.Status.IsTerminal() {
		return attempt
	}

	redacted := *attempt
	redacted.Questions = make([]model.Question, len(attempt.Questions))
	for i := range attempt.Questions {
		q := attempt.Questions[i]
		q.CorrectAnswers = nil
		q.Explanation = ""
		if q.Options != nil {
			opts := make([]model.Option, len(q.Options))
			for j, opt := range q.Options {
				opt.IsCorrect = false
				opts[j] = opt
			}
			q.Options = opts
		}
		redacted.Questions[i] = q
	}
	return &redacted
}

type draftPayload struct {
	AttemptID string `json:"attempt_id"`
}

type statsPayload struct {
	QuizID    string `json:"quiz_id"`
	StudentID string `json:"student_id"`
}

func (s *AttemptService) enqueueStatsRefresh(ctx context.Context, quizID, studentID uuid.UUID) {
	raw, _ := json.Marshal(statsPayload{QuizID: quizID.String(), StudentID: studentID.String()})
	if err := s.rdb.RPush(ctx, config.WorkerKey.RefreshStatsQueue, raw).Err(); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("stats enqueue failed")
	}
}

func randSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}
