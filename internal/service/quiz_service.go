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
	ErrQuizNotPublished = errors.New("quiz is not published")
	ErrQuizPublished    = errors.New("quiz is published and can no longer be edited")
	ErrInvalidQuestions = errors.New("quiz question set is not valid")
)

// QuizService handles quiz definitions and the Redis payload cache. The
// payload cache holds the student-safe view (no correct answers) so the hot
// attempt-start path never rebuilds it from PostgreSQL.
type QuizService struct {
	quizRepo *repository.QuizRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(quizRepo *repository.QuizRepository, rdb *redis.Client, log zerolog.Logger) *QuizService {
	return &QuizService{
		quizRepo: quizRepo,
		rdb:      rdb,
		log:      log.With().Str("component", "quiz_service").Logger(),
	}
}

// GetByID retrieves a quiz by its UUID.
func (s *QuizService) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	return s.quizRepo.GetByID(ctx, id)
}

// ListByCourse retrieves all quizzes of a course.
func (s *QuizService) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Quiz, error) {
	quizzes, err := s.quizRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if quizzes == nil {
		quizzes = []model.Quiz{}
	}
	return quizzes, nil
}

// Create registers a new quiz definition as unpublished.
func (s *QuizService) Create(ctx context.Context, req *model.CreateQuizRequest) (*model.Quiz, error) {
	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	quiz := &model.Quiz{
		CourseID:           req.CourseID,
		ChapterID:          req.ChapterID,
		LectureID:          req.LectureID,
		Title:              req.Title,
		Questions:          questions,
		DurationMinutes:    req.DurationMinutes,
		PassingScore:       req.PassingScore,
		MaxAttempts:        req.MaxAttempts,
		ShuffleQuestions:   req.ShuffleQuestions,
		ShuffleOptions:     req.ShuffleOptions,
		ShowCorrectAnswers: req.ShowCorrectAnswers,
		Deadline:           req.Deadline,
	}
	quiz.TotalPoints = quiz.SumPoints()

	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}

// Update replaces fields of an unpublished quiz definition.
func (s *QuizService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuizRequest) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if quiz.IsPublished {
		return nil, ErrQuizPublished
	}

	if req.Title != "" {
		quiz.Title = req.Title
	}
	if req.Questions != nil {
		questions, err := buildQuestions(req.Questions)
		if err != nil {
			return nil, err
		}
		quiz.Questions = questions
	}
	if req.DurationMinutes > 0 {
		quiz.DurationMinutes = req.DurationMinutes
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.MaxAttempts != nil {
		quiz.MaxAttempts = *req.MaxAttempts
	}
	if req.ShuffleQuestions != nil {
		quiz.ShuffleQuestions = *req.ShuffleQuestions
	}
	if req.ShuffleOptions != nil {
		quiz.ShuffleOptions = *req.ShuffleOptions
	}
	if req.ShowCorrectAnswers != nil {
		quiz.ShowCorrectAnswers = *req.ShowCorrectAnswers
	}
	if req.Deadline != nil {
		quiz.Deadline = req.Deadline
	}
	quiz.TotalPoints = quiz.SumPoints()

	if err := s.quizRepo.Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("update quiz: %w", err)
	}
	return quiz, nil
}

// Delete removes an unpublished quiz.
func (s *QuizService) Delete(ctx context.Context, id uuid.UUID) error {
	quiz, err := s.quizRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get quiz: %w", err)
	}
	if quiz.IsPublished {
		return ErrQuizPublished
	}
	return s.quizRepo.Delete(ctx, id)
}

// Publish validates the question set, recomputes total points, marks the quiz
// published and warms the payload cache. A quiz with zero questions (or a
// malformed question) never reaches students.
func (s *QuizService) Publish(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if quiz.IsPublished {
		return quiz, nil
	}

	if err := scoring.ValidateQuestions(quiz.Questions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuestions, err)
	}

	quiz.TotalPoints = quiz.SumPoints()
	if err := s.quizRepo.Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("update quiz: %w", err)
	}
	if err := s.quizRepo.SetPublished(ctx, id, true); err != nil {
		return nil, fmt.Errorf("set published: %w", err)
	}
	quiz.IsPublished = true

	if err := s.WarmPayloadCache(ctx, quiz); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", id.String()).Msg("payload cache warm failed")
	}
	return quiz, nil
}

// Unpublish hides a quiz from students and drops its payload cache.
func (s *QuizService) Unpublish(ctx context.Context, id uuid.UUID) error {
	if err := s.quizRepo.SetPublished(ctx, id, false); err != nil {
		return fmt.Errorf("set published: %w", err)
	}
	s.rdb.Del(ctx, config.CacheKey.QuizPayloadKey(id.String()))
	s.rdb.Del(ctx, config.CacheKey.QuizDurationKey(id.String()))
	return nil
}

// GetPayload returns the student-safe quiz payload, preferring Redis and
// falling back to PostgreSQL with a self-heal write.
func (s *QuizService) GetPayload(ctx context.Context, quizID uuid.UUID) (*model.QuizPayload, error) {
	key := config.CacheKey.QuizPayloadKey(quizID.String())

	raw, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		payload := &model.QuizPayload{}
		if err := json.Unmarshal([]byte(raw), payload); err == nil {
			return payload, nil
		}
		// Corrupt cache entry: fall through to rebuild.
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get payload cache: %w", err)
	}

	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if !quiz.IsPublished {
		return nil, ErrQuizNotPublished
	}

	if err := s.WarmPayloadCache(ctx, quiz); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("payload self-heal failed")
	}
	return buildPayload(quiz), nil
}

// WarmPayloadCache stores the student-safe payload and duration in Redis.
func (s *QuizService) WarmPayloadCache(ctx context.Context, quiz *model.Quiz) error {
	payload := buildPayload(quiz)
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.QuizPayloadKey(quiz.ID.String()), raw, 0)
	pipe.Set(ctx, config.CacheKey.QuizDurationKey(quiz.ID.String()), quiz.DurationMinutes, 0)
	_, err = pipe.Exec(ctx)
	return err
}

// PrewarmAllCaches loads every published quiz payload into Redis. Called once
// at startup before accepting traffic.
func (s *QuizService) PrewarmAllCaches(ctx context.Context) error {
	ids, err := s.quizRepo.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("list published: %w", err)
	}

	warmed := 0
	for _, id := range ids {
		quiz, err := s.quizRepo.GetByID(ctx, id)
		if err != nil {
			s.log.Warn().Err(err).Str("quiz_id", id.String()).Msg("prewarm skip")
			continue
		}
		if err := s.WarmPayloadCache(ctx, quiz); err != nil {
			s.log.Warn().Err(err).Str("quiz_id", id.String()).Msg("prewarm failed")
			continue
		}
		warmed++
	}

	s.log.Info().Int("quizzes", warmed).Msg("Payload caches prewarmed")
	return nil
}

func buildPayload(quiz *model.Quiz) *model.QuizPayload {
	payload := &model.QuizPayload{
		QuizID:          quiz.ID,
		Title:           quiz.Title,
		DurationMinutes: quiz.DurationMinutes,
		TotalPoints:     quiz.TotalPoints,
		Questions:       make([]model.QuestionForStudent, len(quiz.Questions)),
	}
	for i := range quiz.Questions {
		payload.Questions[i] = quiz.Questions[i].ForStudent()
	}
	return payload
}

// buildQuestions converts authoring inputs into stored questions, assigning
// stable IDs and expanding true/false into its fixed option pair.
func buildQuestions(inputs []model.QuestionInput) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(inputs))
	for i, in := range inputs {
		q := model.Question{
			ID:           uuid.New(),
			Type:         model.QuestionType(in.Type),
			QuestionText: in.QuestionText,
			Points:       in.Points,
			Explanation:  in.Explanation,
		}

		switch q.Type {
		case model.QuestionTypeMultipleChoice:
			for _, opt := range in.Options {
				q.Options = append(q.Options, model.Option{
					ID:        opt.ID,
					Text:      opt.Text,
					IsCorrect: opt.IsCorrect,
				})
			}
		case model.QuestionTypeTrueFalse:
			if in.CorrectValue == nil {
				return nil, fmt.Errorf("%w: question %d: true/false needs correct_value", ErrInvalidQuestions, i+1)
			}
			q.Options = model.TrueFalseOptions(*in.CorrectValue)
		case model.QuestionTypeFillBlank:
			q.CorrectAnswers = in.CorrectAnswers
			q.CaseSensitive = in.CaseSensitive
		case model.QuestionTypeEssay:
			q.MaxWords = in.MaxWords
			q.Rubric = in.Rubric
		}

		questions = append(questions, q)
	}
	return questions, nil
}
