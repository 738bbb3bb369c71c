package scoring

import (
	"errors"
	"fmt"

	"github.com/courseloom/courseloom-backend/internal/model"
)

// Quiz definition validation errors, checked before publication.
var (
	ErrNoQuestions          = errors.New("quiz has no questions")
	ErrNoCorrectOption      = errors.New("question has no correct option")
	ErrMultipleCorrect      = errors.New("question has more than one correct option")
	ErrTooFewOptions        = errors.New("question needs at least two options")
	ErrNoAcceptedAnswers    = errors.New("fill-blank question has no accepted answers")
	ErrNonPositivePoints    = errors.New("question points must be positive")
	ErrUnknownQuestionType  = errors.New("unknown question type")
	ErrDuplicateQuestionIDs = errors.New("duplicate question ids")
)

// ValidateQuestions checks that a question set is publishable: at least one
// question, positive points, exactly one correct option per choice question,
// and at least one accepted answer per fill-blank.
func ValidateQuestions(questions []model.Question) error {
	if len(questions) == 0 {
		return ErrNoQuestions
	}

	seen := make(map[string]bool, len(questions))
	for i := range questions {
		q := &questions[i]
		if seen[q.ID.String()] {
			return fmt.Errorf("question %d: %w", i+1, ErrDuplicateQuestionIDs)
		}
		seen[q.ID.String()] = true

		if q.Points <= 0 {
			return fmt.Errorf("question %d: %w", i+1, ErrNonPositivePoints)
		}

		switch q.Type {
		case model.QuestionTypeMultipleChoice:
			if len(q.Options) < 2 {
				return fmt.Errorf("question %d: %w", i+1, ErrTooFewOptions)
			}
			if err := checkSingleCorrect(q.Options); err != nil {
				return fmt.Errorf("question %d: %w", i+1, err)
			}
		case model.QuestionTypeTrueFalse:
			if err := checkSingleCorrect(q.Options); err != nil {
				return fmt.Errorf("question %d: %w", i+1, err)
			}
		case model.QuestionTypeFillBlank:
			if len(q.CorrectAnswers) == 0 {
				return fmt.Errorf("question %d: %w", i+1, ErrNoAcceptedAnswers)
			}
		case model.QuestionTypeEssay:
			// Nothing gradable to check; rubric and word limit are optional.
		default:
			return fmt.Errorf("question %d: %w", i+1, ErrUnknownQuestionType)
		}
	}

	return nil
}

func checkSingleCorrect(options []model.Option) error {
	correct := 0
	for _, opt := range options {
		if opt.IsCorrect {
			correct++
		}
	}
	switch {
	case correct == 0:
		return ErrNoCorrectOption
	case correct > 1:
		return ErrMultipleCorrect
	}
	return nil
}
