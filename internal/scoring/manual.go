package scoring

import (
	"errors"
	"fmt"

	"github.com/courseloom/courseloom-backend/internal/model"
	"github.com/google/uuid"
)

// Manual grading validation errors.
var (
	ErrUnknownQuestion  = errors.New("grade references a question not in this attempt")
	ErrAlreadyGraded    = errors.New("grade targets an answer that is already graded")
	ErrPointsOutOfRange = errors.New("points earned is outside [0, question points]")
	ErrDuplicateGrade   = errors.New("duplicate grade for the same question")
)

// ApplyManualGrades validates a manual grading batch against the attempt's
// question snapshot and returns a new answer slice with the grades applied.
// The batch is atomic: any invalid entry fails the whole call and the input
// answers are left untouched. An applied grade sets IsCorrect to whether the
// full points were awarded; partial credit is preserved numerically.
func ApplyManualGrades(questions []model.Question, answers []model.Answer, grades []model.GradeInput) ([]model.Answer, error) {
	questionByID := make(map[uuid.UUID]*model.Question, len(questions))
	for i := range questions {
		questionByID[questions[i].ID] = &questions[i]
	}
	answerIdx := make(map[uuid.UUID]int, len(answers))
	for i := range answers {
		answerIdx[answers[i].QuestionID] = i
	}

	// Validate the whole batch before touching anything.
	seen := make(map[uuid.UUID]bool, len(grades))
	for _, g := range grades {
		if seen[g.QuestionID] {
			return nil, fmt.Errorf("question %s: %w", g.QuestionID, ErrDuplicateGrade)
		}
		seen[g.QuestionID] = true

		q, ok := questionByID[g.QuestionID]
		if !ok {
			return nil, fmt.Errorf("question %s: %w", g.QuestionID, ErrUnknownQuestion)
		}
		idx, ok := answerIdx[g.QuestionID]
		if !ok {
			return nil, fmt.Errorf("question %s: %w", g.QuestionID, ErrUnknownQuestion)
		}
		if answers[idx].IsCorrect != nil {
			return nil, fmt.Errorf("question %s: %w", g.QuestionID, ErrAlreadyGraded)
		}
		if g.PointsEarned < 0 || g.PointsEarned > float64(q.Points) {
			return nil, fmt.Errorf("question %s: %w", g.QuestionID, ErrPointsOutOfRange)
		}
	}

	updated := make([]model.Answer, len(answers))
	copy(updated, answers)

	for _, g := range grades {
		idx := answerIdx[g.QuestionID]
		q := questionByID[g.QuestionID]

		full := g.PointsEarned == float64(q.Points)
		updated[idx].IsCorrect = &full
		updated[idx].PointsEarned = g.PointsEarned
		updated[idx].Feedback = g.Feedback
	}

	return updated, nil
}

// UngradedCount returns how many answers still await manual grading.
func UngradedCount(answers []model.Answer) int {
	n := 0
	for i := range answers {
		if answers[i].IsCorrect == nil {
			n++
		}
	}
	return n
}
