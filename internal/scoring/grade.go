package scoring

import (
	"strings"

	"github.com/courseloom/courseloom-backend/internal/model"
)

// Result is the grading outcome for a single answer. IsCorrect is nil when the
// question cannot be auto-graded (essay) and a manual score is still owed.
type Result struct {
	IsCorrect    *bool
	PointsEarned float64
}

// Grade evaluates one submitted answer against a question. It is a pure
// function: no persistence, no side effects. Dispatch is on the question type
// tag.
//
//   - multiple_choice / true_false: full points iff the submitted option ID
//     equals the single correct option's ID, else zero. No partial credit.
//   - fill_blank: full points iff the trimmed submission matches any accepted
//     answer; case-insensitive unless CaseSensitive is set.
//   - essay: always (nil, 0) — the final score arrives via manual grading.
func Grade(q *model.Question, submitted string) Result {
	switch q.Type {
	case model.QuestionTypeMultipleChoice, model.QuestionTypeTrueFalse:
		return gradeChoice(q, submitted)
	case model.QuestionTypeFillBlank:
		return gradeFillBlank(q, submitted)
	case model.QuestionTypeEssay:
		return Result{IsCorrect: nil, PointsEarned: 0}
	default:
		// Unknown variant: treat as wrong rather than silently awarding points.
		return Result{IsCorrect: boolPtr(false), PointsEarned: 0}
	}
}

func gradeChoice(q *model.Question, submitted string) Result {
	correct := q.CorrectOptionID()
	if correct != "" && submitted == correct {
		return Result{IsCorrect: boolPtr(true), PointsEarned: float64(q.Points)}
	}
	return Result{IsCorrect: boolPtr(false), PointsEarned: 0}
}

// gradeFillBlank trims surrounding whitespace on both sides of the comparison,
// then matches exactly (case-folded unless the question is case-sensitive).
func gradeFillBlank(q *model.Question, submitted string) Result {
	got := strings.TrimSpace(submitted)
	for _, accepted := range q.CorrectAnswers {
		want := strings.TrimSpace(accepted)
		if q.CaseSensitive {
			if got == want {
				return Result{IsCorrect: boolPtr(true), PointsEarned: float64(q.Points)}
			}
			continue
		}
		if strings.EqualFold(got, want) {
			return Result{IsCorrect: boolPtr(true), PointsEarned: float64(q.Points)}
		}
	}
	return Result{IsCorrect: boolPtr(false), PointsEarned: 0}
}

func boolPtr(b bool) *bool {
	return &b
}
