package scoring

import (
	"testing"

	"github.com/courseloom/courseloom-backend/internal/model"
	"github.com/google/uuid"
)

func mcQuestion(points int, correctID string, optionIDs ...string) model.Question {
	q := model.Question{
		ID:           uuid.New(),
		Type:         model.QuestionTypeMultipleChoice,
		QuestionText: "pick one",
		Points:       points,
	}
	for _, id := range optionIDs {
		q.Options = append(q.Options, model.Option{ID: id, Text: id, IsCorrect: id == correctID})
	}
	return q
}

func tfQuestion(points int, correct bool) model.Question {
	return model.Question{
		ID:           uuid.New(),
		Type:         model.QuestionTypeTrueFalse,
		QuestionText: "true or false",
		Points:       points,
		Options:      model.TrueFalseOptions(correct),
	}
}

func fillBlankQuestion(points int, caseSensitive bool, accepted ...string) model.Question {
	return model.Question{
		ID:             uuid.New(),
		Type:           model.QuestionTypeFillBlank,
		QuestionText:   "fill in",
		Points:         points,
		CorrectAnswers: accepted,
		CaseSensitive:  caseSensitive,
	}
}

func essayQuestion(points int) model.Question {
	return model.Question{
		ID:           uuid.New(),
		Type:         model.QuestionTypeEssay,
		QuestionText: "discuss",
		Points:       points,
		MaxWords:     300,
	}
}

func assertResult(t *testing.T, got Result, isCorrect *bool, points float64) {
	t.Helper()
	if got.PointsEarned != points {
		t.Fatalf("expected points=%v, got=%v", points, got.PointsEarned)
	}
	if isCorrect == nil {
		if got.IsCorrect != nil {
			t.Fatalf("expected is_correct=nil, got=%v", *got.IsCorrect)
		}
		return
	}
	if got.IsCorrect == nil {
		t.Fatalf("expected is_correct=%v, got=nil", *isCorrect)
	}
	if *got.IsCorrect != *isCorrect {
		t.Fatalf("expected is_correct=%v, got=%v", *isCorrect, *got.IsCorrect)
	}
}

func TestGrade_MultipleChoice(t *testing.T) {
	q := mcQuestion(2, "b", "a", "b", "c")

	tests := []struct {
		name      string
		submitted string
		isCorrect *bool
		points    float64
	}{
		{name: "correct option", submitted: "b", isCorrect: boolPtr(true), points: 2},
		{name: "wrong option", submitted: "a", isCorrect: boolPtr(false), points: 0},
		{name: "unknown option id", submitted: "z", isCorrect: boolPtr(false), points: 0},
		{name: "empty answer", submitted: "", isCorrect: boolPtr(false), points: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertResult(t, Grade(&q, tc.submitted), tc.isCorrect, tc.points)
		})
	}
}

func TestGrade_MultipleChoice_NeverPartial(t *testing.T) {
	q := mcQuestion(5, "c", "a", "b", "c", "d")
	for _, submitted := range []string{"a", "b", "d", "c"} {
		res := Grade(&q, submitted)
		if res.PointsEarned != 0 && res.PointsEarned != 5 {
			t.Fatalf("partial credit awarded for %q: %v", submitted, res.PointsEarned)
		}
	}
}

func TestGrade_TrueFalse(t *testing.T) {
	q := tfQuestion(1, true)

	tests := []struct {
		name      string
		submitted string
		isCorrect *bool
		points    float64
	}{
		{name: "correct true", submitted: "true", isCorrect: boolPtr(true), points: 1},
		{name: "wrong false", submitted: "false", isCorrect: boolPtr(false), points: 0},
		{name: "garbage value", submitted: "yes", isCorrect: boolPtr(false), points: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertResult(t, Grade(&q, tc.submitted), tc.isCorrect, tc.points)
		})
	}
}

func TestGrade_FillBlank(t *testing.T) {
	tests := []struct {
		name      string
		question  model.Question
		submitted string
		isCorrect *bool
		points    float64
	}{
		{name: "exact match", question: fillBlankQuestion(3, false, "photosynthesis"), submitted: "photosynthesis", isCorrect: boolPtr(true), points: 3},
		{name: "case folded", question: fillBlankQuestion(3, false, "photosynthesis"), submitted: "PhotoSynthesis", isCorrect: boolPtr(true), points: 3},
		{name: "surrounding whitespace trimmed", question: fillBlankQuestion(3, false, "photosynthesis"), submitted: "  photosynthesis \t", isCorrect: boolPtr(true), points: 3},
		{name: "second accepted answer", question: fillBlankQuestion(2, false, "colour", "color"), submitted: "color", isCorrect: boolPtr(true), points: 2},
		{name: "wrong answer", question: fillBlankQuestion(3, false, "photosynthesis"), submitted: "respiration", isCorrect: boolPtr(false), points: 0},
		{name: "case sensitive mismatch", question: fillBlankQuestion(2, true, "pH"), submitted: "ph", isCorrect: boolPtr(false), points: 0},
		{name: "case sensitive match", question: fillBlankQuestion(2, true, "pH"), submitted: " pH ", isCorrect: boolPtr(true), points: 2},
		{name: "empty submission", question: fillBlankQuestion(1, false, "x"), submitted: "", isCorrect: boolPtr(false), points: 0},
		{name: "interior whitespace not collapsed", question: fillBlankQuestion(1, false, "new york"), submitted: "new  york", isCorrect: boolPtr(false), points: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertResult(t, Grade(&tc.question, tc.submitted), tc.isCorrect, tc.points)
		})
	}
}

func TestGrade_Essay_AlwaysUngraded(t *testing.T) {
	q := essayQuestion(10)
	for _, submitted := range []string{"", "a long essay about things"} {
		res := Grade(&q, submitted)
		assertResult(t, res, nil, 0)
	}
}
