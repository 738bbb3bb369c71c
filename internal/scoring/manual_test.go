package scoring

import (
	"errors"
	"testing"

	"github.com/courseloom/courseloom-backend/internal/model"
	"github.com/google/uuid"
)

func pendingAttempt(t *testing.T) ([]model.Question, []model.Answer) {
	t.Helper()
	mc := mcQuestion(2, "b", "a", "b")
	essay1 := essayQuestion(3)
	essay2 := essayQuestion(5)
	questions := []model.Question{mc, essay1, essay2}

	answers, status := EvaluateSubmission(questions, []model.AnswerInput{
		{QuestionID: mc.ID, Value: "b"},
		{QuestionID: essay1.ID, Value: "first essay"},
		{QuestionID: essay2.ID, Value: "second essay"},
	})
	if status != model.AttemptStatusPending {
		t.Fatalf("fixture should be pending, got %s", status)
	}
	return questions, answers
}

func TestApplyManualGrades_FullBatch(t *testing.T) {
	questions, answers := pendingAttempt(t)

	graded, err := ApplyManualGrades(questions, answers, []model.GradeInput{
		{QuestionID: questions[1].ID, PointsEarned: 3, Feedback: "full marks"},
		{QuestionID: questions[2].ID, PointsEarned: 2.5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if UngradedCount(graded) != 0 {
		t.Fatal("all answers should be graded")
	}
	if graded[1].IsCorrect == nil || !*graded[1].IsCorrect {
		t.Fatal("full points should mark the answer correct")
	}
	if graded[2].IsCorrect == nil || *graded[2].IsCorrect {
		t.Fatal("partial points should mark the answer incorrect")
	}
	if graded[2].PointsEarned != 2.5 {
		t.Fatalf("partial credit must be preserved numerically, got %v", graded[2].PointsEarned)
	}
	if graded[1].Feedback != "full marks" {
		t.Fatalf("feedback not applied: %q", graded[1].Feedback)
	}
}

func TestApplyManualGrades_PartialBatchLeavesRestUngraded(t *testing.T) {
	questions, answers := pendingAttempt(t)

	graded, err := ApplyManualGrades(questions, answers, []model.GradeInput{
		{QuestionID: questions[1].ID, PointsEarned: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if UngradedCount(graded) != 1 {
		t.Fatalf("expected 1 ungraded answer, got %d", UngradedCount(graded))
	}
}

func TestApplyManualGrades_Atomic(t *testing.T) {
	questions, answers := pendingAttempt(t)

	tests := []struct {
		name    string
		grades  []model.GradeInput
		wantErr error
	}{
		{
			name: "points above max rejects batch",
			grades: []model.GradeInput{
				{QuestionID: questions[1].ID, PointsEarned: 3},
				{QuestionID: questions[2].ID, PointsEarned: 6},
			},
			wantErr: ErrPointsOutOfRange,
		},
		{
			name: "negative points rejects batch",
			grades: []model.GradeInput{
				{QuestionID: questions[1].ID, PointsEarned: -1},
			},
			wantErr: ErrPointsOutOfRange,
		},
		{
			name: "unknown question rejects batch",
			grades: []model.GradeInput{
				{QuestionID: questions[1].ID, PointsEarned: 3},
				{QuestionID: uuid.New(), PointsEarned: 1},
			},
			wantErr: ErrUnknownQuestion,
		},
		{
			name: "already graded target rejects batch",
			grades: []model.GradeInput{
				{QuestionID: questions[0].ID, PointsEarned: 2},
			},
			wantErr: ErrAlreadyGraded,
		},
		{
			name: "duplicate grade rejects batch",
			grades: []model.GradeInput{
				{QuestionID: questions[1].ID, PointsEarned: 3},
				{QuestionID: questions[1].ID, PointsEarned: 2},
			},
			wantErr: ErrDuplicateGrade,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ApplyManualGrades(questions, answers, tc.grades)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			// Input untouched on failure.
			if UngradedCount(answers) != 2 {
				t.Fatal("failed batch must not mutate the input answers")
			}
		})
	}
}
