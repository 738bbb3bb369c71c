package scoring

import (
	"testing"
	"time"

	"github.com/courseloom/courseloom-backend/internal/model"
)

func TestEvaluateSubmission_AllObjective(t *testing.T) {
	mc := mcQuestion(2, "b", "a", "b", "c")
	fb := fillBlankQuestion(3, false, "mitochondria")
	questions := []model.Question{mc, fb}

	answers, status := EvaluateSubmission(questions, []model.AnswerInput{
		{QuestionID: mc.ID, Value: "b"},
		{QuestionID: fb.ID, Value: "Mitochondria"},
	})

	if status != model.AttemptStatusCompleted {
		t.Fatalf("expected completed, got %s", status)
	}
	if len(answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(answers))
	}
	for i, a := range answers {
		if a.IsCorrect == nil || !*a.IsCorrect {
			t.Fatalf("answer %d should be correct", i)
		}
	}

	summary := Summarize(questions, answers, 70)
	if summary == nil {
		t.Fatal("summary should materialize for a completed attempt")
	}
	if summary.PointsEarned != 5 || summary.TotalPoints != 5 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.ScorePercentage != 100 || !summary.Passed {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestEvaluateSubmission_EssayForcesPending(t *testing.T) {
	mc := mcQuestion(2, "b", "a", "b")
	essay := essayQuestion(3)
	questions := []model.Question{mc, essay}

	answers, status := EvaluateSubmission(questions, []model.AnswerInput{
		{QuestionID: mc.ID, Value: "b"},
		{QuestionID: essay.ID, Value: "my essay"},
	})

	if status != model.AttemptStatusPending {
		t.Fatalf("expected pending, got %s", status)
	}
	if answers[1].IsCorrect != nil {
		t.Fatal("essay answer must stay ungraded at submission time")
	}
	if Summarize(questions, answers, 70) != nil {
		t.Fatal("summary must not materialize while an answer is ungraded")
	}
}

func TestEvaluateSubmission_MissingAnswersGradedEmpty(t *testing.T) {
	mc := mcQuestion(2, "b", "a", "b")
	fb := fillBlankQuestion(1, false, "x")
	questions := []model.Question{mc, fb}

	answers, status := EvaluateSubmission(questions, nil)

	if status != model.AttemptStatusCompleted {
		t.Fatalf("expected completed, got %s", status)
	}
	for i, a := range answers {
		if a.IsCorrect == nil || *a.IsCorrect || a.PointsEarned != 0 {
			t.Fatalf("empty answer %d should grade as wrong with zero points: %+v", i, a)
		}
	}
}

func TestEvaluateSubmission_AnswersFollowSnapshotOrder(t *testing.T) {
	q1 := mcQuestion(1, "a", "a", "b")
	q2 := mcQuestion(1, "b", "a", "b")
	q3 := fillBlankQuestion(1, false, "x")
	questions := []model.Question{q3, q1, q2}

	// Inputs deliberately out of order.
	answers, _ := EvaluateSubmission(questions, []model.AnswerInput{
		{QuestionID: q2.ID, Value: "b"},
		{QuestionID: q3.ID, Value: "x"},
		{QuestionID: q1.ID, Value: "a"},
	})

	for i := range questions {
		if answers[i].QuestionID != questions[i].ID {
			t.Fatalf("answer %d out of snapshot order", i)
		}
	}
}

func TestSummarize_PointsInvariant(t *testing.T) {
	mc := mcQuestion(2, "b", "a", "b")
	fb := fillBlankQuestion(3, false, "x")
	essay := essayQuestion(5)
	questions := []model.Question{mc, fb, essay}

	answers, _ := EvaluateSubmission(questions, []model.AnswerInput{
		{QuestionID: mc.ID, Value: "b"},
		{QuestionID: fb.ID, Value: "wrong"},
		{QuestionID: essay.ID, Value: "essay text"},
	})

	graded, err := ApplyManualGrades(questions, answers, []model.GradeInput{
		{QuestionID: essay.ID, PointsEarned: 4, Feedback: "good"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary := Summarize(questions, graded, 50)
	if summary == nil {
		t.Fatal("expected summary after full grading")
	}

	sum := 0.0
	for _, a := range graded {
		sum += a.PointsEarned
	}
	if summary.PointsEarned != sum {
		t.Fatalf("summary points %v != per-answer sum %v", summary.PointsEarned, sum)
	}
	if summary.TotalPoints != 10 {
		t.Fatalf("expected total 10, got %d", summary.TotalPoints)
	}
	if summary.ScorePercentage != 60 {
		t.Fatalf("expected 60%%, got %v", summary.ScorePercentage)
	}
	if !summary.Passed {
		t.Fatal("60 >= 50 should pass")
	}
}

func TestSummarize_ZeroTotalPoints(t *testing.T) {
	summary := Summarize(nil, nil, 70)
	if summary == nil {
		t.Fatal("expected summary")
	}
	if summary.ScorePercentage != 0 || summary.Passed {
		t.Fatalf("zero-point quiz must score 0%% and not pass: %+v", summary)
	}
}

func TestElapsedTime(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		elapsed  time.Duration
		duration int
		seconds  int
		timedOut bool
	}{
		{name: "within limit", elapsed: 10 * time.Minute, duration: 30, seconds: 600, timedOut: false},
		{name: "exactly at limit", elapsed: 30 * time.Minute, duration: 30, seconds: 1800, timedOut: true},
		{name: "past limit clamps", elapsed: 45 * time.Minute, duration: 30, seconds: 1800, timedOut: true},
		{name: "clock skew clamps to zero", elapsed: -time.Minute, duration: 30, seconds: 0, timedOut: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seconds, timedOut := ElapsedTime(start, start.Add(tc.elapsed), tc.duration)
			if seconds != tc.seconds || timedOut != tc.timedOut {
				t.Fatalf("got (%d, %v), want (%d, %v)", seconds, timedOut, tc.seconds, tc.timedOut)
			}
		})
	}
}
