package scoring

import (
	"testing"

	"github.com/courseloom/courseloom-backend/internal/model"
	"github.com/google/uuid"
)

func snapshotQuiz(shuffleQuestions, shuffleOptions bool) *model.Quiz {
	return &model.Quiz{
		ID:               uuid.New(),
		ShuffleQuestions: shuffleQuestions,
		ShuffleOptions:   shuffleOptions,
		Questions: []model.Question{
			mcQuestion(2, "b", "a", "b", "c", "d"),
			tfQuestion(1, false),
			fillBlankQuestion(3, false, "x"),
			essayQuestion(5),
		},
	}
}

func TestSnapshot_PreservesOrderWithoutShuffle(t *testing.T) {
	quiz := snapshotQuiz(false, false)
	snap := Snapshot(quiz, NewRNG(1, 2))

	if len(snap) != len(quiz.Questions) {
		t.Fatalf("expected %d questions, got %d", len(quiz.Questions), len(snap))
	}
	for i := range snap {
		if snap[i].ID != quiz.Questions[i].ID {
			t.Fatalf("question %d reordered without shuffle", i)
		}
	}
}

func TestSnapshot_ShuffleKeepsQuestionSet(t *testing.T) {
	quiz := snapshotQuiz(true, true)
	snap := Snapshot(quiz, NewRNG(7, 11))

	want := make(map[uuid.UUID]bool, len(quiz.Questions))
	for i := range quiz.Questions {
		want[quiz.Questions[i].ID] = true
	}
	for i := range snap {
		if !want[snap[i].ID] {
			t.Fatalf("snapshot contains unknown question %s", snap[i].ID)
		}
		delete(want, snap[i].ID)
	}
	if len(want) != 0 {
		t.Fatalf("snapshot lost %d questions", len(want))
	}
}

func TestSnapshot_OptionShuffleSkipsTrueFalse(t *testing.T) {
	quiz := snapshotQuiz(false, true)

	// Across many seeds, true/false options must never move.
	for seed := uint64(0); seed < 20; seed++ {
		snap := Snapshot(quiz, NewRNG(seed, seed+1))
		for i := range snap {
			if snap[i].Type != model.QuestionTypeTrueFalse {
				continue
			}
			if snap[i].Options[0].ID != model.TrueOptionID || snap[i].Options[1].ID != model.FalseOptionID {
				t.Fatalf("seed %d: true/false options reordered", seed)
			}
		}
	}
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	quiz := snapshotQuiz(false, false)
	snap := Snapshot(quiz, NewRNG(3, 5))

	snap[0].Options[0].Text = "mutated"
	snap[2].CorrectAnswers[0] = "mutated"

	if quiz.Questions[0].Options[0].Text == "mutated" {
		t.Fatal("snapshot shares option storage with the quiz")
	}
	if quiz.Questions[2].CorrectAnswers[0] == "mutated" {
		t.Fatal("snapshot shares accepted-answer storage with the quiz")
	}
}

func TestValidateQuestions(t *testing.T) {
	valid := snapshotQuiz(false, false).Questions

	tests := []struct {
		name      string
		questions []model.Question
		wantErr   bool
	}{
		{name: "valid set", questions: valid, wantErr: false},
		{name: "empty set", questions: nil, wantErr: true},
		{name: "zero points", questions: []model.Question{fillBlankQuestion(0, false, "x")}, wantErr: true},
		{name: "no accepted answers", questions: []model.Question{fillBlankQuestion(1, false)}, wantErr: true},
		{name: "mc with no correct option", questions: []model.Question{mcQuestion(1, "none", "a", "b")}, wantErr: true},
		{name: "single option mc", questions: []model.Question{mcQuestion(1, "a", "a")}, wantErr: true},
		{name: "essay alone is fine", questions: []model.Question{essayQuestion(5)}, wantErr: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateQuestions(tc.questions)
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateQuestions_MultipleCorrectOptions(t *testing.T) {
	q := mcQuestion(1, "a", "a", "b")
	q.Options[1].IsCorrect = true
	if err := ValidateQuestions([]model.Question{q}); err == nil {
		t.Fatal("two correct options must be rejected")
	}
}
