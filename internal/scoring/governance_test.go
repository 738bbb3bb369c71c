package scoring

import (
	"testing"
	"time"

	"github.com/courseloom/courseloom-backend/internal/model"
)

func TestCheckEligibility(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name          string
		maxAttempts   int
		deadline      *time.Time
		priorAttempts int
		want          model.EligibilityReason
	}{
		{name: "unlimited attempts", maxAttempts: 0, priorAttempts: 99, want: model.EligibilityEligible},
		{name: "under limit", maxAttempts: 3, priorAttempts: 2, want: model.EligibilityEligible},
		{name: "at limit", maxAttempts: 2, priorAttempts: 2, want: model.EligibilityMaxAttemptsReached},
		{name: "over limit", maxAttempts: 2, priorAttempts: 3, want: model.EligibilityMaxAttemptsReached},
		{name: "deadline passed", maxAttempts: 0, deadline: &past, want: model.EligibilityDeadlinePassed},
		{name: "deadline wins over remaining attempts", maxAttempts: 5, deadline: &past, priorAttempts: 0, want: model.EligibilityDeadlinePassed},
		{name: "future deadline ok", maxAttempts: 0, deadline: &future, want: model.EligibilityEligible},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			quiz := &model.Quiz{MaxAttempts: tc.maxAttempts, Deadline: tc.deadline}
			got := CheckEligibility(quiz, tc.priorAttempts, now)
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestAttemptsLeft(t *testing.T) {
	if got := AttemptsLeft(&model.Quiz{MaxAttempts: 0}, 10); got != -1 {
		t.Fatalf("unlimited should report -1, got %d", got)
	}
	if got := AttemptsLeft(&model.Quiz{MaxAttempts: 3}, 1); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := AttemptsLeft(&model.Quiz{MaxAttempts: 2}, 5); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
