package scoring

import (
	"time"

	"github.com/courseloom/courseloom-backend/internal/model"
)

// CheckEligibility is the governance gate evaluated before an attempt record
// is created. priorAttempts counts every earlier attempt of the student on
// this quiz regardless of status — an abandoned in-progress attempt still
// consumes a slot. The deadline wins over remaining attempt count.
func CheckEligibility(quiz *model.Quiz, priorAttempts int, now time.Time) model.EligibilityReason {
	if quiz.Deadline != nil && now.After(*quiz.Deadline) {
		return model.EligibilityDeadlinePassed
	}
	if quiz.MaxAttempts > 0 && priorAttempts >= quiz.MaxAttempts {
		return model.EligibilityMaxAttemptsReached
	}
	return model.EligibilityEligible
}

// AttemptsLeft returns the remaining attempt budget, or -1 for unlimited.
func AttemptsLeft(quiz *model.Quiz, priorAttempts int) int {
	if quiz.MaxAttempts == 0 {
		return -1
	}
	left := quiz.MaxAttempts - priorAttempts
	if left < 0 {
		left = 0
	}
	return left
}
