package scoring

import (
	"time"

	"github.com/courseloom/courseloom-backend/internal/model"
	"github.com/google/uuid"
)

// SubmitGrace is how far past the attempt deadline a submission is still
// accepted. Covers slow networks after a client-side auto-submit; the attempt
// is flagged as timed out instead of being rejected.
const SubmitGrace = 30 * time.Second

// EvaluateSubmission grades every answer of a submission against the attempt's
// question snapshot. The returned answers follow the snapshot order, one per
// question; questions without a submitted value are graded as empty answers.
// Status is pending when at least one answer remains ungraded, completed
// otherwise.
func EvaluateSubmission(questions []model.Question, inputs []model.AnswerInput) ([]model.Answer, model.AttemptStatus) {
	byQuestion := make(map[uuid.UUID]string, len(inputs))
	for _, in := range inputs {
		byQuestion[in.QuestionID] = in.Value
	}

	answers := make([]model.Answer, len(questions))
	status := model.AttemptStatusCompleted

	for i := range questions {
		q := &questions[i]
		value := byQuestion[q.ID]
		res := Grade(q, value)

		answers[i] = model.Answer{
			QuestionID:   q.ID,
			Value:        value,
			IsCorrect:    res.IsCorrect,
			PointsEarned: res.PointsEarned,
		}
		if res.IsCorrect == nil {
			status = model.AttemptStatusPending
		}
	}

	return answers, status
}

// Summarize aggregates per-answer points into a scoring summary. It returns
// nil while any answer is still ungraded — the summary is only materialized
// once the attempt is fully graded.
func Summarize(questions []model.Question, answers []model.Answer, passingScore float64) *model.ScoringSummary {
	totalPoints := 0
	for i := range questions {
		totalPoints += questions[i].Points
	}

	earned := 0.0
	for i := range answers {
		if answers[i].IsCorrect == nil {
			return nil
		}
		earned += answers[i].PointsEarned
	}

	percentage := 0.0
	if totalPoints > 0 {
		percentage = earned / float64(totalPoints) * 100
	}

	return &model.ScoringSummary{
		PointsEarned:    earned,
		TotalPoints:     totalPoints,
		ScorePercentage: percentage,
		Passed:          percentage >= passingScore,
	}
}

// ElapsedTime derives the authoritative time-spent value for a submission.
// The client-reported timer is never trusted: elapsed is measured server-side
// and clamped to the quiz duration. timedOut reports whether the submission
// arrived at or past the time limit; a late submission is still accepted,
// flagged rather than rejected.
func ElapsedTime(startedAt, submittedAt time.Time, durationMinutes int) (seconds int, timedOut bool) {
	elapsed := submittedAt.Sub(startedAt)
	limit := time.Duration(durationMinutes) * time.Minute

	if elapsed >= limit {
		return int(limit.Seconds()), true
	}
	if elapsed < 0 {
		return 0, false
	}
	return int(elapsed.Seconds()), false
}
