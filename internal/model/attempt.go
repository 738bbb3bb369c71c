package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates attempt states.
//
//	in_progress -> completed   (every answer auto-gradable)
//	in_progress -> pending     (at least one answer awaits manual grading)
//	pending     -> graded      (terminal, after manual grading)
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusCompleted  AttemptStatus = "completed"
	AttemptStatusPending    AttemptStatus = "pending"
	AttemptStatusGraded     AttemptStatus = "graded"
)

// IsTerminal reports whether no further submission is possible for the status.
func (s AttemptStatus) IsTerminal() bool {
	return s != AttemptStatusInProgress
}

// Attempt is one student's timed run through a quiz. Questions holds the
// snapshot taken at start time (order included), so later quiz edits never
// change the grading rules of an attempt already in flight.
type Attempt struct {
	ID               uuid.UUID       `json:"id"`
	QuizID           uuid.UUID       `json:"quiz_id"`
	StudentID        uuid.UUID       `json:"student_id"`
	AttemptNumber    int             `json:"attempt_number"`
	Status           AttemptStatus   `json:"status"`
	StartedAt        time.Time       `json:"started_at"`
	SubmittedAt      *time.Time      `json:"submitted_at,omitempty"`
	TimeSpentSeconds int             `json:"time_spent_seconds"`
	TimedOut         bool            `json:"timed_out"`
	Questions        []Question      `json:"questions"`
	Answers          []Answer        `json:"answers"`
	Scoring          *ScoringSummary `json:"scoring,omitempty"`
}

// Answer is one graded (or not yet graded) response inside an attempt.
// IsCorrect is tri-state: nil means "awaiting manual grading" (essay only).
type Answer struct {
	QuestionID   uuid.UUID `json:"question_id"`
	Value        string    `json:"value"`
	IsCorrect    *bool     `json:"is_correct"`
	PointsEarned float64   `json:"points_earned"`
	Feedback     string    `json:"feedback,omitempty"`
}

// ScoringSummary aggregates an attempt's points once every answer is graded.
type ScoringSummary struct {
	PointsEarned    float64 `json:"points_earned"`
	TotalPoints     int     `json:"total_points"`
	ScorePercentage float64 `json:"score_percentage"`
	Passed          bool    `json:"passed"`
}

// EligibilityReason is the structured outcome of the attempt governance check.
type EligibilityReason string

const (
	EligibilityEligible           EligibilityReason = "eligible"
	EligibilityMaxAttemptsReached EligibilityReason = "max-attempts-reached"
	EligibilityDeadlinePassed     EligibilityReason = "deadline-passed"
)

// AnswerInput is one submitted answer: an option ID, "true"/"false", or free text.
type AnswerInput struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Value      string    `json:"value"`
}

// SubmitAttemptRequest is the payload for submitting an in-progress attempt.
type SubmitAttemptRequest struct {
	Answers []AnswerInput `json:"answers" binding:"dive"`
}

// AutosaveAnswerRequest is the payload for buffering a single draft answer.
type AutosaveAnswerRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Value      string    `json:"value" binding:"required,max=20000"`
}

// GradeInput is one manual score for an ungraded answer.
type GradeInput struct {
	QuestionID   uuid.UUID `json:"question_id" binding:"required"`
	PointsEarned float64   `json:"points_earned" binding:"min=0"`
	Feedback     string    `json:"feedback" binding:"omitempty,max=5000"`
}

// GradeAttemptRequest is the manual grading batch for a pending attempt.
// Applied atomically: one out-of-range entry rejects the whole batch.
type GradeAttemptRequest struct {
	Grades []GradeInput `json:"grades" binding:"required,min=1,dive"`
}
