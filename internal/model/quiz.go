package model

import (
	"time"

	"github.com/google/uuid"
)

// Quiz is a published assessment attached to a course, optionally scoped to a
// chapter or lecture. The authoring surface owns its content; the engine treats
// a quiz as immutable except for the published flag.
type Quiz struct {
	ID                 uuid.UUID  `json:"id"`
	CourseID           uuid.UUID  `json:"course_id"`
	ChapterID          *uuid.UUID `json:"chapter_id,omitempty"`
	LectureID          *uuid.UUID `json:"lecture_id,omitempty"`
	Title              string     `json:"title"`
	Questions          []Question `json:"questions"`
	DurationMinutes    int        `json:"duration_minutes"`
	PassingScore       float64    `json:"passing_score"`
	MaxAttempts        int        `json:"max_attempts"` // 0 = unlimited
	ShuffleQuestions   bool       `json:"shuffle_questions"`
	ShuffleOptions     bool       `json:"shuffle_options"`
	ShowCorrectAnswers bool       `json:"show_correct_answers"`
	Deadline           *time.Time `json:"deadline,omitempty"`
	TotalPoints        int        `json:"total_points"`
	IsPublished        bool       `json:"is_published"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// SumPoints returns the sum of all question points.
func (q *Quiz) SumPoints() int {
	total := 0
	for i := range q.Questions {
		total += q.Questions[i].Points
	}
	return total
}

// CreateQuizRequest is the payload for registering a new quiz definition.
type CreateQuizRequest struct {
	CourseID           uuid.UUID       `json:"course_id" binding:"required"`
	ChapterID          *uuid.UUID      `json:"chapter_id" binding:"omitempty"`
	LectureID          *uuid.UUID      `json:"lecture_id" binding:"omitempty"`
	Title              string          `json:"title" binding:"required,min=3,max=255"`
	Questions          []QuestionInput `json:"questions" binding:"omitempty,dive"`
	DurationMinutes    int             `json:"duration_minutes" binding:"required,min=1,max=480"`
	PassingScore       float64         `json:"passing_score" binding:"min=0,max=100"`
	MaxAttempts        int             `json:"max_attempts" binding:"min=0"`
	ShuffleQuestions   bool            `json:"shuffle_questions"`
	ShuffleOptions     bool            `json:"shuffle_options"`
	ShowCorrectAnswers bool            `json:"show_correct_answers"`
	Deadline           *time.Time      `json:"deadline" binding:"omitempty"`
}

// UpdateQuizRequest is the payload for updating an unpublished quiz definition.
type UpdateQuizRequest struct {
	Title              string          `json:"title" binding:"omitempty,min=3,max=255"`
	Questions          []QuestionInput `json:"questions" binding:"omitempty,dive"`
	DurationMinutes    int             `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	PassingScore       *float64        `json:"passing_score" binding:"omitempty,min=0,max=100"`
	MaxAttempts        *int            `json:"max_attempts" binding:"omitempty,min=0"`
	ShuffleQuestions   *bool           `json:"shuffle_questions" binding:"omitempty"`
	ShuffleOptions     *bool           `json:"shuffle_options" binding:"omitempty"`
	ShowCorrectAnswers *bool           `json:"show_correct_answers" binding:"omitempty"`
	Deadline           *time.Time      `json:"deadline" binding:"omitempty"`
}

// QuizPayload is the Redis-cached quiz view sent to students (no correct
// answers, no explanations).
type QuizPayload struct {
	QuizID          uuid.UUID            `json:"quiz_id"`
	Title           string               `json:"title"`
	DurationMinutes int                  `json:"duration_minutes"`
	TotalPoints     int                  `json:"total_points"`
	Questions       []QuestionForStudent `json:"questions"`
}

// QuestionForStudent is a question stripped of grading data.
type QuestionForStudent struct {
	ID           uuid.UUID    `json:"id"`
	Type         QuestionType `json:"type"`
	QuestionText string       `json:"question_text"`
	Points       int          `json:"points"`
	Options      []Option     `json:"options,omitempty"`
	MaxWords     int          `json:"max_words,omitempty"`
}

// ForStudent strips grading data from a question for delivery to a student.
func (q Question) ForStudent() QuestionForStudent {
	out := QuestionForStudent{
		ID:           q.ID,
		Type:         q.Type,
		QuestionText: q.QuestionText,
		Points:       q.Points,
		MaxWords:     q.MaxWords,
	}
	if len(q.Options) > 0 {
		out.Options = make([]Option, len(q.Options))
		for i, opt := range q.Options {
			out.Options[i] = Option{ID: opt.ID, Text: opt.Text}
		}
	}
	return out
}
