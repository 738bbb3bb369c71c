package model

import "github.com/google/uuid"

// QuestionType tags the question variant. Grading dispatches on this tag.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeFillBlank      QuestionType = "fill_blank"
	QuestionTypeEssay          QuestionType = "essay"
)

// Fixed option IDs for true/false questions.
const (
	TrueOptionID  = "true"
	FalseOptionID = "false"
)

// Option is a single selectable choice of a multiple-choice or true/false question.
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct,omitempty"`
}

// Question is one question of a quiz. Only the fields relevant to its Type are
// populated:
//   - multiple_choice / true_false: Options, exactly one of them correct
//   - fill_blank: CorrectAnswers, CaseSensitive
//   - essay: MaxWords, Rubric (never auto-gradable)
type Question struct {
	ID           uuid.UUID    `json:"id"`
	Type         QuestionType `json:"type"`
	QuestionText string       `json:"question_text"`
	Points       int          `json:"points"`
	Explanation  string       `json:"explanation,omitempty"`

	Options []Option `json:"options,omitempty"`

	CorrectAnswers []string `json:"correct_answers,omitempty"`
	CaseSensitive  bool     `json:"case_sensitive,omitempty"`

	MaxWords int    `json:"max_words,omitempty"`
	Rubric   string `json:"rubric,omitempty"`
}

// CorrectOptionID returns the ID of the single correct option, or "" if none.
func (q *Question) CorrectOptionID() string {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return opt.ID
		}
	}
	return ""
}

// TrueFalseOptions builds the two fixed options of a true/false question.
func TrueFalseOptions(correct bool) []Option {
	return []Option{
		{ID: TrueOptionID, Text: "True", IsCorrect: correct},
		{ID: FalseOptionID, Text: "False", IsCorrect: !correct},
	}
}

// QuestionInput is the authoring payload for a single question.
type QuestionInput struct {
	Type         string `json:"type" binding:"required,oneof=multiple_choice true_false fill_blank essay"`
	QuestionText string `json:"question_text" binding:"required,min=1,max=5000"`
	Points       int    `json:"points" binding:"required,min=1"`
	Explanation  string `json:"explanation" binding:"omitempty,max=5000"`

	Options []OptionInput `json:"options" binding:"omitempty,dive"`

	CorrectAnswers []string `json:"correct_answers" binding:"omitempty,dive,min=1"`
	CaseSensitive  bool     `json:"case_sensitive"`

	CorrectValue *bool `json:"correct_value"` // true_false only

	MaxWords int    `json:"max_words" binding:"omitempty,min=1"`
	Rubric   string `json:"rubric" binding:"omitempty,max=5000"`
}

// OptionInput is the authoring payload for one multiple-choice option.
type OptionInput struct {
	ID        string `json:"id" binding:"required,min=1,max=40"`
	Text      string `json:"text" binding:"required,min=1,max=2000"`
	IsCorrect bool   `json:"is_correct"`
}
