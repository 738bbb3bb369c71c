package scoring

import (
	"math/rand/v2"

	"github.com/courseloom/courseloom-backend/internal/model"
)

// Snapshot deep-copies a quiz's questions for a new attempt, applying the
// quiz's shuffle settings. The attempt grades against this copy forever, so an
// edit to the quiz cannot retroactively change an in-flight attempt. Option
// shuffling never touches true/false questions — their two options are fixed.
func Snapshot(quiz *model.Quiz, rng *rand.Rand) []model.Question {
	questions := make([]model.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		questions[i] = copyQuestion(&quiz.Questions[i])
	}

	if quiz.ShuffleQuestions {
		rng.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}

	if quiz.ShuffleOptions {
		for i := range questions {
			if questions[i].Type != model.QuestionTypeMultipleChoice {
				continue
			}
			opts := questions[i].Options
			rng.Shuffle(len(opts), func(a, b int) {
				opts[a], opts[b] = opts[b], opts[a]
			})
		}
	}

	return questions
}

func copyQuestion(q *model.Question) model.Question {
	out := *q
	if q.Options != nil {
		out.Options = make([]model.Option, len(q.Options))
		copy(out.Options, q.Options)
	}
	if q.CorrectAnswers != nil {
		out.CorrectAnswers = make([]string, len(q.CorrectAnswers))
		copy(out.CorrectAnswers, q.CorrectAnswers)
	}
	return out
}

// NewRNG returns a seeded source for snapshot shuffling.
func NewRNG(seed1, seed2 uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed1, seed2))
}
