package generation

import (
	"context"

	"github.com/phrazzld/prep-api/internal/domain"
)

// QuestionRequest describes the questions to generate for a session.
type QuestionRequest struct {
	Role       string
	Experience string
	FocusAreas []string
	Count      int
	// Exclude lists question texts already in the session.
	Exclude []string
}

// GeneratedQuestion is one question/answer pair produced by a provider.
type GeneratedQuestion struct {
	Question   string            `json:"question"`
	Answer     string            `json:"answer"`
	Topic      string            `json:"topic,omitempty"`
	Difficulty domain.Difficulty `json:"difficulty,omitempty"`
}

// Evaluation is a provider's grade of a user's answer.
type Evaluation struct {
	IsCorrect bool   `json:"is_correct"`
	Score     int    `json:"score"`
	Feedback  string `json:"feedback"`
}

// Provider generates interview content. Implementations never panic on
// malformed model output; they return a failed Outcome.
type Provider interface {
	GenerateQuestions(ctx context.Context, req QuestionRequest) Outcome[[]GeneratedQuestion]
	GenerateExplanation(ctx context.Context, question, answer string) Outcome[string]
	EvaluateAnswer(ctx context.Context, question, expectedAnswer, userAnswer string) Outcome[Evaluation]
}

// Unavailable is the Provider used when no model is configured. Every call
// fails with ErrProviderUnavailable.
type Unavailable struct{}

var _ Provider = Unavailable{}

func (Unavailable) GenerateQuestions(context.Context, QuestionRequest) Outcome[[]GeneratedQuestion] {
	return Failed[[]GeneratedQuestion](ErrProviderUnavailable)
}

func (Unavailable) GenerateExplanation(context.Context, string, string) Outcome[string] {
	return Failed[string](ErrProviderUnavailable)
}

func (Unavailable) EvaluateAnswer(context.Context, string, string, string) Outcome[Evaluation] {
	return Failed[Evaluation](ErrProviderUnavailable)
}
