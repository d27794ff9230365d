package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/avast/retry-go"
	"github.com/phrazzld/prep-api/internal/config"
	"github.com/phrazzld/prep-api/internal/domain"
	"github.com/phrazzld/prep-api/internal/generation"
	"google.golang.org/genai"
)

// contentGenerator is the subset of the genai Models service the provider
// uses.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Provider implements generation.Provider with Gemini.
type Provider struct {
	logger    *slog.Logger
	config    config.LLMConfig
	client    contentGenerator
	templates *template.Template
}

var _ generation.Provider = (*Provider)(nil)

// NewProvider creates a Gemini client from cfg. The API key and model name
// are required.
func NewProvider(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Provider, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newProvider(logger, cfg, client.Models)
}

func newProvider(logger *slog.Logger, cfg config.LLMConfig, client contentGenerator) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidConfig, err)
	}

	return &Provider{
		logger:    logger.With(slog.String("component", "gemini_provider"), slog.String("model", cfg.ModelName)),
		config:    cfg,
		client:    client,
		templates: templates,
	}, nil
}

// GenerateQuestions implements generation.Provider.
func (p *Provider) GenerateQuestions(
	ctx context.Context,
	req generation.QuestionRequest,
) generation.Outcome[[]generation.GeneratedQuestion] {
	count := req.Count
	if count <= 0 {
		count = p.config.QuestionCount
	}

	prompt, err := render(p.templates, questionsTemplate, questionsPrompt{
		Role:       req.Role,
		Experience: req.Experience,
		FocusAreas: req.FocusAreas,
		Count:      count,
		Exclude:    req.Exclude,
	})
	if err != nil {
		return generation.Failed[[]generation.GeneratedQuestion](err)
	}

	text, err := p.generate(ctx, "generate_questions", prompt, "application/json")
	if err != nil {
		return generation.Failed[[]generation.GeneratedQuestion](err)
	}

	questions, err := parseQuestions(text)
	if err != nil {
		p.logger.WarnContext(ctx, "unparseable question response", slog.String("error", err.Error()))
		return generation.Failed[[]generation.GeneratedQuestion](err)
	}
	if len(questions) > count {
		questions = questions[:count]
	}

	p.logger.InfoContext(ctx, "questions generated", slog.Int("count", len(questions)))
	return generation.Succeeded(questions)
}

// GenerateExplanation implements generation.Provider.
func (p *Provider) GenerateExplanation(ctx context.Context, question, answer string) generation.Outcome[string] {
	prompt, err := render(p.templates, explanationTemplate, explanationPrompt{Question: question, Answer: answer})
	if err != nil {
		return generation.Failed[string](err)
	}

	text, err := p.generate(ctx, "generate_explanation", prompt, "text/plain")
	if err != nil {
		return generation.Failed[string](err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return generation.Failed[string](fmt.Errorf("%w: empty explanation", generation.ErrInvalidResponse))
	}
	return generation.Succeeded(text)
}

// EvaluateAnswer implements generation.Provider.
func (p *Provider) EvaluateAnswer(
	ctx context.Context,
	question, expectedAnswer, userAnswer string,
) generation.Outcome[generation.Evaluation] {
	prompt, err := render(p.templates, evaluationTemplate, evaluationPrompt{
		Question:       question,
		ExpectedAnswer: expectedAnswer,
		UserAnswer:     userAnswer,
	})
	if err != nil {
		return generation.Failed[generation.Evaluation](err)
	}

	text, err := p.generate(ctx, "evaluate_answer", prompt, "application/json")
	if err != nil {
		return generation.Failed[generation.Evaluation](err)
	}

	eval, err := parseEvaluation(text)
	if err != nil {
		p.logger.WarnContext(ctx, "unparseable evaluation response", slog.String("error", err.Error()))
		return generation.Failed[generation.Evaluation](err)
	}
	return generation.Succeeded(eval)
}

// generate calls the model with retries. Blocked or malformed responses are
// not retried; transport errors are retried with exponential backoff.
func (p *Provider) generate(ctx context.Context, operation, prompt, mimeType string) (string, error) {
	log := p.logger.With(slog.String("operation", operation))

	var text string
	err := retry.Do(
		func() error {
			callCtx, cancel := context.WithTimeout(ctx, time.Duration(p.config.TimeoutSeconds)*time.Second)
			defer cancel()

			resp, err := p.client.GenerateContent(callCtx, p.config.ModelName, genai.Text(prompt),
				&genai.GenerateContentConfig{ResponseMIMEType: mimeType})
			if err != nil {
				return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
			}

			out, err := responseText(resp)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			text = out
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(p.config.MaxRetries+1)),
		retry.Delay(time.Duration(p.config.RetryDelaySeconds)*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.WarnContext(ctx, "retrying Gemini call",
				slog.Uint64("attempt", uint64(n+1)),
				slog.String("error", err.Error()))
		}),
	)
	if err != nil {
		log.ErrorContext(ctx, "Gemini call failed", slog.String("error", err.Error()))
		if errors.Is(err, generation.ErrContentBlocked) ||
			errors.Is(err, generation.ErrInvalidResponse) ||
			errors.Is(err, generation.ErrTransientFailure) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}
	return text, nil
}

// responseText extracts the text of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: empty text in response", generation.ErrInvalidResponse)
	}
	return b.String(), nil
}

// stripCodeFence removes a surrounding ```json fence if the model added one.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

func parseQuestions(text string) ([]generation.GeneratedQuestion, error) {
	var resp questionsResponse
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
	}

	questions := make([]generation.GeneratedQuestion, 0, len(resp.Questions))
	for _, q := range resp.Questions {
		question := strings.TrimSpace(q.Question)
		answer := strings.TrimSpace(q.Answer)
		if question == "" || answer == "" {
			continue
		}
		topic := strings.TrimSpace(q.Topic)
		if topic == "" {
			topic = domain.DefaultTopic
		}
		difficulty, err := domain.ParseDifficulty(q.Difficulty)
		if err != nil {
			difficulty = domain.DifficultyMedium
		}
		questions = append(questions, generation.GeneratedQuestion{
			Question:   question,
			Answer:     answer,
			Topic:      topic,
			Difficulty: difficulty,
		})
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no usable questions in response", generation.ErrInvalidResponse)
	}
	return questions, nil
}

func parseEvaluation(text string) (generation.Evaluation, error) {
	var resp evaluationResponse
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &resp); err != nil {
		return generation.Evaluation{}, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidResponse, err)
	}
	if resp.IsCorrect == nil {
		return generation.Evaluation{}, fmt.Errorf("%w: missing is_correct", generation.ErrInvalidResponse)
	}

	score := resp.Score
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return generation.Evaluation{
		IsCorrect: *resp.IsCorrect,
		Score:     score,
		Feedback:  strings.TrimSpace(resp.Feedback),
	}, nil
}
