package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/prep-api/internal/domain"
	"github.com/phrazzld/prep-api/internal/domain/srs"
	"github.com/phrazzld/prep-api/internal/generation"
	"github.com/phrazzld/prep-api/internal/platform/cache"
	"github.com/phrazzld/prep-api/internal/platform/logger"
	"github.com/phrazzld/prep-api/internal/platform/metrics"
	"github.com/phrazzld/prep-api/internal/redact"
	"github.com/phrazzld/prep-api/internal/store"
)

// AnswerResult is the outcome of a graded answer submission.
type AnswerResult struct {
	Question   *domain.Question
	Evaluation generation.Evaluation
	Concept    *domain.MistakePattern
}

// ExplanationResult carries a concept explanation. Fallback explanations
// are not stored, so a later request can try generation again.
type ExplanationResult struct {
	Question    *domain.Question
	Explanation string
	Fallback    bool
}

// QuestionService handles actions on individual questions.
type QuestionService interface {
	// TogglePin flips the question's pinned flag.
	TogglePin(ctx context.Context, userID, questionID uuid.UUID) (*domain.Question, error)

	// UpdateNote replaces the question's notes.
	UpdateNote(ctx context.Context, userID, questionID uuid.UUID, note string) (*domain.Question, error)

	// SubmitAnswer grades userAnswer, stores it and records the attempt
	// against the question's concept.
	SubmitAnswer(ctx context.Context, userID, questionID uuid.UUID, userAnswer string) (*AnswerResult, error)

	// Explain returns the stored explanation, a newly generated one, or a
	// fallback built from the reference answer.
	Explain(ctx context.Context, userID, questionID uuid.UUID) (*ExplanationResult, error)
}

type questionServiceImpl struct {
	db        *sqlx.DB
	sessions  store.SessionStore
	questions store.QuestionStore
	patterns  store.MistakePatternStore
	provider  generation.Provider
	recorder  *attemptRecorder
	cache     cache.Cache
	metrics   metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewQuestionService creates a QuestionService.
func NewQuestionService(
	db *sqlx.DB,
	sessions store.SessionStore,
	questions store.QuestionStore,
	patterns store.MistakePatternStore,
	provider generation.Provider,
	srsService srs.Service,
	dashboardCache cache.Cache,
	recorder metrics.Recorder,
	logger *slog.Logger,
) (QuestionService, error) {
	if db == nil || sessions == nil || questions == nil || patterns == nil || srsService == nil {
		return nil, NewServiceError("question", "create_service", "db, stores and srs service are required", nil)
	}
	if provider == nil {
		provider = generation.Unavailable{}
	}
	if recorder == nil {
		recorder = metrics.Discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &questionServiceImpl{
		db:        db,
		sessions:  sessions,
		questions: questions,
		patterns:  patterns,
		provider:  provider,
		recorder:  &attemptRecorder{srs: srsService, metrics: recorder},
		cache:     orNoopCache(dashboardCache),
		metrics:   recorder,
		logger:    logger.With(slog.String("component", "question_service")),
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *questionServiceImpl) TogglePin(ctx context.Context, userID, questionID uuid.UUID) (*domain.Question, error) {
	return s.mutate(ctx, userID, questionID, "toggle_pin", func(q *domain.Question, now time.Time) {
		q.TogglePin(now)
	})
}

func (s *questionServiceImpl) UpdateNote(
	ctx context.Context,
	userID, questionID uuid.UUID,
	note string,
) (*domain.Question, error) {
	return s.mutate(ctx, userID, questionID, "update_note", func(q *domain.Question, now time.Time) {
		q.SetNotes(note, now)
	})
}

func (s *questionServiceImpl) mutate(
	ctx context.Context,
	userID, questionID uuid.UUID,
	operation string,
	apply func(q *domain.Question, now time.Time),
) (*domain.Question, error) {
	q, err := s.loadOwned(ctx, userID, questionID)
	if err != nil {
		return nil, err
	}

	apply(q, s.now())
	if err := s.questions.Update(ctx, q); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, NewServiceError("question", operation, "failed to update question", err)
	}

	invalidateDashboard(ctx, s.cache, s.logger, userID)
	return q, nil
}

func (s *questionServiceImpl) SubmitAnswer(
	ctx context.Context,
	userID, questionID uuid.UUID,
	userAnswer string,
) (*AnswerResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	userAnswer = strings.TrimSpace(userAnswer)
	if userAnswer == "" {
		return nil, domain.NewValidationError("user_answer", "cannot be empty", domain.ErrEmptyContent)
	}

	q, err := s.loadOwned(ctx, userID, questionID)
	if err != nil {
		return nil, err
	}

	evaluation, err := s.provider.EvaluateAnswer(ctx, q.Question, q.Answer, userAnswer).Get()
	if err != nil {
		if !errors.Is(err, generation.ErrProviderUnavailable) {
			s.metrics.UpstreamFailure(metrics.OpEvaluation)
		}
		log.Warn("answer evaluation failed",
			redact.ErrorAttr(err),
			slog.String("question_id", questionID.String()))
		return nil, ErrEvaluationUnavailable
	}

	now := s.now()
	q.RecordAnswer(userAnswer, evaluation.IsCorrect, now)

	var concept *domain.MistakePattern
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.questions.WithTx(tx).Update(ctx, q); err != nil {
			return err
		}
		if err := s.sessions.WithTx(tx).Touch(ctx, q.SessionID, now); err != nil {
			return err
		}
		var err error
		concept, err = s.recorder.record(ctx, s.patterns.WithTx(tx), AttemptInput{
			UserID:         userID,
			QuestionText:   q.Question,
			Topic:          q.Topic,
			Difficulty:     q.Difficulty,
			IsCorrect:      evaluation.IsCorrect,
			QuestionID:     &q.ID,
			UserAnswer:     userAnswer,
			ExpectedAnswer: q.Answer,
		}, now)
		return err
	})
	if err != nil {
		log.Error("failed to store answer",
			slog.String("error", err.Error()),
			slog.String("question_id", questionID.String()))
		return nil, NewServiceError("question", "submit_answer", "failed to store answer", err)
	}

	invalidateDashboard(ctx, s.cache, s.logger, userID)
	return &AnswerResult{Question: q, Evaluation: evaluation, Concept: concept}, nil
}

func (s *questionServiceImpl) Explain(
	ctx context.Context,
	userID, questionID uuid.UUID,
) (*ExplanationResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	q, err := s.loadOwned(ctx, userID, questionID)
	if err != nil {
		return nil, err
	}
	if q.ConceptExplanation != "" {
		return &ExplanationResult{Question: q, Explanation: q.ConceptExplanation}, nil
	}

	explanation, err := s.provider.GenerateExplanation(ctx, q.Question, q.Answer).Get()
	if err == nil && strings.TrimSpace(explanation) == "" {
		err = generation.ErrInvalidResponse
	}
	if err != nil {
		if !errors.Is(err, generation.ErrProviderUnavailable) {
			s.metrics.UpstreamFailure(metrics.OpExplanation)
		}
		s.metrics.GenerationFallback(metrics.OpExplanation)
		log.Warn("explanation generation failed, using fallback", redact.ErrorAttr(err))
		return &ExplanationResult{
			Question:    q,
			Explanation: generation.FallbackExplanation(q.Question, q.Answer),
			Fallback:    true,
		}, nil
	}

	q.SetExplanation(explanation, s.now())
	if err := s.questions.Update(ctx, q); err != nil {
		return nil, NewServiceError("question", "explain", "failed to store explanation", err)
	}
	return &ExplanationResult{Question: q, Explanation: explanation}, nil
}

// loadOwned returns ErrQuestionNotFound for missing questions and for
// questions in another user's session.
func (s *questionServiceImpl) loadOwned(ctx context.Context, userID, questionID uuid.UUID) (*domain.Question, error) {
	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, NewServiceError("question", "get", "failed to load question", err)
	}

	if _, err := loadOwnedSession(ctx, s.sessions, userID, q.SessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}
