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
	"github.com/phrazzld/prep-api/internal/generation"
	"github.com/phrazzld/prep-api/internal/platform/cache"
	"github.com/phrazzld/prep-api/internal/platform/logger"
	"github.com/phrazzld/prep-api/internal/platform/metrics"
	"github.com/phrazzld/prep-api/internal/redact"
	"github.com/phrazzld/prep-api/internal/store"
)

// CreateSessionInput describes a new practice session.
type CreateSessionInput struct {
	UserID      uuid.UUID
	Role        string
	Experience  string
	FocusAreas  []string
	Description string
}

// QuestionInput is a caller-supplied question.
type QuestionInput struct {
	Question   string
	Answer     string
	Topic      string
	Difficulty domain.Difficulty
}

// SessionResult is a session plus whether any of its new questions came
// from the fallback set.
type SessionResult struct {
	Session               *domain.Session
	GeneratedWithFallback bool
}

// SessionService manages practice sessions.
type SessionService interface {
	// Create stores a session with generated questions.
	Create(ctx context.Context, in CreateSessionInput) (*SessionResult, error)

	// List returns the user's sessions, most recently active first.
	List(ctx context.Context, userID uuid.UUID) ([]domain.Session, error)

	// Get returns one of the user's sessions.
	Get(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error)

	// Delete removes one of the user's sessions and its questions.
	Delete(ctx context.Context, userID, sessionID uuid.UUID) error

	// AddQuestions appends questions to a session. With no input, new
	// questions are generated, excluding those already present.
	AddQuestions(ctx context.Context, userID, sessionID uuid.UUID, questions []QuestionInput) (*SessionResult, error)
}

type sessionServiceImpl struct {
	db            *sqlx.DB
	sessions      store.SessionStore
	questions     store.QuestionStore
	provider      generation.Provider
	cache         cache.Cache
	metrics       metrics.Recorder
	questionCount int
	logger        *slog.Logger
	now           func() time.Time
}

// NewSessionService creates a SessionService. questionCount is the number
// of questions generated per request.
func NewSessionService(
	db *sqlx.DB,
	sessions store.SessionStore,
	questions store.QuestionStore,
	provider generation.Provider,
	dashboardCache cache.Cache,
	recorder metrics.Recorder,
	questionCount int,
	logger *slog.Logger,
) (SessionService, error) {
	if db == nil || sessions == nil || questions == nil {
		return nil, NewServiceError("session", "create_service", "db, sessions and questions are required", nil)
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
	return &sessionServiceImpl{
		db:            db,
		sessions:      sessions,
		questions:     questions,
		provider:      provider,
		cache:         orNoopCache(dashboardCache),
		metrics:       recorder,
		questionCount: questionCount,
		logger:        logger.With(slog.String("component", "session_service")),
		now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *sessionServiceImpl) Create(ctx context.Context, in CreateSessionInput) (*SessionResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := domain.NewSession(in.UserID, in.Role, in.Experience, in.FocusAreas, in.Description)
	if err != nil {
		return nil, err
	}

	questions, fallback := s.generate(ctx, generation.QuestionRequest{
		Role:       session.Role,
		Experience: session.Experience,
		FocusAreas: session.FocusAreas,
		Count:      s.questionCount,
	}, session.ID)
	session.AddQuestions(questions, s.now())

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.sessions.WithTx(tx).Create(ctx, session)
	})
	if err != nil {
		log.Error("failed to save session",
			slog.String("error", err.Error()),
			slog.String("user_id", in.UserID.String()))
		return nil, NewServiceError("session", "create", "failed to save session", err)
	}

	invalidateDashboard(ctx, s.cache, s.logger, in.UserID)

	log.Info("session created",
		slog.String("session_id", session.ID.String()),
		slog.Int("questions", len(session.Questions)),
		slog.Bool("fallback", fallback))
	return &SessionResult{Session: session, GeneratedWithFallback: fallback}, nil
}

func (s *sessionServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]domain.Session, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("session", "list", "failed to list sessions", err)
	}
	return sessions, nil
}

func (s *sessionServiceImpl) Get(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error) {
	return loadOwnedSession(ctx, s.sessions, userID, sessionID)
}

func (s *sessionServiceImpl) Delete(ctx context.Context, userID, sessionID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := loadOwnedSession(ctx, s.sessions, userID, sessionID)
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, len(session.Questions))
	for i := range session.Questions {
		ids[i] = session.Questions[i].ID
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := s.questions.WithTx(tx).DeleteByIDs(ctx, ids); err != nil {
			return err
		}
		return s.sessions.WithTx(tx).Delete(ctx, sessionID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionNotFound
		}
		log.Error("failed to delete session",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return NewServiceError("session", "delete", "failed to delete session", err)
	}

	invalidateDashboard(ctx, s.cache, s.logger, userID)
	return nil
}

func (s *sessionServiceImpl) AddQuestions(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	inputs []QuestionInput,
) (*SessionResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := loadOwnedSession(ctx, s.sessions, userID, sessionID)
	if err != nil {
		return nil, err
	}

	var (
		candidates []*domain.Question
		fallback   bool
	)
	if len(inputs) == 0 {
		existing := make([]string, len(session.Questions))
		for i := range session.Questions {
			existing[i] = session.Questions[i].Question
		}
		candidates, fallback = s.generate(ctx, generation.QuestionRequest{
			Role:       session.Role,
			Experience: session.Experience,
			FocusAreas: session.FocusAreas,
			Count:      s.questionCount,
			Exclude:    existing,
		}, session.ID)
	} else {
		for _, in := range inputs {
			q, err := domain.NewQuestion(session.ID, in.Question, in.Answer, in.Topic, in.Difficulty)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, q)
		}
	}

	fresh := make([]*domain.Question, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, q := range candidates {
		key := normalizeText(q.Question)
		if _, dup := seen[key]; dup || session.HasQuestionText(q.Question) {
			continue
		}
		seen[key] = struct{}{}
		fresh = append(fresh, q)
	}
	if len(fresh) == 0 {
		return &SessionResult{Session: session, GeneratedWithFallback: fallback}, nil
	}

	before := len(session.Questions)
	now := s.now()
	session.AddQuestions(fresh, now)
	added := session.Questions[before:]

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		sessions := s.sessions.WithTx(tx)
		if err := sessions.AddQuestions(ctx, added); err != nil {
			return err
		}
		return sessions.Touch(ctx, session.ID, now)
	})
	if err != nil {
		log.Error("failed to add questions",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, NewServiceError("session", "add_questions", "failed to save questions", err)
	}

	invalidateDashboard(ctx, s.cache, s.logger, userID)
	return &SessionResult{Session: session, GeneratedWithFallback: fallback}, nil
}

// generate asks the provider for questions and substitutes the fallback set
// when generation fails or yields nothing usable. The second result reports
// whether the fallback was used.
func (s *sessionServiceImpl) generate(
	ctx context.Context,
	req generation.QuestionRequest,
	sessionID uuid.UUID,
) ([]*domain.Question, bool) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	generated, err := s.provider.GenerateQuestions(ctx, req).Get()
	if err == nil {
		if questions := toQuestions(sessionID, generated, log); len(questions) > 0 {
			return questions, false
		}
		err = generation.ErrInvalidResponse
	}

	if !errors.Is(err, generation.ErrProviderUnavailable) {
		s.metrics.UpstreamFailure(metrics.OpQuestions)
	}
	s.metrics.GenerationFallback(metrics.OpQuestions)
	log.Warn("question generation failed, using fallback set", redact.ErrorAttr(err))

	return toQuestions(sessionID, generation.FallbackQuestions(req), log), true
}

func toQuestions(sessionID uuid.UUID, generated []generation.GeneratedQuestion, log *slog.Logger) []*domain.Question {
	out := make([]*domain.Question, 0, len(generated))
	for _, g := range generated {
		q, err := domain.NewQuestion(sessionID, g.Question, g.Answer, g.Topic, g.Difficulty)
		if err != nil {
			log.Debug("skipping unusable generated question", slog.String("error", err.Error()))
			continue
		}
		out = append(out, q)
	}
	return out
}

// loadOwnedSession returns ErrSessionNotFound for sessions that do not
// exist and for sessions owned by someone else.
func loadOwnedSession(
	ctx context.Context,
	sessions store.SessionStore,
	userID, sessionID uuid.UUID,
) (*domain.Session, error) {
	session, err := sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, NewServiceError("session", "get", "failed to load session", err)
	}
	if !session.OwnedBy(userID) {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
