package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/prep-api/internal/domain"
	"github.com/phrazzld/prep-api/internal/domain/srs"
	"github.com/phrazzld/prep-api/internal/platform/cache"
	"github.com/phrazzld/prep-api/internal/platform/logger"
	"github.com/phrazzld/prep-api/internal/platform/metrics"
	"github.com/phrazzld/prep-api/internal/store"
)

// List limits for the weak and due views.
const (
	DefaultListLimit = 10
	MaxListLimit     = 50
)

// AttemptInput is one graded answer to record against a concept.
type AttemptInput struct {
	UserID       uuid.UUID
	QuestionText string
	Topic        string
	Difficulty   domain.Difficulty
	IsCorrect    bool

	// QuestionID links the attempt to a stored question when there is one.
	QuestionID *uuid.UUID

	// UserAnswer and ExpectedAnswer are only used to classify a miss.
	UserAnswer     string
	ExpectedAnswer string
}

func (in AttemptInput) validate() error {
	if in.UserID == uuid.Nil {
		return domain.NewValidationError("user_id", "cannot be empty", domain.ErrInvalidID)
	}
	if strings.TrimSpace(in.QuestionText) == "" {
		return domain.NewValidationError("question_text", "cannot be empty", domain.ErrEmptyContent)
	}
	if strings.TrimSpace(in.Topic) == "" {
		return domain.NewValidationError("topic", "cannot be empty", domain.ErrEmptyContent)
	}
	if in.Difficulty != "" && !in.Difficulty.Valid() {
		return domain.NewValidationError("difficulty", "must be Easy, Medium or Hard", domain.ErrInvalidEnum)
	}
	return nil
}

// MistakeStats summarises a user's concept records.
type MistakeStats struct {
	TotalConcepts           int                         `json:"total_concepts"`
	TotalMistakes           int                         `json:"total_mistakes"`
	TotalCorrect            int                         `json:"total_correct"`
	DueForReview            int                         `json:"due_for_review"`
	ImprovingConcepts       int                         `json:"improving_concepts"`
	AverageImprovementScore int                         `json:"average_improvement_score"`
	ByMasteryLevel          map[domain.MasteryLevel]int `json:"by_mastery_level"`
	ByPriority              map[domain.Priority]int     `json:"by_priority"`
}

// MistakeService records attempts and reads concept records.
type MistakeService interface {
	// RecordAttempt applies one attempt to the user's record for the
	// question's concept, creating the record on first sight.
	RecordAttempt(ctx context.Context, in AttemptInput) (*domain.MistakePattern, error)

	// WeakConcepts lists the records most in need of work.
	WeakConcepts(ctx context.Context, userID uuid.UUID, limit int) ([]domain.MistakePattern, error)

	// DueForReview lists unmastered records whose review date has passed.
	DueForReview(ctx context.Context, userID uuid.UUID, limit int) ([]domain.MistakePattern, error)

	// Stats summarises every record the user owns.
	Stats(ctx context.Context, userID uuid.UUID) (*MistakeStats, error)
}

// attemptRecorder is the find-apply-save sequence shared by direct attempt
// recording and answer submission.
type attemptRecorder struct {
	srs     srs.Service
	metrics metrics.Recorder
}

func (r *attemptRecorder) record(
	ctx context.Context,
	patterns store.MistakePatternStore,
	in AttemptInput,
	now time.Time,
) (*domain.MistakePattern, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = domain.DifficultyMedium
	}
	topic := strings.TrimSpace(in.Topic)

	fingerprint := srs.Fingerprint(in.QuestionText, topic)
	prior, err := patterns.FindOrCreate(ctx, in.UserID, fingerprint, topic, difficulty, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load concept record: %w", err)
	}

	next, err := r.srs.ApplyAttempt(prior, srs.Attempt{
		QuestionID:     in.QuestionID,
		IsCorrect:      in.IsCorrect,
		UserAnswer:     in.UserAnswer,
		ExpectedAnswer: in.ExpectedAnswer,
	}, now)
	if err != nil {
		return nil, fmt.Errorf("failed to apply attempt: %w", err)
	}

	if err := patterns.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save concept record: %w", err)
	}

	r.metrics.AttemptRecorded(in.IsCorrect)
	return next, nil
}

type mistakeServiceImpl struct {
	db       *sqlx.DB
	patterns store.MistakePatternStore
	recorder *attemptRecorder
	cache    cache.Cache
	logger   *slog.Logger
	now      func() time.Time
}

// NewMistakeService creates a MistakeService. A nil recorder discards metrics
// and a nil cache disables caching.
func NewMistakeService(
	db *sqlx.DB,
	patterns store.MistakePatternStore,
	srsService srs.Service,
	dashboardCache cache.Cache,
	recorder metrics.Recorder,
	logger *slog.Logger,
) (MistakeService, error) {
	if db == nil || patterns == nil || srsService == nil {
		return nil, NewServiceError("mistake", "create_service", "db, patterns and srs service are required", nil)
	}
	if recorder == nil {
		recorder = metrics.Discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &mistakeServiceImpl{
		db:       db,
		patterns: patterns,
		recorder: &attemptRecorder{srs: srsService, metrics: recorder},
		cache:    orNoopCache(dashboardCache),
		logger:   logger.With(slog.String("component", "mistake_service")),
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *mistakeServiceImpl) RecordAttempt(ctx context.Context, in AttemptInput) (*domain.MistakePattern, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now()

	var recorded *domain.MistakePattern
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		var err error
		recorded, err = s.recorder.record(ctx, s.patterns.WithTx(tx), in, now)
		return err
	})
	if err != nil {
		log.Error("failed to record attempt",
			slog.String("error", err.Error()),
			slog.String("user_id", in.UserID.String()))
		return nil, NewServiceError("mistake", "record_attempt", "failed to record attempt", err)
	}

	invalidateDashboard(ctx, s.cache, s.logger, in.UserID)

	log.Debug("attempt recorded",
		slog.String("user_id", in.UserID.String()),
		slog.String("concept", recorded.ConceptFingerprint),
		slog.Bool("correct", in.IsCorrect),
		slog.String("mastery", string(recorded.MasteryLevel)))
	return recorded, nil
}

func (s *mistakeServiceImpl) WeakConcepts(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]domain.MistakePattern, error) {
	patterns, err := s.patterns.ListWeak(ctx, userID, clampLimit(limit))
	if err != nil {
		return nil, NewServiceError("mistake", "weak_concepts", "failed to list weak concepts", err)
	}
	return patterns, nil
}

func (s *mistakeServiceImpl) DueForReview(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]domain.MistakePattern, error) {
	patterns, err := s.patterns.ListDue(ctx, userID, s.now(), clampLimit(limit))
	if err != nil {
		return nil, NewServiceError("mistake", "due_for_review", "failed to list due concepts", err)
	}
	return patterns, nil
}

func (s *mistakeServiceImpl) Stats(ctx context.Context, userID uuid.UUID) (*MistakeStats, error) {
	patterns, err := s.patterns.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("mistake", "stats", "failed to list concepts", err)
	}
	return summarizePatterns(patterns, s.now()), nil
}

func summarizePatterns(patterns []domain.MistakePattern, now time.Time) *MistakeStats {
	stats := &MistakeStats{
		TotalConcepts:  len(patterns),
		ByMasteryLevel: make(map[domain.MasteryLevel]int),
		ByPriority:     make(map[domain.Priority]int),
	}
	improvementTotal := 0
	for i := range patterns {
		p := &patterns[i]
		stats.TotalMistakes += p.MistakeCount
		stats.TotalCorrect += p.CorrectCount
		stats.ByMasteryLevel[p.MasteryLevel]++
		stats.ByPriority[p.Priority]++
		if p.IsDue(now) && p.MasteryLevel != domain.MasteryMastered {
			stats.DueForReview++
		}
		if p.IsImproving {
			stats.ImprovingConcepts++
		}
		improvementTotal += p.ImprovementScore
	}
	if len(patterns) > 0 {
		stats.AverageImprovementScore = int(float64(improvementTotal)/float64(len(patterns)) + 0.5)
	}
	return stats
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
