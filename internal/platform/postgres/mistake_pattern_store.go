package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/prep-api/internal/domain"
	"github.com/phrazzld/prep-api/internal/platform/logger"
	"github.com/phrazzld/prep-api/internal/store"
)

const mistakePatternColumns = `id, user_id, concept_fingerprint, topic, difficulty, mistake_count, correct_count,
	consecutive_correct, last_mistake_at, last_correct_at, next_review_at, review_interval, ease_factor,
	related_questions, common_errors, improvement_score, is_improving, priority, mastery_level,
	created_at, updated_at`

// priorityRank orders High > Medium > Low in SQL.
const priorityRank = `CASE priority WHEN 'High' THEN 3 WHEN 'Medium' THEN 2 ELSE 1 END`

type mistakePatternRow struct {
	ID                 uuid.UUID                         `db:"id"`
	UserID             uuid.UUID                         `db:"user_id"`
	ConceptFingerprint string                            `db:"concept_fingerprint"`
	Topic              string                            `db:"topic"`
	Difficulty         string                            `db:"difficulty"`
	MistakeCount       int                               `db:"mistake_count"`
	CorrectCount       int                               `db:"correct_count"`
	ConsecutiveCorrect int                               `db:"consecutive_correct"`
	LastMistakeAt      sql.NullTime                      `db:"last_mistake_at"`
	LastCorrectAt      sql.NullTime                      `db:"last_correct_at"`
	NextReviewAt       time.Time                         `db:"next_review_at"`
	ReviewInterval     int                               `db:"review_interval"`
	EaseFactor         float64                           `db:"ease_factor"`
	RelatedQuestions   jsonColumn[domain.AttemptHistory] `db:"related_questions"`
	CommonErrors       jsonColumn[[]domain.CommonError]  `db:"common_errors"`
	ImprovementScore   int                               `db:"improvement_score"`
	IsImproving        bool                              `db:"is_improving"`
	Priority           string                            `db:"priority"`
	MasteryLevel       string                            `db:"mastery_level"`
	CreatedAt          time.Time                         `db:"created_at"`
	UpdatedAt          time.Time                         `db:"updated_at"`
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func (r mistakePatternRow) toDomain() domain.MistakePattern {
	commonErrors := r.CommonErrors.V
	if commonErrors == nil {
		commonErrors = []domain.CommonError{}
	}
	return domain.MistakePattern{
		ID:                 r.ID,
		UserID:             r.UserID,
		ConceptFingerprint: r.ConceptFingerprint,
		Topic:              r.Topic,
		Difficulty:         domain.Difficulty(r.Difficulty),
		MistakeCount:       r.MistakeCount,
		CorrectCount:       r.CorrectCount,
		ConsecutiveCorrect: r.ConsecutiveCorrect,
		LastMistakeAt:      timePtr(r.LastMistakeAt),
		LastCorrectAt:      timePtr(r.LastCorrectAt),
		NextReviewAt:       r.NextReviewAt,
		ReviewInterval:     r.ReviewInterval,
		EaseFactor:         r.EaseFactor,
		RelatedQuestions:   r.RelatedQuestions.V,
		CommonErrors:       commonErrors,
		ImprovementScore:   r.ImprovementScore,
		IsImproving:        r.IsImproving,
		Priority:           domain.Priority(r.Priority),
		MasteryLevel:       domain.MasteryLevel(r.MasteryLevel),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func mistakePatternArgs(p *domain.MistakePattern) []any {
	commonErrors := p.CommonErrors
	if commonErrors == nil {
		commonErrors = []domain.CommonError{}
	}
	return []any{
		p.ID,
		p.UserID,
		p.ConceptFingerprint,
		p.Topic,
		string(p.Difficulty),
		p.MistakeCount,
		p.CorrectCount,
		p.ConsecutiveCorrect,
		nullTime(p.LastMistakeAt),
		nullTime(p.LastCorrectAt),
		p.NextReviewAt,
		p.ReviewInterval,
		p.EaseFactor,
		jsonColumn[domain.AttemptHistory]{V: p.RelatedQuestions},
		jsonColumn[[]domain.CommonError]{V: commonErrors},
		p.ImprovementScore,
		p.IsImproving,
		string(p.Priority),
		string(p.MasteryLevel),
		p.CreatedAt,
		p.UpdatedAt,
	}
}

// PostgresMistakePatternStore implements store.MistakePatternStore.
type PostgresMistakePatternStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMistakePatternStore creates a mistake pattern store.
func NewPostgresMistakePatternStore(db store.DBTX, logger *slog.Logger) *PostgresMistakePatternStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresMistakePatternStore{
		db:     db,
		logger: logger.With(slog.String("component", "mistake_pattern_store")),
	}
}

var _ store.MistakePatternStore = (*PostgresMistakePatternStore)(nil)

// WithTx implements store.MistakePatternStore.
func (s *PostgresMistakePatternStore) WithTx(tx *sqlx.Tx) store.MistakePatternStore {
	return &PostgresMistakePatternStore{db: tx, logger: s.logger}
}

// FindByFingerprint implements store.MistakePatternStore.
func (s *PostgresMistakePatternStore) FindByFingerprint(
	ctx context.Context,
	userID uuid.UUID,
	fingerprint string,
) (*domain.MistakePattern, error) {
	var row mistakePatternRow
	query := `SELECT ` + mistakePatternColumns + `
		FROM mistake_patterns
		WHERE user_id = $1 AND concept_fingerprint = $2`
	if err := s.db.GetContext(ctx, &row, query, userID, fingerprint); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMistakePatternNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to find mistake pattern",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("mistake_pattern", "get", "select failed", MapError(err))
	}
	p := row.toDomain()
	return &p, nil
}

// FindOrCreate implements store.MistakePatternStore. The insert is a no-op
// when the (user, fingerprint) row already exists, so concurrent first
// attempts converge on one record.
func (s *PostgresMistakePatternStore) FindOrCreate(
	ctx context.Context,
	userID uuid.UUID,
	fingerprint, topic string,
	difficulty domain.Difficulty,
	now time.Time,
) (*domain.MistakePattern, error) {
	fresh, err := domain.NewMistakePattern(userID, fingerprint, topic, difficulty, now)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO mistake_patterns (` + mistakePatternColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (user_id, concept_fingerprint) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query, mistakePatternArgs(fresh)...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert mistake pattern",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("mistake_pattern", "create", "insert failed", MapError(err))
	}
	if n, err := result.RowsAffected(); err == nil && n == 1 {
		logger.FromContextOrDefault(ctx, s.logger).Debug("mistake pattern created",
			slog.String("pattern_id", fresh.ID.String()),
			slog.String("fingerprint", fingerprint))
	}

	return s.FindByFingerprint(ctx, userID, fingerprint)
}

// Save implements store.MistakePatternStore.
func (s *PostgresMistakePatternStore) Save(ctx context.Context, p *domain.MistakePattern) error {
	if err := p.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE mistake_patterns
		SET topic = $4, difficulty = $5, mistake_count = $6, correct_count = $7,
		    consecutive_correct = $8, last_mistake_at = $9, last_correct_at = $10,
		    next_review_at = $11, review_interval = $12, ease_factor = $13,
		    related_questions = $14, common_errors = $15, improvement_score = $16,
		    is_improving = $17, priority = $18, mastery_level = $19, updated_at = $20
		WHERE id = $1 AND user_id = $2 AND concept_fingerprint = $3
	`
	// $1..$19 follow the insert order; created_at is never updated.
	all := mistakePatternArgs(p)
	args := append(all[:19:19], p.UpdatedAt)
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save mistake pattern",
			slog.String("error", err.Error()),
			slog.String("pattern_id", p.ID.String()))
		return store.NewStoreError("mistake_pattern", "update", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrMistakePatternNotFound)
}

func (s *PostgresMistakePatternStore) list(
	ctx context.Context,
	op string,
	query string,
	args ...any,
) ([]domain.MistakePattern, error) {
	var rows []mistakePatternRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list mistake patterns",
			slog.String("error", err.Error()),
			slog.String("operation", op))
		return nil, store.NewStoreError("mistake_pattern", op, "select failed", MapError(err))
	}
	patterns := make([]domain.MistakePattern, len(rows))
	for i, r := range rows {
		patterns[i] = r.toDomain()
	}
	return patterns, nil
}

// ListWeak implements store.MistakePatternStore.
func (s *PostgresMistakePatternStore) ListWeak(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]domain.MistakePattern, error) {
	query := `SELECT ` + mistakePatternColumns + `
		FROM mistake_patterns
		WHERE user_id = $1
		ORDER BY ` + priorityRank + ` DESC, next_review_at ASC, mistake_count DESC, last_mistake_at DESC NULLS LAST
		LIMIT $2`
	return s.list(ctx, "list_weak", query, userID, limit)
}

// ListDue implements store.MistakePatternStore.
func (s *PostgresMistakePatternStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]domain.MistakePattern, error) {
	query := `SELECT ` + mistakePatternColumns + `
		FROM mistake_patterns
		WHERE user_id = $1 AND next_review_at <= $2 AND mastery_level <> 'Mastered'
		ORDER BY ` + priorityRank + ` DESC, next_review_at ASC
		LIMIT $3`
	return s.list(ctx, "list_due", query, userID, now, limit)
}

// ListByUser implements store.MistakePatternStore.
func (s *PostgresMistakePatternStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.MistakePattern, error) {
	query := `SELECT ` + mistakePatternColumns + `
		FROM mistake_patterns
		WHERE user_id = $1
		ORDER BY created_at ASC`
	return s.list(ctx, "list", query, userID)
}
