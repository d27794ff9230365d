package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/prep-api/internal/domain"
	"github.com/phrazzld/prep-api/internal/platform/logger"
	"github.com/phrazzld/prep-api/internal/store"
)

const sessionColumns = `id, user_id, role, experience, focus_areas, description, created_at, updated_at`

type sessionRow struct {
	ID          uuid.UUID            `db:"id"`
	UserID      uuid.UUID            `db:"user_id"`
	Role        string               `db:"role"`
	Experience  string               `db:"experience"`
	FocusAreas  jsonColumn[[]string] `db:"focus_areas"`
	Description string               `db:"description"`
	CreatedAt   time.Time            `db:"created_at"`
	UpdatedAt   time.Time            `db:"updated_at"`
}

func (r sessionRow) toDomain() domain.Session {
	areas := r.FocusAreas.V
	if areas == nil {
		areas = []string{}
	}
	return domain.Session{
		ID:          r.ID,
		UserID:      r.UserID,
		Role:        r.Role,
		Experience:  r.Experience,
		FocusAreas:  areas,
		Description: r.Description,
		Questions:   []domain.Question{},
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// PostgresSessionStore implements store.SessionStore.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a session store.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

var _ store.SessionStore = (*PostgresSessionStore)(nil)

// WithTx implements store.SessionStore.
func (s *PostgresSessionStore) WithTx(tx *sqlx.Tx) store.SessionStore {
	return &PostgresSessionStore{db: tx, logger: s.logger}
}

// Create implements store.SessionStore. Run it inside a transaction so the
// session and its questions are written together.
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.Role,
		session.Experience,
		jsonColumn[[]string]{V: session.FocusAreas},
		session.Description,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return store.NewStoreError("session", "create", "insert failed", MapError(err))
	}

	if err := insertQuestions(ctx, s.db, session.Questions); err != nil {
		log.Error("failed to create session questions",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return store.NewStoreError("session", "create", "question insert failed", err)
	}

	log.Info("session created",
		slog.String("session_id", session.ID.String()),
		slog.Int("question_count", len(session.Questions)))
	return nil
}

// GetByID implements store.SessionStore.
func (s *PostgresSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var row sessionRow
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, store.NewStoreError("session", "get", "select failed", MapError(err))
	}

	session := row.toDomain()
	if err := s.attachQuestions(ctx, []*domain.Session{&session}); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByUser implements store.SessionStore.
func (s *PostgresSessionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Session, error) {
	var rows []sessionRow
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = $1 ORDER BY updated_at DESC`
	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list sessions",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("session", "list", "select failed", MapError(err))
	}

	sessions := make([]domain.Session, len(rows))
	ptrs := make([]*domain.Session, len(rows))
	for i, r := range rows {
		sessions[i] = r.toDomain()
		ptrs[i] = &sessions[i]
	}
	if err := s.attachQuestions(ctx, ptrs); err != nil {
		return nil, err
	}
	return sessions, nil
}

// attachQuestions loads the questions of every session in one query.
func (s *PostgresSessionStore) attachQuestions(ctx context.Context, sessions []*domain.Session) error {
	if len(sessions) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(sessions))
	byID := make(map[uuid.UUID]*domain.Session, len(sessions))
	for i, sess := range sessions {
		ids[i] = sess.ID
		byID[sess.ID] = sess
	}

	query, args, err := sqlx.In(
		`SELECT `+questionColumns+` FROM questions WHERE session_id IN (?) ORDER BY position ASC, created_at ASC`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("build question query: %w", err)
	}

	var rows []questionRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return store.NewStoreError("question", "list", "select failed", MapError(err))
	}

	for _, r := range rows {
		if sess, ok := byID[r.SessionID]; ok {
			sess.Questions = append(sess.Questions, r.toDomain())
		}
	}
	return nil
}

// AddQuestions implements store.SessionStore.
func (s *PostgresSessionStore) AddQuestions(ctx context.Context, questions []domain.Question) error {
	if err := insertQuestions(ctx, s.db, questions); err != nil {
		return store.NewStoreError("question", "create", "insert failed", err)
	}
	return nil
}

// Touch implements store.SessionStore.
func (s *PostgresSessionStore) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `UPDATE sessions SET updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return store.NewStoreError("session", "touch", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrSessionNotFound)
}

// Delete implements store.SessionStore.
func (s *PostgresSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return store.NewStoreError("session", "delete", "delete failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrSessionNotFound); err != nil {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("session deleted", slog.String("session_id", id.String()))
	return nil
}
