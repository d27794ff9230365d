package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/prep-api/internal/domain"
)

// SessionStore persists practice sessions together with their questions.
type SessionStore interface {
	// Create saves the session and every question in session.Questions.
	Create(ctx context.Context, session *domain.Session) error

	// GetByID returns the session with its questions in insertion order.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// ListByUser returns the user's sessions, most recently updated first,
	// with questions populated.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Session, error)

	// AddQuestions inserts questions, whose SessionID and Position are
	// already assigned.
	AddQuestions(ctx context.Context, questions []domain.Question) error

	// Touch sets updated_at. Returns ErrSessionNotFound if the session does
	// not exist.
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error

	// Delete removes the session and cascades to its questions.
	// Returns ErrSessionNotFound if the session does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	WithTx(tx *sqlx.Tx) SessionStore
}
