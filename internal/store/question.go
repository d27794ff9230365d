package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/prep-api/internal/domain"
)

// QuestionStore persists individual questions.
type QuestionStore interface {
	// GetByID returns ErrQuestionNotFound if the question does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error)

	// Update saves the mutable fields: pin, notes, answer, grade and
	// explanation. Returns ErrQuestionNotFound if the question does not exist.
	Update(ctx context.Context, question *domain.Question) error

	// DeleteByIDs removes every listed question and reports how many were
	// deleted.
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)

	WithTx(tx *sqlx.Tx) QuestionStore
}
