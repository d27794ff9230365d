package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/prep-api/internal/domain"
)

// MistakePatternStore persists concept records. (user, fingerprint) is
// unique.
type MistakePatternStore interface {
	// FindByFingerprint returns ErrMistakePatternNotFound if the user has no
	// record for fingerprint.
	FindByFingerprint(ctx context.Context, userID uuid.UUID, fingerprint string) (*domain.MistakePattern, error)

	// FindOrCreate returns the user's record for fingerprint, creating one
	// with zeroed counters if none exists. Concurrent callers receive the
	// same record.
	FindOrCreate(
		ctx context.Context,
		userID uuid.UUID,
		fingerprint, topic string,
		difficulty domain.Difficulty,
		now time.Time,
	) (*domain.MistakePattern, error)

	// Save writes every field of an existing record.
	// Returns ErrMistakePatternNotFound if the record does not exist.
	Save(ctx context.Context, pattern *domain.MistakePattern) error

	// ListWeak orders by priority desc, next review asc, mistake count desc,
	// last mistake desc.
	ListWeak(ctx context.Context, userID uuid.UUID, limit int) ([]domain.MistakePattern, error)

	// ListDue returns records due at now that are not Mastered, ordered by
	// priority desc then next review asc.
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]domain.MistakePattern, error)

	// ListByUser returns every record of the user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.MistakePattern, error)

	WithTx(tx *sqlx.Tx) MistakePatternStore
}
