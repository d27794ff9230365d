package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/prep-api/internal/domain"
	"github.com/phrazzld/prep-api/internal/platform/logger"
	"github.com/phrazzld/prep-api/internal/store"
)

const questionColumns = `id, session_id, position, question, answer, user_answer, is_correct, is_pinned,
	notes, concept_explanation, topic, difficulty, created_at, updated_at`

type questionRow struct {
	ID                 uuid.UUID    `db:"id"`
	SessionID          uuid.UUID    `db:"session_id"`
	Position           int          `db:"position"`
	Question           string       `db:"question"`
	Answer             string       `db:"answer"`
	UserAnswer         string       `db:"user_answer"`
	IsCorrect          sql.NullBool `db:"is_correct"`
	IsPinned           bool         `db:"is_pinned"`
	Notes              string       `db:"notes"`
	ConceptExplanation string       `db:"concept_explanation"`
	Topic              string       `db:"topic"`
	Difficulty         string       `db:"difficulty"`
	CreatedAt          time.Time    `db:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at"`
}

func (r questionRow) toDomain() domain.Question {
	q := domain.Question{
		ID:                 r.ID,
		SessionID:          r.SessionID,
		Position:           r.Position,
		Question:           r.Question,
		Answer:             r.Answer,
		UserAnswer:         r.UserAnswer,
		IsPinned:           r.IsPinned,
		Notes:              r.Notes,
		ConceptExplanation: r.ConceptExplanation,
		Topic:              r.Topic,
		Difficulty:         domain.Difficulty(r.Difficulty),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.IsCorrect.Valid {
		correct := r.IsCorrect.Bool
		q.IsCorrect = &correct
	}
	return q
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

// buildMultiRowInsert returns an INSERT with one $n placeholder group per row.
func buildMultiRowInsert(table string, columns []string, rows int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := range columns {
			if c > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", n)
			n++
		}
		b.WriteByte(')')
	}
	return b.String()
}

var questionInsertColumns = []string{
	"id", "session_id", "position", "question", "answer", "user_answer", "is_correct", "is_pinned",
	"notes", "concept_explanation", "topic", "difficulty", "created_at", "updated_at",
}

func insertQuestions(ctx context.Context, db store.DBTX, questions []domain.Question) error {
	if len(questions) == 0 {
		return nil
	}
	args := make([]any, 0, len(questions)*len(questionInsertColumns))
	for _, q := range questions {
		args = append(args,
			q.ID, q.SessionID, q.Position, q.Question, q.Answer, q.UserAnswer, nullBool(q.IsCorrect), q.IsPinned,
			q.Notes, q.ConceptExplanation, q.Topic, string(q.Difficulty), q.CreatedAt, q.UpdatedAt,
		)
	}
	query := buildMultiRowInsert("questions", questionInsertColumns, len(questions))
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert questions: %w", MapError(err))
	}
	return nil
}

// PostgresQuestionStore implements store.QuestionStore.
type PostgresQuestionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuestionStore creates a question store.
func NewPostgresQuestionStore(db store.DBTX, logger *slog.Logger) *PostgresQuestionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresQuestionStore{
		db:     db,
		logger: logger.With(slog.String("component", "question_store")),
	}
}

var _ store.QuestionStore = (*PostgresQuestionStore)(nil)

// WithTx implements store.QuestionStore.
func (s *PostgresQuestionStore) WithTx(tx *sqlx.Tx) store.QuestionStore {
	return &PostgresQuestionStore{db: tx, logger: s.logger}
}

// GetByID implements store.QuestionStore.
func (s *PostgresQuestionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	var row questionRow
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrQuestionNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get question",
			slog.String("error", err.Error()),
			slog.String("question_id", id.String()))
		return nil, store.NewStoreError("question", "get", "select failed", MapError(err))
	}
	q := row.toDomain()
	return &q, nil
}

// Update implements store.QuestionStore.
func (s *PostgresQuestionStore) Update(ctx context.Context, q *domain.Question) error {
	query := `
		UPDATE questions
		SET user_answer = $2, is_correct = $3, is_pinned = $4, notes = $5,
		    concept_explanation = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		q.ID,
		q.UserAnswer,
		nullBool(q.IsCorrect),
		q.IsPinned,
		q.Notes,
		q.ConceptExplanation,
		q.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update question",
			slog.String("error", err.Error()),
			slog.String("question_id", q.ID.String()))
		return store.NewStoreError("question", "update", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrQuestionNotFound)
}

// DeleteByIDs implements store.QuestionStore.
func (s *PostgresQuestionStore) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`DELETE FROM questions WHERE id IN (?)`, ids)
	if err != nil {
		return 0, fmt.Errorf("build delete query: %w", err)
	}
	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, store.NewStoreError("question", "delete", "delete failed", MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("questions deleted", slog.Int64("count", n))
	return n, nil
}
