package service

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/prep-api/internal/domain"
	"github.com/phrazzld/prep-api/internal/platform/metrics"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return sqlx.NewDb(db, "sqlmock"), mock
}

// spyRecorder captures metric events.
type spyRecorder struct {
	mu        sync.Mutex
	attempts  []bool
	fallbacks []string
	failures  []string
	auth      []string
}

var _ metrics.Recorder = (*spyRecorder)(nil)

func (r *spyRecorder) AttemptRecorded(correct bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, correct)
}

func (r *spyRecorder) GenerationFallback(operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks = append(r.fallbacks, operation)
}

func (r *spyRecorder) UpstreamFailure(operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, operation)
}

func (r *spyRecorder) AuthAttempt(method string, _ bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auth = append(r.auth, method)
}

func newTestSession(t *testing.T, userID uuid.UUID, questions ...string) *domain.Session {
	t.Helper()
	s, err := domain.NewSession(userID, "Backend Engineer", "3 years", []string{"Go", "SQL"}, "")
	require.NoError(t, err)

	qs := make([]*domain.Question, 0, len(questions))
	for _, text := range questions {
		q, err := domain.NewQuestion(s.ID, text, "Answer to "+text, "Go", domain.DifficultyMedium)
		require.NoError(t, err)
		qs = append(qs, q)
	}
	s.AddQuestions(qs, testNow.Add(-time.Hour))
	return s
}
