package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/prep-api/internal/domain"
	"github.com/phrazzld/prep-api/internal/domain/srs"
	"github.com/phrazzld/prep-api/internal/generation"
	"github.com/phrazzld/prep-api/internal/mocks"
	"github.com/phrazzld/prep-api/internal/platform/cache"
	"github.com/phrazzld/prep-api/internal/platform/metrics"
	"github.com/phrazzld/prep-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type questionFixture struct {
	svc       *questionServiceImpl
	sessions  *mocks.MockSessionStore
	questions *mocks.MockQuestionStore
	patterns  *mocks.MockMistakePatternStore
	provider  *mocks.MockProvider
	cache     *mocks.MemoryCache
	metrics   *spyRecorder
	sql       sqlmock.Sqlmock

	userID   uuid.UUID
	session  *domain.Session
	question *domain.Question
}

// newQuestionFixture wires a service around one owned session holding a
// single question, with the lookups for both already expected.
func newQuestionFixture(t *testing.T) *questionFixture {
	t.Helper()
	db, sqlMock := newMockDB(t)
	f := &questionFixture{
		sessions:  &mocks.MockSessionStore{},
		questions: &mocks.MockQuestionStore{},
		patterns:  &mocks.MockMistakePatternStore{},
		provider:  &mocks.MockProvider{},
		cache:     mocks.NewMemoryCache(),
		metrics:   &spyRecorder{},
		sql:       sqlMock,
		userID:    uuid.New(),
	}
	svc, err := NewQuestionService(db, f.sessions, f.questions, f.patterns, f.provider,
		srs.NewDefaultService(), f.cache, f.metrics, discardLogger())
	require.NoError(t, err)
	f.svc = svc.(*questionServiceImpl)
	f.svc.now = fixedClock

	f.session = newTestSession(t, f.userID, "What is a goroutine leak?")
	q := f.session.Questions[0]
	f.question = &q

	f.questions.On("GetByID", mock.Anything, f.question.ID).Return(f.question, nil)
	f.sessions.On("GetByID", mock.Anything, f.session.ID).Return(f.session, nil)
	return f
}

func TestTogglePin(t *testing.T) {
	t.Parallel()

	f := newQuestionFixture(t)
	f.questions.On("Update", mock.Anything, f.question).Return(nil)

	got, err := f.svc.TogglePin(context.Background(), f.userID, f.question.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPinned)
	assert.Equal(t, testNow, got.UpdatedAt)
	assert.ElementsMatch(t, cache.DashboardKeys(f.userID), f.cache.Deleted)

	got, err = f.svc.TogglePin(context.Background(), f.userID, f.question.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPinned)
}

func TestUpdateNote(t *testing.T) {
	t.Parallel()

	f := newQuestionFixture(t)
	f.questions.On("Update", mock.Anything, f.question).Return(nil)

	got, err := f.svc.UpdateNote(context.Background(), f.userID, f.question.ID, "check pprof goroutine dump")
	require.NoError(t, err)
	assert.Equal(t, "check pprof goroutine dump", got.Notes)
}

func TestQuestionActions_NotOwned(t *testing.T) {
	t.Parallel()

	f := newQuestionFixture(t)
	stranger := uuid.New()

	_, err := f.svc.TogglePin(context.Background(), stranger, f.question.ID)
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	_, err = f.svc.Explain(context.Background(), stranger, f.question.ID)
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	f.questions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Empty(t, f.provider.Calls)
}

func TestQuestionActions_Missing(t *testing.T) {
	t.Parallel()

	f := newQuestionFixture(t)
	missing := uuid.New()
	f.questions.On("GetByID", mock.Anything, missing).Return(nil, store.ErrQuestionNotFound)

	_, err := f.svc.UpdateNote(context.Background(), f.userID, missing, "note")
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestSubmitAnswer_RecordsAttempt(t *testing.T) {
	t.Parallel()

	f := newQuestionFixture(t)
	userAnswer := "goroutines"
	fresh, err := domain.NewMistakePattern(f.userID, "fp", "Go", domain.DifficultyMedium, testNow)
	require.NoError(t, err)

	f.provider.On("EvaluateAnswer", mock.Anything, f.question.Question, f.question.Answer, userAnswer).
		Return(generation.Succeeded(generation.Evaluation{IsCorrect: false, Score: 30, Feedback: "Too brief."}))
	f.sql.ExpectBegin()
	f.questions.On("Update", mock.Anything, f.question).Return(nil)
	f.sessions.On("Touch", mock.Anything, f.session.ID, testNow).Return(nil)
	f.patterns.On("FindOrCreate", mock.Anything, f.userID, srs.Fingerprint(f.question.Question, "Go"),
		"Go", domain.DifficultyMedium, testNow).Return(fresh, nil)
	f.patterns.On("Save", mock.Anything, mock.AnythingOfType("*domain.MistakePattern")).Return(nil)
	f.sql.ExpectCommit()

	got, err := f.svc.SubmitAnswer(context.Background(), f.userID, f.question.ID, "  "+userAnswer+" ")
	require.NoError(t, err)

	assert.Equal(t, userAnswer, got.Question.UserAnswer)
	require.NotNil(t, got.Question.IsCorrect)
	assert.False(t, *got.Question.IsCorrect)
	assert.Equal(t, 30, got.Evaluation.Score)
	require.NotNil(t, got.Concept)
	assert.Equal(t, 1, got.Concept.MistakeCount)
	require.Equal(t, 1, got.Concept.RelatedQuestions.Len())
	assert.Equal(t, &f.question.ID, got.Concept.RelatedQuestions.Entries()[0].QuestionID)

	assert.Equal(t, []bool{false}, f.metrics.attempts)
	assert.ElementsMatch(t, cache.DashboardKeys(f.userID), f.cache.Deleted)
	f.patterns.AssertExpectations(t)
}

func TestSubmitAnswer_EvaluationUnavailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		err          error
		wantFailures []string
	}{
		{name: "upstream failure", err: generation.ErrInvalidResponse, wantFailures: []string{metrics.OpEvaluation}},
		{name: "provider not configured", err: generation.ErrProviderUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newQuestionFixture(t)
			f.provider.On("EvaluateAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(generation.Failed[generation.Evaluation](tc.err))

			got, err := f.svc.SubmitAnswer(context.Background(), f.userID, f.question.ID, "an answer")
			assert.Nil(t, got)
			assert.ErrorIs(t, err, ErrEvaluationUnavailable)
			assert.Equal(t, tc.wantFailures, f.metrics.failures)
			assert.Empty(t, f.metrics.attempts)
			f.questions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitAnswer_EmptyAnswer(t *testing.T) {
	t.Parallel()

	f := newQuestionFixture(t)
	got, err := f.svc.SubmitAnswer(context.Background(), f.userID, f.question.ID, "   ")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.provider.Calls)
}

func TestExplain_ReturnsStoredExplanation(t *testing.T) {
	t.Parallel()

	f := newQuestionFixture(t)
	f.question.ConceptExplanation = "stored"

	got, err := f.svc.Explain(context.Background(), f.userID, f.question.ID)
	require.NoError(t, err)
	assert.Equal(t, "stored", got.Explanation)
	assert.False(t, got.Fallback)
	assert.Empty(t, f.provider.Calls)
}

func TestExplain_GeneratesAndStores(t *testing.T) {
	t.Parallel()

	f := newQuestionFixture(t)
	f.provider.On("GenerateExplanation", mock.Anything, f.question.Question, f.question.Answer).
		Return(generation.Succeeded("## Goroutine leaks\n\nA leak happens when..."))
	f.questions.On("Update", mock.Anything, mock.MatchedBy(func(q *domain.Question) bool {
		return q.ConceptExplanation != ""
	})).Return(nil)

	got, err := f.svc.Explain(context.Background(), f.userID, f.question.ID)
	require.NoError(t, err)
	assert.False(t, got.Fallback)
	assert.Equal(t, got.Explanation, got.Question.ConceptExplanation)
	f.questions.AssertExpectations(t)
}

func TestExplain_FallbackIsNotStored(t *testing.T) {
	t.Parallel()

	f := newQuestionFixture(t)
	f.provider.On("GenerateExplanation", mock.Anything, mock.Anything, mock.Anything).
		Return(generation.Succeeded("   "))

	got, err := f.svc.Explain(context.Background(), f.userID, f.question.ID)
	require.NoError(t, err)
	assert.True(t, got.Fallback)
	assert.Contains(t, got.Explanation, f.question.Answer)
	assert.Empty(t, got.Question.ConceptExplanation)
	assert.Equal(t, []string{metrics.OpExplanation}, f.metrics.fallbacks)
	assert.Equal(t, []string{metrics.OpExplanation}, f.metrics.failures)
	f.questions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
