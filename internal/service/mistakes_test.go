package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/prep-api/internal/domain"
	"github.com/phrazzld/prep-api/internal/domain/srs"
	"github.com/phrazzld/prep-api/internal/mocks"
	"github.com/phrazzld/prep-api/internal/platform/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mistakeFixture struct {
	svc      *mistakeServiceImpl
	patterns *mocks.MockMistakePatternStore
	cache    *mocks.MemoryCache
	metrics  *spyRecorder
}

func newMistakeFixture(t *testing.T) (*mistakeFixture, sqlmock.Sqlmock) {
	t.Helper()
	db, sqlMock := newMockDB(t)
	f := &mistakeFixture{
		patterns: &mocks.MockMistakePatternStore{},
		cache:    mocks.NewMemoryCache(),
		metrics:  &spyRecorder{},
	}
	svc, err := NewMistakeService(db, f.patterns, srs.NewDefaultService(), f.cache, f.metrics, discardLogger())
	require.NoError(t, err)
	f.svc = svc.(*mistakeServiceImpl)
	f.svc.now = fixedClock
	return f, sqlMock
}

func TestNewMistakeService_RequiresDependencies(t *testing.T) {
	t.Parallel()

	svc, err := NewMistakeService(nil, nil, nil, nil, nil, nil)
	assert.Nil(t, svc)
	var serviceErr *ServiceError
	assert.ErrorAs(t, err, &serviceErr)
}

func TestRecordAttempt_FirstCorrectAttempt(t *testing.T) {
	t.Parallel()

	f, sqlMock := newMistakeFixture(t)
	userID := uuid.New()
	questionID := uuid.New()
	text := "What is a closure in JavaScript?"
	fingerprint := srs.Fingerprint(text, "JavaScript")

	fresh, err := domain.NewMistakePattern(userID, fingerprint, "JavaScript", domain.DifficultyHard, testNow)
	require.NoError(t, err)

	sqlMock.ExpectBegin()
	f.patterns.On("FindOrCreate", mock.Anything, userID, fingerprint, "JavaScript", domain.DifficultyHard, testNow).
		Return(fresh, nil)
	f.patterns.On("Save", mock.Anything, mock.MatchedBy(func(p *domain.MistakePattern) bool {
		return p.ID == fresh.ID && p.CorrectCount == 1
	})).Return(nil)
	sqlMock.ExpectCommit()

	require.NoError(t, f.cache.Set(context.Background(), cache.ReadinessKey(userID), 1))

	got, err := f.svc.RecordAttempt(context.Background(), AttemptInput{
		UserID:       userID,
		QuestionText: text,
		Topic:        " JavaScript ",
		Difficulty:   domain.DifficultyHard,
		IsCorrect:    true,
		QuestionID:   &questionID,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, got.CorrectCount)
	assert.Equal(t, 0, got.MistakeCount)
	assert.Equal(t, 1, got.ConsecutiveCorrect)
	require.Equal(t, 1, got.RelatedQuestions.Len())
	assert.Equal(t, &questionID, got.RelatedQuestions.Entries()[0].QuestionID)
	assert.Equal(t, 0, fresh.CorrectCount, "stored record must not be mutated in place")

	assert.Equal(t, []bool{true}, f.metrics.attempts)
	assert.False(t, f.cache.Has(cache.ReadinessKey(userID)))
	assert.ElementsMatch(t, cache.DashboardKeys(userID), f.cache.Deleted)
	f.patterns.AssertExpectations(t)
}

func TestRecordAttempt_MissClassifiesError(t *testing.T) {
	t.Parallel()

	f, sqlMock := newMistakeFixture(t)
	userID := uuid.New()
	text := "Explain database indexing"
	fingerprint := srs.Fingerprint(text, "Databases")

	fresh, err := domain.NewMistakePattern(userID, fingerprint, "Databases", domain.DifficultyMedium, testNow)
	require.NoError(t, err)

	sqlMock.ExpectBegin()
	f.patterns.On("FindOrCreate", mock.Anything, userID, fingerprint, "Databases", domain.DifficultyMedium, testNow).
		Return(fresh, nil)
	f.patterns.On("Save", mock.Anything, mock.Anything).Return(nil)
	sqlMock.ExpectCommit()

	got, err := f.svc.RecordAttempt(context.Background(), AttemptInput{
		UserID:         userID,
		QuestionText:   text,
		Topic:          "Databases",
		IsCorrect:      false,
		UserAnswer:     "faster reads",
		ExpectedAnswer: "An index is a separate data structure, usually a B-tree, that lets the database find rows without scanning the table.",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, got.MistakeCount)
	assert.Equal(t, 0, got.ConsecutiveCorrect)
	require.NotNil(t, got.LastMistakeAt)
	require.Len(t, got.CommonErrors, 1)
	assert.Equal(t, domain.ErrorIncompleteAnswer, got.CommonErrors[0].ErrorType)
	assert.Equal(t, 1, got.CommonErrors[0].Occurrences)
	assert.Equal(t, []bool{false}, f.metrics.attempts)
}

func TestRecordAttempt_Validation(t *testing.T) {
	t.Parallel()

	valid := AttemptInput{UserID: uuid.New(), QuestionText: "What is a mutex?", Topic: "Concurrency"}

	tests := []struct {
		name  string
		input func(AttemptInput) AttemptInput
	}{
		{name: "missing user", input: func(in AttemptInput) AttemptInput { in.UserID = uuid.Nil; return in }},
		{name: "missing question", input: func(in AttemptInput) AttemptInput { in.QuestionText = "  "; return in }},
		{name: "missing topic", input: func(in AttemptInput) AttemptInput { in.Topic = ""; return in }},
		{name: "bad difficulty", input: func(in AttemptInput) AttemptInput { in.Difficulty = "Extreme"; return in }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f, _ := newMistakeFixture(t)

			got, err := f.svc.RecordAttempt(context.Background(), tc.input(valid))
			assert.Nil(t, got)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, f.patterns.Calls)
			assert.Empty(t, f.metrics.attempts)
		})
	}
}

func TestRecordAttempt_SaveFailureRollsBack(t *testing.T) {
	t.Parallel()

	f, sqlMock := newMistakeFixture(t)
	userID := uuid.New()
	fingerprint := srs.Fingerprint("What is a goroutine?", "Go")
	fresh, err := domain.NewMistakePattern(userID, fingerprint, "Go", domain.DifficultyMedium, testNow)
	require.NoError(t, err)

	saveErr := errors.New("connection reset")
	sqlMock.ExpectBegin()
	f.patterns.On("FindOrCreate", mock.Anything, userID, fingerprint, "Go", domain.DifficultyMedium, testNow).
		Return(fresh, nil)
	f.patterns.On("Save", mock.Anything, mock.Anything).Return(saveErr)
	sqlMock.ExpectRollback()

	got, err := f.svc.RecordAttempt(context.Background(), AttemptInput{
		UserID:       userID,
		QuestionText: "What is a goroutine?",
		Topic:        "Go",
		IsCorrect:    true,
	})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, saveErr)
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "record_attempt", serviceErr.Operation)
	assert.Empty(t, f.metrics.attempts)
	assert.Empty(t, f.cache.Deleted)
}

func TestWeakAndDueConcepts_ClampLimit(t *testing.T) {
	t.Parallel()

	f, _ := newMistakeFixture(t)
	userID := uuid.New()
	weak := []domain.MistakePattern{{ConceptFingerprint: "go-channels"}}

	f.patterns.On("ListWeak", mock.Anything, userID, DefaultListLimit).Return(weak, nil).Once()
	f.patterns.On("ListWeak", mock.Anything, userID, MaxListLimit).Return(weak, nil).Once()
	f.patterns.On("ListDue", mock.Anything, userID, testNow, 7).Return([]domain.MistakePattern{}, nil).Once()

	got, err := f.svc.WeakConcepts(context.Background(), userID, 0)
	require.NoError(t, err)
	assert.Equal(t, weak, got)

	_, err = f.svc.WeakConcepts(context.Background(), userID, 500)
	require.NoError(t, err)

	due, err := f.svc.DueForReview(context.Background(), userID, 7)
	require.NoError(t, err)
	assert.Empty(t, due)

	f.patterns.AssertExpectations(t)
}

func TestWeakConcepts_StoreError(t *testing.T) {
	t.Parallel()

	f, _ := newMistakeFixture(t)
	userID := uuid.New()
	f.patterns.On("ListWeak", mock.Anything, userID, 5).Return(nil, errors.New("boom"))

	got, err := f.svc.WeakConcepts(context.Background(), userID, 5)
	assert.Nil(t, got)
	var serviceErr *ServiceError
	assert.ErrorAs(t, err, &serviceErr)
}

func TestStats(t *testing.T) {
	t.Parallel()

	f, _ := newMistakeFixture(t)
	userID := uuid.New()
	patterns := []domain.MistakePattern{
		{
			MistakeCount: 3, CorrectCount: 1, MasteryLevel: domain.MasteryStruggling, Priority: domain.PriorityHigh,
			NextReviewAt: testNow.Add(-time.Hour), ImprovementScore: 40,
		},
		{
			MistakeCount: 1, CorrectCount: 4, MasteryLevel: domain.MasteryProficient, Priority: domain.PriorityLow,
			NextReviewAt: testNow.Add(48 * time.Hour), ImprovementScore: 75, IsImproving: true,
		},
		{
			MistakeCount: 0, CorrectCount: 6, MasteryLevel: domain.MasteryMastered, Priority: domain.PriorityLow,
			NextReviewAt: testNow.Add(-time.Hour), ImprovementScore: 50,
		},
	}
	f.patterns.On("ListByUser", mock.Anything, userID).Return(patterns, nil)

	stats, err := f.svc.Stats(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalConcepts)
	assert.Equal(t, 4, stats.TotalMistakes)
	assert.Equal(t, 11, stats.TotalCorrect)
	assert.Equal(t, 1, stats.DueForReview, "mastered concepts are never due")
	assert.Equal(t, 1, stats.ImprovingConcepts)
	assert.Equal(t, 55, stats.AverageImprovementScore)
	assert.Equal(t, 1, stats.ByMasteryLevel[domain.MasteryStruggling])
	assert.Equal(t, 2, stats.ByPriority[domain.PriorityLow])
}

func TestStats_Empty(t *testing.T) {
	t.Parallel()

	f, _ := newMistakeFixture(t)
	userID := uuid.New()
	f.patterns.On("ListByUser", mock.Anything, userID).Return([]domain.MistakePattern{}, nil)

	stats, err := f.svc.Stats(context.Background(), userID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalConcepts)
	assert.Zero(t, stats.AverageImprovementScore)
	assert.NotNil(t, stats.ByMasteryLevel)
}
