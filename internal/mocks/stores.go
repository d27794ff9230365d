package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/prep-api/internal/domain"
	"github.com/phrazzld/prep-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockUserStore implements store.UserStore.
type MockUserStore struct {
	mock.Mock
}

var _ store.UserStore = (*MockUserStore)(nil)

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockUserStore) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	args := m.Called(ctx, googleID)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) WithTx(*sqlx.Tx) store.UserStore {
	return m
}

func userOrNil(v any) *domain.User {
	if v == nil {
		return nil
	}
	return v.(*domain.User)
}

// MockSessionStore implements store.SessionStore.
type MockSessionStore struct {
	mock.Mock
}

var _ store.SessionStore = (*MockSessionStore)(nil)

func (m *MockSessionStore) Create(ctx context.Context, session *domain.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *MockSessionStore) AddQuestions(ctx context.Context, questions []domain.Question) error {
	return m.Called(ctx, questions).Error(0)
}

func (m *MockSessionStore) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSessionStore) WithTx(*sqlx.Tx) store.SessionStore {
	return m
}

// MockQuestionStore implements store.QuestionStore.
type MockQuestionStore struct {
	mock.Mock
}

var _ store.QuestionStore = (*MockQuestionStore)(nil)

func (m *MockQuestionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Question), args.Error(1)
}

func (m *MockQuestionStore) Update(ctx context.Context, question *domain.Question) error {
	return m.Called(ctx, question).Error(0)
}

func (m *MockQuestionStore) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionStore) WithTx(*sqlx.Tx) store.QuestionStore {
	return m
}

// MockMistakePatternStore implements store.MistakePatternStore.
type MockMistakePatternStore struct {
	mock.Mock
}

var _ store.MistakePatternStore = (*MockMistakePatternStore)(nil)

func (m *MockMistakePatternStore) FindByFingerprint(
	ctx context.Context,
	userID uuid.UUID,
	fingerprint string,
) (*domain.MistakePattern, error) {
	args := m.Called(ctx, userID, fingerprint)
	return patternOrNil(args.Get(0)), args.Error(1)
}

func (m *MockMistakePatternStore) FindOrCreate(
	ctx context.Context,
	userID uuid.UUID,
	fingerprint, topic string,
	difficulty domain.Difficulty,
	now time.Time,
) (*domain.MistakePattern, error) {
	args := m.Called(ctx, userID, fingerprint, topic, difficulty, now)
	return patternOrNil(args.Get(0)), args.Error(1)
}

func (m *MockMistakePatternStore) Save(ctx context.Context, pattern *domain.MistakePattern) error {
	return m.Called(ctx, pattern).Error(0)
}

func (m *MockMistakePatternStore) ListWeak(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]domain.MistakePattern, error) {
	args := m.Called(ctx, userID, limit)
	return patternsOrNil(args.Get(0)), args.Error(1)
}

func (m *MockMistakePatternStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]domain.MistakePattern, error) {
	args := m.Called(ctx, userID, now, limit)
	return patternsOrNil(args.Get(0)), args.Error(1)
}

func (m *MockMistakePatternStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.MistakePattern, error) {
	args := m.Called(ctx, userID)
	return patternsOrNil(args.Get(0)), args.Error(1)
}

func (m *MockMistakePatternStore) WithTx(*sqlx.Tx) store.MistakePatternStore {
	return m
}

func patternOrNil(v any) *domain.MistakePattern {
	if v == nil {
		return nil
	}
	return v.(*domain.MistakePattern)
}

func patternsOrNil(v any) []domain.MistakePattern {
	if v == nil {
		return nil
	}
	return v.([]domain.MistakePattern)
}
