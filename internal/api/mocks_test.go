package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/prep-api/internal/analytics"
	"github.com/phrazzld/prep-api/internal/domain"
	"github.com/phrazzld/prep-api/internal/platform/google"
	"github.com/phrazzld/prep-api/internal/service"
	"github.com/stretchr/testify/mock"
)

type mockUserService struct{ mock.Mock }

var _ service.UserService = (*mockUserService)(nil)

func (m *mockUserService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	args := m.Called(ctx, email, password, name)
	return userArg(args.Get(0)), args.Error(1)
}

func (m *mockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	return userArg(args.Get(0)), args.Error(1)
}

func (m *mockUserService) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	return userArg(args.Get(0)), args.Error(1)
}

func (m *mockUserService) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	name, avatarURL string,
) (*domain.User, error) {
	args := m.Called(ctx, userID, name, avatarURL)
	return userArg(args.Get(0)), args.Error(1)
}

func (m *mockUserService) LinkExternalIdentity(
	ctx context.Context,
	identity service.ExternalIdentity,
) (*domain.User, error) {
	args := m.Called(ctx, identity)
	return userArg(args.Get(0)), args.Error(1)
}

func userArg(v any) *domain.User {
	if v == nil {
		return nil
	}
	return v.(*domain.User)
}

type mockSessionService struct{ mock.Mock }

var _ service.SessionService = (*mockSessionService)(nil)

func (m *mockSessionService) Create(ctx context.Context, in service.CreateSessionInput) (*service.SessionResult, error) {
	args := m.Called(ctx, in)
	return sessionResultArg(args.Get(0)), args.Error(1)
}

func (m *mockSessionService) List(ctx context.Context, userID uuid.UUID) ([]domain.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *mockSessionService) Get(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, userID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockSessionService) Delete(ctx context.Context, userID, sessionID uuid.UUID) error {
	return m.Called(ctx, userID, sessionID).Error(0)
}

func (m *mockSessionService) AddQuestions(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	questions []service.QuestionInput,
) (*service.SessionResult, error) {
	args := m.Called(ctx, userID, sessionID, questions)
	return sessionResultArg(args.Get(0)), args.Error(1)
}

func sessionResultArg(v any) *service.SessionResult {
	if v == nil {
		return nil
	}
	return v.(*service.SessionResult)
}

type mockQuestionService struct{ mock.Mock }

var _ service.QuestionService = (*mockQuestionService)(nil)

func (m *mockQuestionService) TogglePin(ctx context.Context, userID, questionID uuid.UUID) (*domain.Question, error) {
	args := m.Called(ctx, userID, questionID)
	return questionArg(args.Get(0)), args.Error(1)
}

func (m *mockQuestionService) UpdateNote(
	ctx context.Context,
	userID, questionID uuid.UUID,
	note string,
) (*domain.Question, error) {
	args := m.Called(ctx, userID, questionID, note)
	return questionArg(args.Get(0)), args.Error(1)
}

func (m *mockQuestionService) SubmitAnswer(
	ctx context.Context,
	userID, questionID uuid.UUID,
	userAnswer string,
) (*service.AnswerResult, error) {
	args := m.Called(ctx, userID, questionID, userAnswer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnswerResult), args.Error(1)
}

func (m *mockQuestionService) Explain(
	ctx context.Context,
	userID, questionID uuid.UUID,
) (*service.ExplanationResult, error) {
	args := m.Called(ctx, userID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExplanationResult), args.Error(1)
}

func questionArg(v any) *domain.Question {
	if v == nil {
		return nil
	}
	return v.(*domain.Question)
}

type mockMistakeService struct{ mock.Mock }

var _ service.MistakeService = (*mockMistakeService)(nil)

func (m *mockMistakeService) RecordAttempt(ctx context.Context, in service.AttemptInput) (*domain.MistakePattern, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MistakePattern), args.Error(1)
}

func (m *mockMistakeService) WeakConcepts(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]domain.MistakePattern, error) {
	args := m.Called(ctx, userID, limit)
	return patternsArg(args.Get(0)), args.Error(1)
}

func (m *mockMistakeService) DueForReview(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]domain.MistakePattern, error) {
	args := m.Called(ctx, userID, limit)
	return patternsArg(args.Get(0)), args.Error(1)
}

func (m *mockMistakeService) Stats(ctx context.Context, userID uuid.UUID) (*service.MistakeStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MistakeStats), args.Error(1)
}

func patternsArg(v any) []domain.MistakePattern {
	if v == nil {
		return nil
	}
	return v.([]domain.MistakePattern)
}

type mockDashboardService struct{ mock.Mock }

var _ service.DashboardService = (*mockDashboardService)(nil)

func (m *mockDashboardService) Readiness(ctx context.Context, userID uuid.UUID) (*analytics.Readiness, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.Readiness), args.Error(1)
}

func (m *mockDashboardService) KnowledgeGaps(ctx context.Context, userID uuid.UUID) (*analytics.KnowledgeGaps, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.KnowledgeGaps), args.Error(1)
}

// fakeIdentityProvider is an IdentityProvider with canned results.
type fakeIdentityProvider struct {
	identity  *google.Identity
	err       error
	gotCode   string
	gotStates []string
}

func (f *fakeIdentityProvider) AuthCodeURL(state string) string {
	f.gotStates = append(f.gotStates, state)
	return "https://accounts.example.com/o/oauth2/auth?state=" + state
}

func (f *fakeIdentityProvider) Identify(_ context.Context, code string) (*google.Identity, error) {
	f.gotCode = code
	return f.identity, f.err
}
