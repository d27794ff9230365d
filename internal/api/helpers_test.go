package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/prep-api/internal/api/middleware"
	"github.com/phrazzld/prep-api/internal/config"
	"github.com/phrazzld/prep-api/internal/mocks"
	"github.com/phrazzld/prep-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

// testAPI is a fully mounted router over mocked services. Bearer tokens are
// accepted when they parse as a UUID, which becomes the user ID.
type testAPI struct {
	router    http.Handler
	users     *mockUserService
	sessions  *mockSessionService
	questions *mockQuestionService
	mistakes  *mockMistakeService
	dashboard *mockDashboardService
	jwt       *mocks.MockJWTService
	identity  *fakeIdentityProvider
	auth      *AuthHandler
}

type apiOptions struct {
	identity    *fakeIdentityProvider
	frontendURL string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAPI(t *testing.T, opts ...func(*apiOptions)) *testAPI {
	t.Helper()

	var o apiOptions
	for _, opt := range opts {
		opt(&o)
	}

	a := &testAPI{
		users:     &mockUserService{},
		sessions:  &mockSessionService{},
		questions: &mockQuestionService{},
		mistakes:  &mockMistakeService{},
		dashboard: &mockDashboardService{},
		identity:  o.identity,
		jwt: &mocks.MockJWTService{
			Token:        "access-token",
			RefreshToken: "refresh-token",
			ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
				id, err := uuid.Parse(token)
				if err != nil {
					return nil, auth.ErrInvalidToken
				}
				return &auth.Claims{UserID: id, TokenType: auth.AccessToken}, nil
			},
		},
	}

	log := discardLogger()
	a.auth = NewAuthHandler(a.users, a.jwt, &config.AuthConfig{TokenLifetimeMinutes: 60}, nil, log)
	if o.identity != nil {
		a.auth.WithIdentityProvider(o.identity, o.frontendURL)
	}

	r := chi.NewRouter()
	Handlers{
		Auth:          a.auth,
		Sessions:      NewSessionHandler(a.sessions, log),
		Questions:     NewQuestionHandler(a.questions, log),
		Mistakes:      NewMistakeHandler(a.mistakes, log),
		Analytics:     NewAnalyticsHandler(a.dashboard, log),
		GoogleEnabled: o.identity != nil,
	}.Mount(r, middleware.NewAuthMiddleware(a.jwt).Authenticate)
	a.router = r

	t.Cleanup(func() {
		a.users.AssertExpectations(t)
		a.sessions.AssertExpectations(t)
		a.questions.AssertExpectations(t)
		a.mistakes.AssertExpectations(t)
		a.dashboard.AssertExpectations(t)
	})
	return a
}

// do sends a request as userID; uuid.Nil sends it unauthenticated. body
// is encoded as JSON unless it is already a string.
func (a *testAPI) do(t *testing.T, method, path string, userID uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+userID.String())
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
