package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/prep-api/internal/domain"
	"github.com/phrazzld/prep-api/internal/platform/google"
	"github.com/phrazzld/prep-api/internal/service"
	"github.com/phrazzld/prep-api/internal/service/auth"
	"github.com/phrazzld/prep-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testUser() *domain.User {
	return &domain.User{
		ID:        uuid.New(),
		Email:     "candidate@example.com",
		Name:      "Candidate",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("creates user and issues tokens", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		user := testUser()
		a.users.On("Register", mock.Anything, user.Email, "correct-horse-battery", "Candidate").
			Return(user, nil).Once()

		rec := a.do(t, http.MethodPost, "/api/auth/register", uuid.Nil, RegisterRequest{
			Email:    user.Email,
			Password: "correct-horse-battery",
			Name:     "Candidate",
		})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		resp := decodeBody[AuthResponse](t, rec)
		assert.Equal(t, user.ID, resp.UserID)
		assert.Equal(t, "access-token", resp.AccessToken)
		assert.Equal(t, "refresh-token", resp.RefreshToken)
		require.NotNil(t, resp.User)
		assert.Equal(t, user.Email, resp.User.Email)
		assert.False(t, resp.User.GoogleLinked)

		_, err := time.Parse(time.RFC3339, resp.ExpiresAt)
		assert.NoError(t, err)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		a.users.On("Register", mock.Anything, "taken@example.com", mock.Anything, "").
			Return(nil, store.ErrEmailExists).Once()

		rec := a.do(t, http.MethodPost, "/api/auth/register", uuid.Nil, RegisterRequest{
			Email:    "taken@example.com",
			Password: "correct-horse-battery",
		})

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Email already exists", decodeBody[map[string]string](t, rec)["error"])
	})

	t.Run("rejects invalid payloads before the service", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			body    any
			message string
		}{
			{
				name:    "short password",
				body:    RegisterRequest{Email: "a@example.com", Password: "short"},
				message: "Invalid password: too short",
			},
			{
				name:    "bad email",
				body:    RegisterRequest{Email: "not-an-email", Password: "correct-horse-battery"},
				message: "Invalid email: invalid email format",
			},
			{
				name:    "empty body",
				body:    "",
				message: "Request body is required",
			},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()
				a := newTestAPI(t)
				rec := a.do(t, http.MethodPost, "/api/auth/register", uuid.Nil, tc.body)
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Equal(t, tc.message, decodeBody[map[string]string](t, rec)["error"])
			})
		}
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		user := testUser()
		a.users.On("Authenticate", mock.Anything, user.Email, "correct-horse-battery").Return(user, nil).Once()

		rec := a.do(t, http.MethodPost, "/api/auth/login", uuid.Nil, LoginRequest{
			Email:    user.Email,
			Password: "correct-horse-battery",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[AuthResponse](t, rec)
		assert.Equal(t, user.ID, resp.UserID)
		assert.Equal(t, "access-token", resp.AccessToken)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		a.users.On("Authenticate", mock.Anything, "candidate@example.com", "wrong-password").
			Return(nil, service.ErrInvalidCredentials).Once()

		rec := a.do(t, http.MethodPost, "/api/auth/login", uuid.Nil, LoginRequest{
			Email:    "candidate@example.com",
			Password: "wrong-password",
		})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decodeBody[map[string]string](t, rec)["error"])
	})

	t.Run("token failure is a server error", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		a.jwt.Err = errors.New("signing key unavailable")
		user := testUser()
		a.users.On("Authenticate", mock.Anything, user.Email, "correct-horse-battery").Return(user, nil).Once()

		rec := a.do(t, http.MethodPost, "/api/auth/login", uuid.Nil, LoginRequest{
			Email:    user.Email,
			Password: "correct-horse-battery",
		})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to generate authentication token", decodeBody[map[string]string](t, rec)["error"])
	})
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	user := testUser()
	validate := func(_ context.Context, token string) (*auth.Claims, error) {
		if token != "good-refresh" {
			return nil, auth.ErrInvalidRefreshToken
		}
		return &auth.Claims{UserID: user.ID, TokenType: auth.RefreshToken}, nil
	}

	t.Run("issues a new pair", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		a.jwt.ValidateRefreshTokenFn = validate
		a.users.On("Get", mock.Anything, user.ID).Return(user, nil).Once()

		rec := a.do(t, http.MethodPost, "/api/auth/refresh", uuid.Nil, RefreshTokenRequest{RefreshToken: "good-refresh"})

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[AuthResponse](t, rec)
		assert.Equal(t, user.ID, resp.UserID)
		assert.Equal(t, "refresh-token", resp.RefreshToken)
		assert.Nil(t, resp.User)
	})

	t.Run("invalid token", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		a.jwt.ValidateRefreshTokenFn = validate

		rec := a.do(t, http.MethodPost, "/api/auth/refresh", uuid.Nil, RefreshTokenRequest{RefreshToken: "forged"})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid refresh token", decodeBody[map[string]string](t, rec)["error"])
	})

	t.Run("deleted user", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		a.jwt.ValidateRefreshTokenFn = validate
		a.users.On("Get", mock.Anything, user.ID).Return(nil, service.ErrUserNotFound).Once()

		rec := a.do(t, http.MethodPost, "/api/auth/refresh", uuid.Nil, RefreshTokenRequest{RefreshToken: "good-refresh"})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMe(t *testing.T) {
	t.Parallel()

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		rec := a.do(t, http.MethodGet, "/api/auth/me", uuid.Nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("returns profile", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		user := testUser()
		user.GoogleID = "google-sub"
		a.users.On("Get", mock.Anything, user.ID).Return(user, nil).Once()

		rec := a.do(t, http.MethodGet, "/api/auth/me", user.ID, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[UserResponse](t, rec)
		assert.Equal(t, user.ID, resp.ID)
		assert.True(t, resp.GoogleLinked)
	})

	t.Run("updates profile", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		user := testUser()
		updated := *user
		updated.Name = "New Name"
		updated.AvatarURL = "https://cdn.example.com/me.png"
		a.users.On("UpdateProfile", mock.Anything, user.ID, "New Name", "https://cdn.example.com/me.png").
			Return(&updated, nil).Once()

		rec := a.do(t, http.MethodPut, "/api/auth/me", user.ID, UpdateProfileRequest{
			Name:      "New Name",
			AvatarURL: "https://cdn.example.com/me.png",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[UserResponse](t, rec)
		assert.Equal(t, "New Name", resp.Name)
		assert.Equal(t, "https://cdn.example.com/me.png", resp.AvatarURL)
	})

	t.Run("rejects bad avatar url", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		rec := a.do(t, http.MethodPut, "/api/auth/me", uuid.New(), UpdateProfileRequest{AvatarURL: "not a url"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid avatar_url: invalid URL", decodeBody[map[string]string](t, rec)["error"])
	})
}

func withGoogle(p *fakeIdentityProvider, frontendURL string) func(*apiOptions) {
	return func(o *apiOptions) {
		o.identity = p
		o.frontendURL = frontendURL
	}
}

// googleCallback builds a callback request carrying the state cookie.
func googleCallback(cookieState, queryState, code string) *http.Request {
	q := url.Values{"state": {queryState}, "code": {code}}
	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?"+q.Encode(), nil)
	if cookieState != "" {
		req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: cookieState})
	}
	return req
}

func TestGoogleSignIn(t *testing.T) {
	t.Parallel()

	t.Run("routes are absent when disabled", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		rec := a.do(t, http.MethodGet, "/api/auth/google", uuid.Nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("redirect stores state", func(t *testing.T) {
		t.Parallel()
		p := &fakeIdentityProvider{}
		a := newTestAPI(t, withGoogle(p, "https://app.example.com"))

		rec := a.do(t, http.MethodGet, "/api/auth/google", uuid.Nil, nil)

		require.Equal(t, http.StatusFound, rec.Code)
		require.Len(t, p.gotStates, 1)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, oauthStateCookie, cookies[0].Name)
		assert.Equal(t, p.gotStates[0], cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Contains(t, rec.Header().Get("Location"), "state="+p.gotStates[0])
	})

	t.Run("callback links account and redirects with tokens", func(t *testing.T) {
		t.Parallel()
		p := &fakeIdentityProvider{identity: &google.Identity{
			Subject: "google-sub",
			Email:   "candidate@example.com",
			Name:    "Candidate",
		}}
		a := newTestAPI(t, withGoogle(p, "https://app.example.com/"))
		user := testUser()
		a.users.On("LinkExternalIdentity", mock.Anything, service.ExternalIdentity{
			Subject: "google-sub",
			Email:   "candidate@example.com",
			Name:    "Candidate",
		}).Return(user, nil).Once()

		rec := httptest.NewRecorder()
		a.router.ServeHTTP(rec, googleCallback("state-1", "state-1", "auth-code"))

		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "auth-code", p.gotCode)

		location, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "app.example.com", location.Host)
		assert.Equal(t, "/auth/callback", location.Path)
		assert.Equal(t, "access-token", location.Query().Get("token"))
		assert.Equal(t, "refresh-token", location.Query().Get("refresh_token"))
		assert.NotEmpty(t, location.Query().Get("expires_at"))
	})

	t.Run("state mismatch redirects to login", func(t *testing.T) {
		t.Parallel()
		p := &fakeIdentityProvider{}
		a := newTestAPI(t, withGoogle(p, "https://app.example.com"))

		rec := httptest.NewRecorder()
		a.router.ServeHTTP(rec, googleCallback("state-1", "state-2", "auth-code"))

		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "https://app.example.com/login?error=invalid_state", rec.Header().Get("Location"))
		assert.Empty(t, p.gotCode)
	})

	t.Run("missing cookie redirects to login", func(t *testing.T) {
		t.Parallel()
		p := &fakeIdentityProvider{}
		a := newTestAPI(t, withGoogle(p, "https://app.example.com"))

		rec := httptest.NewRecorder()
		a.router.ServeHTTP(rec, googleCallback("", "state-1", "auth-code"))

		assert.Equal(t, "https://app.example.com/login?error=invalid_state", rec.Header().Get("Location"))
	})

	t.Run("declined consent", func(t *testing.T) {
		t.Parallel()
		p := &fakeIdentityProvider{}
		a := newTestAPI(t, withGoogle(p, "https://app.example.com"))

		rec := a.do(t, http.MethodGet, "/api/auth/google/callback?error=access_denied", uuid.Nil, nil)

		assert.Equal(t, "https://app.example.com/login?error=access_denied", rec.Header().Get("Location"))
	})

	t.Run("identity failure without frontend responds with json", func(t *testing.T) {
		t.Parallel()
		p := &fakeIdentityProvider{err: errors.New("exchange failed")}
		a := newTestAPI(t, withGoogle(p, ""))

		rec := httptest.NewRecorder()
		a.router.ServeHTTP(rec, googleCallback("state-1", "state-1", "auth-code"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Google sign-in failed", decodeBody[map[string]string](t, rec)["error"])
	})

	t.Run("success without frontend responds with json", func(t *testing.T) {
		t.Parallel()
		p := &fakeIdentityProvider{identity: &google.Identity{Subject: "google-sub", Email: "candidate@example.com"}}
		a := newTestAPI(t, withGoogle(p, ""))
		user := testUser()
		a.users.On("LinkExternalIdentity", mock.Anything, mock.Anything).Return(user, nil).Once()

		rec := httptest.NewRecorder()
		a.router.ServeHTTP(rec, googleCallback("state-1", "state-1", "auth-code"))

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[AuthResponse](t, rec)
		assert.Equal(t, user.ID, resp.UserID)
		require.NotNil(t, resp.User)
	})
}
