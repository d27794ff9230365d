package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/prep-api/internal/api/shared"
	"github.com/phrazzld/prep-api/internal/config"
	"github.com/phrazzld/prep-api/internal/platform/google"
	"github.com/phrazzld/prep-api/internal/platform/logger"
	"github.com/phrazzld/prep-api/internal/platform/metrics"
	"github.com/phrazzld/prep-api/internal/redact"
	"github.com/phrazzld/prep-api/internal/service"
	"github.com/phrazzld/prep-api/internal/service/auth"
)

// Auth methods used as metric labels.
const (
	authMethodPassword = "password"
	authMethodRegister = "register"
	authMethodRefresh  = "refresh"
	authMethodGoogle   = "google"
)

const (
	oauthStateCookie = "prep_oauth_state"
	oauthStateMaxAge = 10 * time.Minute
)

// IdentityProvider is an external sign-in provider.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Identify(ctx context.Context, code string) (*google.Identity, error)
}

// AuthHandler serves account and token endpoints.
type AuthHandler struct {
	users       service.UserService
	jwtService  auth.JWTService
	authConfig  *config.AuthConfig
	identity    IdentityProvider
	frontendURL string
	metrics     metrics.Recorder
	logger      *slog.Logger
	now         func() time.Time
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(
	users service.UserService,
	jwtService auth.JWTService,
	authConfig *config.AuthConfig,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}
	if recorder == nil {
		recorder = metrics.Discard{}
	}
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
		authConfig: authConfig,
		metrics:    recorder,
		logger:     logger.With(slog.String("component", "auth_handler")),
		now:        time.Now,
	}
}

// WithIdentityProvider enables the Google sign-in endpoints. Successful and
// failed sign-ins redirect to frontendURL; with no frontendURL the result is
// written as JSON.
func (h *AuthHandler) WithIdentityProvider(p IdentityProvider, frontendURL string) *AuthHandler {
	h.identity = p
	h.frontendURL = strings.TrimRight(frontendURL, "/")
	return h
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		h.metrics.AuthAttempt(authMethodRegister, false)
		return
	}

	user, err := h.users.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.metrics.AuthAttempt(authMethodRegister, false)
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	resp, err := h.issueTokens(r.Context(), user.ID)
	if err != nil {
		h.metrics.AuthAttempt(authMethodRegister, false)
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}
	resp.User = userToResponse(user)

	h.metrics.AuthAttempt(authMethodRegister, true)
	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		h.metrics.AuthAttempt(authMethodPassword, false)
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.AuthAttempt(authMethodPassword, false)
		if errors.Is(err, service.ErrInvalidCredentials) {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid credentials", err,
				shared.WithElevatedLogLevel())
			return
		}
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	resp, err := h.issueTokens(r.Context(), user.ID)
	if err != nil {
		h.metrics.AuthAttempt(authMethodPassword, false)
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}
	resp.User = userToResponse(user)

	h.metrics.AuthAttempt(authMethodPassword, true)
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// RefreshToken handles POST /api/auth/refresh. It returns a new access and
// refresh token pair for a valid refresh token.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		h.metrics.AuthAttempt(authMethodRefresh, false)
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.metrics.AuthAttempt(authMethodRefresh, false)
		log.Debug("refresh token rejected", slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	// A deleted account must not be able to keep refreshing.
	if _, err := h.users.Get(r.Context(), claims.UserID); err != nil {
		h.metrics.AuthAttempt(authMethodRefresh, false)
		if errors.Is(err, service.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	resp, err := h.issueTokens(r.Context(), claims.UserID)
	if err != nil {
		h.metrics.AuthAttempt(authMethodRefresh, false)
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}

	h.metrics.AuthAttempt(authMethodRefresh, true)
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// UpdateMe handles PUT /api/auth/me.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, req.Name, req.AvatarURL)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// GoogleRedirect handles GET /api/auth/google. It stores a one-time state
// in a cookie and redirects to the consent page.
func (h *AuthHandler) GoogleRedirect(w http.ResponseWriter, r *http.Request) {
	if h.identity == nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Google sign-in is not configured")
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   int(oauthStateMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.identity.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallback handles GET /api/auth/google/callback. It verifies the
// state, links or creates the account and hands tokens to the frontend.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if h.identity == nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Google sign-in is not configured")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/api/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	query := r.URL.Query()
	if providerErr := query.Get("error"); providerErr != "" {
		log.Info("google sign-in declined", slog.String("reason", providerErr))
		h.googleFailure(w, r, "access_denied", nil)
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		h.googleFailure(w, r, "invalid_state", errors.New("oauth state mismatch"))
		return
	}

	identity, err := h.identity.Identify(r.Context(), query.Get("code"))
	if err != nil {
		h.googleFailure(w, r, "identity_failed", err)
		return
	}

	user, err := h.users.LinkExternalIdentity(r.Context(), service.ExternalIdentity{
		Subject:   identity.Subject,
		Email:     identity.Email,
		Name:      identity.Name,
		AvatarURL: identity.AvatarURL,
	})
	if err != nil {
		h.googleFailure(w, r, "account_failed", err)
		return
	}

	resp, err := h.issueTokens(r.Context(), user.ID)
	if err != nil {
		h.googleFailure(w, r, "token_failed", err)
		return
	}
	h.metrics.AuthAttempt(authMethodGoogle, true)

	if h.frontendURL == "" {
		resp.User = userToResponse(user)
		shared.RespondWithJSON(w, r, http.StatusOK, resp)
		return
	}
	target := h.frontendURL + "/auth/callback?" + url.Values{
		"token":         {resp.AccessToken},
		"refresh_token": {resp.RefreshToken},
		"expires_at":    {resp.ExpiresAt},
	}.Encode()
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *AuthHandler) googleFailure(w http.ResponseWriter, r *http.Request, reason string, err error) {
	h.metrics.AuthAttempt(authMethodGoogle, false)
	if err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("google sign-in failed",
			slog.String("reason", reason),
			redact.ErrorAttr(err))
	}

	if h.frontendURL == "" {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Google sign-in failed")
		return
	}
	http.Redirect(w, r, h.frontendURL+"/login?"+url.Values{"error": {reason}}.Encode(), http.StatusFound)
}

// issueTokens creates an access and refresh token pair for userID.
func (h *AuthHandler) issueTokens(ctx context.Context, userID uuid.UUID) (*AuthResponse, error) {
	accessToken, err := h.jwtService.GenerateToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	lifetime := time.Duration(h.authConfig.TokenLifetimeMinutes) * time.Minute
	return &AuthResponse{
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    h.now().Add(lifetime).UTC().Format(time.RFC3339),
	}, nil
}
