package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/prep-api/internal/config"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"resty.dev/v3"
)

const (
	userInfoBaseURL = "https://www.googleapis.com"
	userInfoPath    = "/oauth2/v2/userinfo"
	requestTimeout  = 10 * time.Second
)

var (
	// ErrCodeExchange is returned when the authorization code is rejected.
	ErrCodeExchange = errors.New("authorization code exchange failed")

	// ErrUserInfo is returned when the account profile cannot be read.
	ErrUserInfo = errors.New("failed to fetch google user info")

	// ErrUnverifiedEmail is returned for accounts whose email Google has not verified.
	ErrUnverifiedEmail = errors.New("google account email is not verified")
)

// Identity is the verified account data used to link or create a user.
type Identity struct {
	Subject   string
	Email     string
	Name      string
	AvatarURL string
}

type userInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Provider talks to Google's OAuth endpoints.
type Provider struct {
	oauth  *oauth2.Config
	http   *resty.Client
	logger *slog.Logger
}

// NewProvider creates a Provider for the configured OAuth client.
func NewProvider(cfg config.GoogleOAuthConfig, logger *slog.Logger) *Provider {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     googleoauth.Endpoint,
	}
	return newProvider(oauthCfg, userInfoBaseURL, logger)
}

func newProvider(oauthCfg *oauth2.Config, userInfoBase string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	client := resty.New().
		SetBaseURL(userInfoBase).
		SetTimeout(requestTimeout).
		SetHeader("Accept", "application/json")

	return &Provider{
		oauth:  oauthCfg,
		http:   client,
		logger: logger.With(slog.String("component", "google_oauth")),
	}
}

// AuthCodeURL returns the consent page URL carrying state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Identify exchanges code for a token and returns the account it belongs to.
func (p *Provider) Identify(ctx context.Context, code string) (*Identity, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: empty code", ErrCodeExchange)
	}

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		p.logger.WarnContext(ctx, "google code exchange failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrCodeExchange, err)
	}

	return p.fetchIdentity(ctx, token.AccessToken)
}

func (p *Provider) fetchIdentity(ctx context.Context, accessToken string) (*Identity, error) {
	var info userInfo
	resp, err := p.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&info).
		Get(userInfoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfo, err)
	}
	if resp.IsError() {
		p.logger.WarnContext(ctx, "google userinfo request rejected",
			slog.Int("status", resp.StatusCode()))
		return nil, fmt.Errorf("%w: status %d", ErrUserInfo, resp.StatusCode())
	}

	if info.ID == "" || info.Email == "" {
		return nil, fmt.Errorf("%w: incomplete profile", ErrUserInfo)
	}
	if !info.VerifiedEmail {
		return nil, ErrUnverifiedEmail
	}

	return &Identity{
		Subject:   info.ID,
		Email:     info.Email,
		Name:      info.Name,
		AvatarURL: info.Picture,
	}, nil
}

// Close releases the HTTP client.
func (p *Provider) Close() error {
	return p.http.Close()
}
