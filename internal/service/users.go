package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/prep-api/internal/domain"
	"github.com/phrazzld/prep-api/internal/platform/logger"
	"github.com/phrazzld/prep-api/internal/service/auth"
	"github.com/phrazzld/prep-api/internal/store"
)

// ExternalIdentity is an account verified by an identity provider.
type ExternalIdentity struct {
	Subject   string
	Email     string
	Name      string
	AvatarURL string
}

// UserService manages accounts.
type UserService interface {
	// Register creates a password account.
	Register(ctx context.Context, email, password, name string) (*domain.User, error)

	// Authenticate checks a password login.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// Get returns a user by ID.
	Get(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateProfile changes the display name and avatar. Empty values keep
	// the current ones.
	UpdateProfile(ctx context.Context, userID uuid.UUID, name, avatarURL string) (*domain.User, error)

	// LinkExternalIdentity signs in with an external identity. An existing
	// account with the same email is linked and marked verified; otherwise
	// an account already linked to the subject is used; otherwise a new
	// verified account without a password is created.
	LinkExternalIdentity(ctx context.Context, identity ExternalIdentity) (*domain.User, error)
}

type userServiceImpl struct {
	users    store.UserStore
	verifier auth.PasswordVerifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewUserService creates a UserService.
func NewUserService(
	users store.UserStore,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) (UserService, error) {
	if users == nil || verifier == nil {
		return nil, NewServiceError("user", "create_service", "users and verifier are required", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &userServiceImpl{
		users:    users,
		verifier: verifier,
		logger:   logger.With(slog.String("component", "user_service")),
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *userServiceImpl) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, password, name)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration with existing email")
			return nil, store.ErrEmailExists
		}
		log.Error("failed to create user", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "register", "failed to create user", err)
	}

	user.Password = ""
	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, NewServiceError("user", "authenticate", "failed to load user", err)
	}

	// Accounts created through an identity provider have no password.
	if user.HashedPassword == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userServiceImpl) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, NewServiceError("user", "get", "failed to load user", err)
	}
	return user, nil
}

func (s *userServiceImpl) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	name, avatarURL string,
) (*domain.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.UpdateProfile(name, avatarURL, s.now())
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, NewServiceError("user", "update_profile", "failed to update user", err)
	}
	return user, nil
}

func (s *userServiceImpl) LinkExternalIdentity(ctx context.Context, identity ExternalIdentity) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if identity.Subject == "" {
		return nil, domain.NewValidationError("subject", "cannot be empty", domain.ErrEmptyContent)
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(identity.Email)))
	switch {
	case err == nil:
		if user.GoogleID == identity.Subject && user.EmailVerified {
			return user, nil
		}
		user.LinkGoogleIdentity(identity.Subject, s.now())
		if user.AvatarURL == "" {
			user.AvatarURL = identity.AvatarURL
		}
		if err := s.users.Update(ctx, user); err != nil {
			return nil, NewServiceError("user", "link_identity", "failed to link identity", err)
		}
		log.Info("linked external identity by email", slog.String("user_id", user.ID.String()))
		return user, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, NewServiceError("user", "link_identity", "failed to load user by email", err)
	}

	user, err = s.users.GetByGoogleID(ctx, identity.Subject)
	switch {
	case err == nil:
		return user, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, NewServiceError("user", "link_identity", "failed to load user by subject", err)
	}

	user, err = domain.NewExternalUser(identity.Email, identity.Subject, identity.Name, identity.AvatarURL)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, NewServiceError("user", "link_identity", "failed to create user", err)
	}
	log.Info("created user from external identity", slog.String("user_id", user.ID.String()))
	return user, nil
}
