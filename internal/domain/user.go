package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var emailValidator = validator.New()

// User is an account holder. A user authenticates either with a password or
// through a linked Google identity, possibly both.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // plaintext, only set during registration
	HashedPassword string    `json:"-"`
	GoogleID       string    `json:"-"`
	Name           string    `json:"name"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	EmailVerified  bool      `json:"email_verified"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a password-based user. The plaintext password is hashed
// when the user is stored.
func NewUser(email, password, name string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     normalizeEmail(email),
		Password:  password,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// NewExternalUser creates a user whose identity was verified by Google.
// Such users have no password and their email is verified.
func NewExternalUser(email, googleID, name, avatarURL string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:            uuid.New(),
		Email:         normalizeEmail(email),
		GoogleID:      googleID,
		Name:          strings.TrimSpace(name),
		AvatarURL:     avatarURL,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// LinkGoogleIdentity attaches an external identity and marks the email verified.
func (u *User) LinkGoogleIdentity(googleID string, now time.Time) {
	u.GoogleID = googleID
	u.EmailVerified = true
	u.UpdatedAt = now
}

// UpdateProfile replaces the display fields. Empty values are ignored.
func (u *User) UpdateProfile(name, avatarURL string, now time.Time) {
	if n := strings.TrimSpace(name); n != "" {
		u.Name = n
	}
	if avatarURL != "" {
		u.AvatarURL = avatarURL
	}
	u.UpdatedAt = now
}

// Validate checks the user invariants.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if u.Email == "" {
		return NewValidationError("email", "cannot be empty", ErrEmptyContent)
	}
	if err := emailValidator.Var(u.Email, "email"); err != nil {
		return NewValidationError("email", "is malformed", ErrInvalidEmail)
	}

	if u.Password != "" {
		if len(u.Password) < 12 {
			return NewValidationError("password", "is too short", ErrPasswordTooShort)
		}
		if len(u.Password) > 72 {
			return NewValidationError("password", "is too long", ErrPasswordTooLong)
		}
		return nil
	}

	if u.HashedPassword == "" && u.GoogleID == "" {
		return NewValidationError("password", "is required", ErrMissingPassword)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
