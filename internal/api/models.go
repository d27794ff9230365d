package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/prep-api/internal/domain"
	"github.com/phrazzld/prep-api/internal/generation"
)

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
	Name     string `json:"name"     validate:"max=100"`
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the payload for POST /api/auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UpdateProfileRequest is the payload for PUT /api/auth/me.
type UpdateProfileRequest struct {
	Name      string `json:"name"       validate:"max=100"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	GoogleLinked  bool      `json:"google_linked"`
	CreatedAt     time.Time `json:"created_at"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	UserID       uuid.UUID     `json:"user_id"`
	AccessToken  string        `json:"token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresAt    string        `json:"expires_at"`
	User         *UserResponse `json:"user,omitempty"`
}

// CreateSessionRequest is the payload for POST /api/sessions.
type CreateSessionRequest struct {
	Role        string   `json:"role"        validate:"required,max=100"`
	Experience  string   `json:"experience"  validate:"required,max=100"`
	FocusAreas  []string `json:"focus_areas" validate:"max=10,dive,max=100"`
	Description string   `json:"description" validate:"max=2000"`
}

// QuestionRequest is one caller-supplied question.
type QuestionRequest struct {
	Question   string            `json:"question"   validate:"required,max=2000"`
	Answer     string            `json:"answer"     validate:"required,max=10000"`
	Topic      string            `json:"topic"      validate:"max=100"`
	Difficulty domain.Difficulty `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
}

// AddQuestionsRequest is the payload for POST /api/sessions/{id}/questions.
// An empty list asks for generated questions.
type AddQuestionsRequest struct {
	Questions []QuestionRequest `json:"questions" validate:"max=50,dive"`
}

// SessionResponse wraps a session with the fallback flag.
type SessionResponse struct {
	Session               *domain.Session `json:"session"`
	GeneratedWithFallback bool            `json:"generated_with_fallback"`
}

// SessionListResponse is returned by GET /api/sessions.
type SessionListResponse struct {
	Sessions []domain.Session `json:"sessions"`
	Count    int              `json:"count"`
}

// NoteRequest is the payload for PUT /api/questions/{id}/note.
type NoteRequest struct {
	Note string `json:"note" validate:"max=5000"`
}

// AnswerRequest is the payload for POST /api/questions/{id}/answer.
type AnswerRequest struct {
	UserAnswer string `json:"user_answer" validate:"required,max=10000"`
}

// AnswerResponse is the graded submission.
type AnswerResponse struct {
	Question   *domain.Question       `json:"question"`
	Evaluation generation.Evaluation  `json:"evaluation"`
	Concept    *domain.MistakePattern `json:"concept"`
}

// ExplanationResponse is returned by POST /api/questions/{id}/explanation.
type ExplanationResponse struct {
	QuestionID  uuid.UUID `json:"question_id"`
	Explanation string    `json:"explanation"`
	Fallback    bool      `json:"fallback"`
}

// RecordAttemptRequest is the payload for POST /api/mistakes/attempts.
type RecordAttemptRequest struct {
	QuestionText   string            `json:"question_text"   validate:"required,max=2000"`
	Topic          string            `json:"topic"           validate:"required,max=100"`
	Difficulty     domain.Difficulty `json:"difficulty"      validate:"omitempty,oneof=Easy Medium Hard"`
	IsCorrect      *bool             `json:"is_correct"      validate:"required"`
	QuestionID     *uuid.UUID        `json:"question_id"`
	UserAnswer     string            `json:"user_answer"     validate:"max=10000"`
	ExpectedAnswer string            `json:"expected_answer" validate:"max=10000"`
}

// ConceptListResponse is returned by the weak and due views.
type ConceptListResponse struct {
	Concepts []domain.MistakePattern `json:"concepts"`
	Count    int                     `json:"count"`
}

func userToResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		AvatarURL:     u.AvatarURL,
		EmailVerified: u.EmailVerified,
		GoogleLinked:  u.GoogleID != "",
		CreatedAt:     u.CreatedAt,
	}
}
