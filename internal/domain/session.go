package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session is one practice set owned by a single user.
// Questions keep insertion order.
type Session struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Role        string     `json:"role"`
	Experience  string     `json:"experience"`
	FocusAreas  []string   `json:"focus_areas"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewSession creates an empty session for userID.
func NewSession(userID uuid.UUID, role, experience string, focusAreas []string, description string) (*Session, error) {
	areas := make([]string, 0, len(focusAreas))
	for _, a := range focusAreas {
		if a = strings.TrimSpace(a); a != "" {
			areas = append(areas, a)
		}
	}

	now := time.Now().UTC()
	s := &Session{
		ID:          uuid.New(),
		UserID:      userID,
		Role:        strings.TrimSpace(role),
		Experience:  strings.TrimSpace(experience),
		FocusAreas:  areas,
		Description: strings.TrimSpace(description),
		Questions:   []Question{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the session invariants.
func (s *Session) Validate() error {
	if s.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if s.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrInvalidID)
	}
	if s.Role == "" {
		return NewValidationError("role", "cannot be empty", ErrEmptyContent)
	}
	if s.Experience == "" {
		return NewValidationError("experience", "cannot be empty", ErrEmptyContent)
	}
	return nil
}

// OwnedBy reports whether userID owns the session.
func (s *Session) OwnedBy(userID uuid.UUID) bool {
	return s.UserID == userID
}

// AddQuestions appends questions after the existing ones, assigning
// positions and the session ID.
func (s *Session) AddQuestions(questions []*Question, now time.Time) {
	next := len(s.Questions)
	for _, q := range questions {
		q.SessionID = s.ID
		q.Position = next
		next++
		s.Questions = append(s.Questions, *q)
	}
	s.Touch(now)
}

// HasQuestionText reports whether a question with the same text, ignoring
// case and surrounding space, already exists in the session.
func (s *Session) HasQuestionText(text string) bool {
	needle := strings.ToLower(strings.TrimSpace(text))
	for _, q := range s.Questions {
		if strings.ToLower(q.Question) == needle {
			return true
		}
	}
	return false
}

// Touch records a mutation.
func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now
}
