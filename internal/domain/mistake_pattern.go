package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultEaseFactor is the starting ease of a new concept.
	DefaultEaseFactor = 2.5
	// MinEaseFactor and MaxEaseFactor bound the stored ease factor.
	MinEaseFactor = 1.3
	MaxEaseFactor = 2.5
)

// CommonError counts how often a kind of mistake was made on a concept.
type CommonError struct {
	ErrorType   ErrorType `json:"error_type"`
	Description string    `json:"description"`
	Occurrences int       `json:"occurrences"`
}

// MistakePattern tracks one user's history with one concept. There is at
// most one per (UserID, ConceptFingerprint). Scheduling and classification
// fields are derived after every attempt and are never set by callers.
type MistakePattern struct {
	ID                 uuid.UUID      `json:"id"`
	UserID             uuid.UUID      `json:"user_id"`
	ConceptFingerprint string         `json:"concept_fingerprint"`
	Topic              string         `json:"topic"`
	Difficulty         Difficulty     `json:"difficulty"`
	MistakeCount       int            `json:"mistake_count"`
	CorrectCount       int            `json:"correct_count"`
	ConsecutiveCorrect int            `json:"consecutive_correct"`
	LastMistakeAt      *time.Time     `json:"last_mistake_at"`
	LastCorrectAt      *time.Time     `json:"last_correct_at"`
	NextReviewAt       time.Time      `json:"next_review_at"`
	ReviewInterval     int            `json:"review_interval"`
	EaseFactor         float64        `json:"ease_factor"`
	RelatedQuestions   AttemptHistory `json:"related_questions"`
	CommonErrors       []CommonError  `json:"common_errors"`
	ImprovementScore   int            `json:"improvement_score"`
	IsImproving        bool           `json:"is_improving"`
	Priority           Priority       `json:"priority"`
	MasteryLevel       MasteryLevel   `json:"mastery_level"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// NewMistakePattern creates a concept record with zeroed counters, due now.
func NewMistakePattern(
	userID uuid.UUID,
	fingerprint, topic string,
	difficulty Difficulty,
	now time.Time,
) (*MistakePattern, error) {
	if difficulty == "" {
		difficulty = DifficultyMedium
	}
	p := &MistakePattern{
		ID:                 uuid.New(),
		UserID:             userID,
		ConceptFingerprint: fingerprint,
		Topic:              strings.TrimSpace(topic),
		Difficulty:         difficulty,
		NextReviewAt:       now,
		ReviewInterval:     1,
		EaseFactor:         DefaultEaseFactor,
		CommonErrors:       []CommonError{},
		Priority:           PriorityMedium,
		MasteryLevel:       MasteryStruggling,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the concept record invariants.
func (p *MistakePattern) Validate() error {
	if p.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrInvalidID)
	}
	if p.ConceptFingerprint == "" {
		return NewValidationError("concept_fingerprint", "cannot be empty", ErrEmptyContent)
	}
	if p.Topic == "" {
		return NewValidationError("topic", "cannot be empty", ErrEmptyContent)
	}
	if !p.Difficulty.Valid() {
		return NewValidationError("difficulty", "must be Easy, Medium or Hard", ErrInvalidEnum)
	}
	if p.MistakeCount < 0 || p.CorrectCount < 0 || p.ConsecutiveCorrect < 0 {
		return NewValidationError("counters", "cannot be negative", ErrOutOfRange)
	}
	if p.ReviewInterval < 1 {
		return NewValidationError("review_interval", "must be at least 1 day", ErrOutOfRange)
	}
	if p.EaseFactor < MinEaseFactor || p.EaseFactor > MaxEaseFactor {
		return NewValidationError("ease_factor", "must be between 1.3 and 2.5", ErrOutOfRange)
	}
	return nil
}

// Attempts returns the total number of recorded attempts.
func (p *MistakePattern) Attempts() int {
	return p.CorrectCount + p.MistakeCount
}

// AccuracyRate returns the share of correct attempts, or 0 with none.
func (p *MistakePattern) AccuracyRate() float64 {
	total := p.Attempts()
	if total == 0 {
		return 0
	}
	return float64(p.CorrectCount) / float64(total)
}

// IsDue reports whether the concept should be reviewed at now.
func (p *MistakePattern) IsDue(now time.Time) bool {
	return !p.NextReviewAt.After(now)
}

// AddCommonError increments the occurrences of errType, appending a new
// entry the first time it is seen.
func (p *MistakePattern) AddCommonError(errType ErrorType) {
	for i := range p.CommonErrors {
		if p.CommonErrors[i].ErrorType == errType {
			p.CommonErrors[i].Occurrences++
			return
		}
	}
	p.CommonErrors = append(p.CommonErrors, CommonError{
		ErrorType:   errType,
		Description: errType.Description(),
		Occurrences: 1,
	})
}

// Clone returns a deep copy.
func (p *MistakePattern) Clone() *MistakePattern {
	c := *p
	if p.LastMistakeAt != nil {
		t := *p.LastMistakeAt
		c.LastMistakeAt = &t
	}
	if p.LastCorrectAt != nil {
		t := *p.LastCorrectAt
		c.LastCorrectAt = &t
	}
	c.RelatedQuestions = NewAttemptHistory(p.RelatedQuestions.Entries()...)
	c.CommonErrors = make([]CommonError, len(p.CommonErrors))
	copy(c.CommonErrors, p.CommonErrors)
	return &c
}
