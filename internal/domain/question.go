package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTopic is assigned to questions generated or added without a topic.
const DefaultTopic = "General"

// Question is one question/answer pair inside a session.
type Question struct {
	ID                 uuid.UUID  `json:"id"`
	SessionID          uuid.UUID  `json:"session_id"`
	Position           int        `json:"position"`
	Question           string     `json:"question"`
	Answer             string     `json:"answer"`
	UserAnswer         string     `json:"user_answer"`
	IsCorrect          *bool      `json:"is_correct"`
	IsPinned           bool       `json:"is_pinned"`
	Notes              string     `json:"notes"`
	ConceptExplanation string     `json:"concept_explanation"`
	Topic              string     `json:"topic"`
	Difficulty         Difficulty `json:"difficulty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NewQuestion creates a question for sessionID. Empty topic and difficulty
// fall back to General and Medium.
func NewQuestion(sessionID uuid.UUID, text, answer, topic string, difficulty Difficulty) (*Question, error) {
	if strings.TrimSpace(topic) == "" {
		topic = DefaultTopic
	}
	if difficulty == "" {
		difficulty = DifficultyMedium
	}

	now := time.Now().UTC()
	q := &Question{
		ID:         uuid.New(),
		SessionID:  sessionID,
		Question:   strings.TrimSpace(text),
		Answer:     strings.TrimSpace(answer),
		Topic:      strings.TrimSpace(topic),
		Difficulty: difficulty,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// Validate checks the question invariants.
func (q *Question) Validate() error {
	if q.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if q.SessionID == uuid.Nil {
		return NewValidationError("session_id", "cannot be empty", ErrInvalidID)
	}
	if q.Question == "" {
		return NewValidationError("question", "cannot be empty", ErrEmptyContent)
	}
	if q.Answer == "" {
		return NewValidationError("answer", "cannot be empty", ErrEmptyContent)
	}
	if !q.Difficulty.Valid() {
		return NewValidationError("difficulty", "must be Easy, Medium or Hard", ErrInvalidEnum)
	}
	return nil
}

// IsAnswered reports whether the user has submitted an answer.
func (q *Question) IsAnswered() bool {
	return strings.TrimSpace(q.UserAnswer) != ""
}

// AnsweredCorrectly reports whether the question was graded correct.
func (q *Question) AnsweredCorrectly() bool {
	return q.IsCorrect != nil && *q.IsCorrect
}

// TogglePin flips the pinned flag.
func (q *Question) TogglePin(now time.Time) {
	q.IsPinned = !q.IsPinned
	q.UpdatedAt = now
}

// SetNotes replaces the user's notes.
func (q *Question) SetNotes(notes string, now time.Time) {
	q.Notes = notes
	q.UpdatedAt = now
}

// RecordAnswer stores the user's answer with its grade.
func (q *Question) RecordAnswer(userAnswer string, correct bool, now time.Time) {
	q.UserAnswer = userAnswer
	q.IsCorrect = &correct
	q.UpdatedAt = now
}

// SetExplanation caches a generated concept explanation.
func (q *Question) SetExplanation(explanation string, now time.Time) {
	q.ConceptExplanation = explanation
	q.UpdatedAt = now
}
