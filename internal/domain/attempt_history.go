package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MaxAttemptHistory is the number of attempts an AttemptHistory retains.
const MaxAttemptHistory = 10

// AttemptRecord is one answer to a concept.
type AttemptRecord struct {
	QuestionID  *uuid.UUID `json:"question_id,omitempty"`
	WasCorrect  bool       `json:"was_correct"`
	AttemptedAt time.Time  `json:"attempted_at"`
}

// AttemptHistory keeps the most recent MaxAttemptHistory attempts in
// chronological order. Appending beyond capacity evicts the oldest entry.
// The zero value is an empty history.
type AttemptHistory struct {
	entries []AttemptRecord
}

// NewAttemptHistory builds a history from records in chronological order,
// keeping only the newest MaxAttemptHistory.
func NewAttemptHistory(records ...AttemptRecord) AttemptHistory {
	var h AttemptHistory
	for _, r := range records {
		h = h.Append(r)
	}
	return h
}

// Append returns a new history with r added as the newest entry.
func (h AttemptHistory) Append(r AttemptRecord) AttemptHistory {
	start := 0
	if len(h.entries) >= MaxAttemptHistory {
		start = len(h.entries) - MaxAttemptHistory + 1
	}
	next := make([]AttemptRecord, 0, MaxAttemptHistory)
	next = append(next, h.entries[start:]...)
	next = append(next, r)
	return AttemptHistory{entries: next}
}

// Len returns the number of retained attempts.
func (h AttemptHistory) Len() int {
	return len(h.entries)
}

// Entries returns a copy of all retained attempts, oldest first.
func (h AttemptHistory) Entries() []AttemptRecord {
	return h.Recent(len(h.entries))
}

// Recent returns a copy of the newest n attempts, oldest first.
func (h AttemptHistory) Recent(n int) []AttemptRecord {
	if n > len(h.entries) {
		n = len(h.entries)
	}
	if n <= 0 {
		return []AttemptRecord{}
	}
	out := make([]AttemptRecord, n)
	copy(out, h.entries[len(h.entries)-n:])
	return out
}

// MarshalJSON encodes the history as a plain array.
func (h AttemptHistory) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Entries())
}

// UnmarshalJSON decodes an array, applying the capacity limit.
func (h *AttemptHistory) UnmarshalJSON(data []byte) error {
	var records []AttemptRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	*h = NewAttemptHistory(records...)
	return nil
}
