package domain

import "strings"

// Difficulty grades a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty accepts any casing. An empty string yields Medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DifficultyMedium, nil
	case "easy":
		return DifficultyEasy, nil
	case "medium":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	}
	return "", NewValidationError("difficulty", "must be Easy, Medium or Hard", ErrInvalidEnum)
}

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Priority ranks how urgently a concept should be reviewed.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Rank orders priorities, High first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// MasteryLevel is the learner's stage on a concept.
type MasteryLevel string

const (
	MasteryStruggling MasteryLevel = "Struggling"
	MasteryLearning   MasteryLevel = "Learning"
	MasteryPracticing MasteryLevel = "Practicing"
	MasteryProficient MasteryLevel = "Proficient"
	MasteryMastered   MasteryLevel = "Mastered"
)

// MasteryLevels lists every level from weakest to strongest.
var MasteryLevels = []MasteryLevel{
	MasteryStruggling,
	MasteryLearning,
	MasteryPracticing,
	MasteryProficient,
	MasteryMastered,
}

// ErrorType categorises a wrong answer for common-error bookkeeping.
type ErrorType string

const (
	ErrorIncompleteAnswer   ErrorType = "incomplete-answer"
	ErrorMissingExplanation ErrorType = "missing-explanation"
	ErrorTooBrief           ErrorType = "too-brief"
	ErrorMissingExamples    ErrorType = "missing-examples"
	ErrorConceptualGap      ErrorType = "conceptual-gap"
)

// Description returns the human-readable summary stored with the error.
func (e ErrorType) Description() string {
	switch e {
	case ErrorIncompleteAnswer:
		return "Answer covered less than half of the expected content"
	case ErrorMissingExplanation:
		return "Answer stated the result without explaining why"
	case ErrorTooBrief:
		return "Answer was too brief to demonstrate understanding"
	case ErrorMissingExamples:
		return "Answer did not include concrete examples"
	case ErrorConceptualGap:
		return "Answer misunderstood the underlying concept"
	}
	return string(e)
}
