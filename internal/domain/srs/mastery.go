package srs

import (
	"time"

	"github.com/phrazzld/prep-api/internal/domain"
)

// MasteryInput holds the counters the mastery classifier reads.
type MasteryInput struct {
	CorrectCount       int
	MistakeCount       int
	ConsecutiveCorrect int
}

// ClassifyMastery derives a mastery level. Rules are checked strongest first
// and the first match wins.
func ClassifyMastery(in MasteryInput) domain.MasteryLevel {
	accuracy := 0.0
	if total := in.CorrectCount + in.MistakeCount; total > 0 {
		accuracy = float64(in.CorrectCount) / float64(total)
	}

	switch {
	case in.ConsecutiveCorrect >= 5 && accuracy >= 0.9:
		return domain.MasteryMastered
	case in.ConsecutiveCorrect >= 3 && accuracy >= 0.75:
		return domain.MasteryProficient
	case accuracy >= 0.6:
		return domain.MasteryPracticing
	case in.CorrectCount > 0:
		return domain.MasteryLearning
	default:
		return domain.MasteryStruggling
	}
}

// PriorityInput holds the fields the priority rules read besides mastery.
type PriorityInput struct {
	LastMistakeAt      *time.Time
	MistakeCount       int
	ConsecutiveCorrect int
	NextReviewAt       time.Time
}

// ClassifyPriority ranks review urgency. mastery must be the level computed
// from the same attempt.
func ClassifyPriority(in PriorityInput, mastery domain.MasteryLevel, now time.Time) domain.Priority {
	recentWithin := func(days float64) bool {
		if in.LastMistakeAt == nil {
			return false
		}
		return now.Sub(*in.LastMistakeAt).Hours()/24 < days
	}
	isDue := !in.NextReviewAt.After(now)

	if (recentWithin(7) && in.MistakeCount > 2) ||
		(isDue && mastery == domain.MasteryStruggling) ||
		(in.MistakeCount > 5 && in.ConsecutiveCorrect == 0) {
		return domain.PriorityHigh
	}

	if (recentWithin(14) && in.MistakeCount > 0) ||
		(isDue && (mastery == domain.MasteryLearning || mastery == domain.MasteryPracticing)) {
		return domain.PriorityMedium
	}

	return domain.PriorityLow
}
