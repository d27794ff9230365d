package srs

import (
	"math"

	"github.com/phrazzld/prep-api/internal/domain"
)

// Improvement is the trend over the most recent attempts.
type Improvement struct {
	Score       int
	IsImproving bool
}

// CalculateImprovement compares the success rate of the later half of
// recent against the earlier half. recent must be in chronological order.
// Fewer than two attempts yield a zero score.
func CalculateImprovement(recent []domain.AttemptRecord) Improvement {
	n := len(recent)
	if n < 2 {
		return Improvement{}
	}

	half := n / 2
	rate := func(records []domain.AttemptRecord) float64 {
		if len(records) == 0 {
			return 0
		}
		correct := 0
		for _, r := range records {
			if r.WasCorrect {
				correct++
			}
		}
		return float64(correct) / float64(len(records))
	}

	delta := (rate(recent[half:]) - rate(recent[:half])) * 100
	score := int(math.Round(delta + 50))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Improvement{Score: score, IsImproving: delta > 0.1}
}
