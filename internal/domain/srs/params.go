package srs

import "github.com/phrazzld/prep-api/internal/domain"

// Params holds the tunable constants of the scheduler and classifiers.
type Params struct {
	MinEaseFactor float64
	MaxEaseFactor float64

	// Quality assigned to a binary outcome.
	CorrectQuality   int
	IncorrectQuality int

	// Quality below PassingQuality counts as a miss.
	PassingQuality int

	// Intervals in days for the first and second consecutive hit.
	FirstInterval  int
	SecondInterval int

	// ImprovementWindow is how many recent attempts the improvement
	// tracker inspects.
	ImprovementWindow int
}

// NewDefaultParams returns the SM-2 derived defaults.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:     domain.MinEaseFactor,
		MaxEaseFactor:     domain.MaxEaseFactor,
		CorrectQuality:    4,
		IncorrectQuality:  1,
		PassingQuality:    3,
		FirstInterval:     1,
		SecondInterval:    6,
		ImprovementWindow: 5,
	}
}

// QualityFor maps a binary outcome to an SM-2 quality grade.
func (p *Params) QualityFor(correct bool) int {
	if correct {
		return p.CorrectQuality
	}
	return p.IncorrectQuality
}
