package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/prep-api/internal/domain"
)

// ErrNilPattern is returned when no concept record is supplied.
var ErrNilPattern = errors.New("mistake pattern cannot be nil")

// Service applies attempts to concept records.
type Service interface {
	// ApplyAttempt returns the concept record after attempt, recomputing
	// every derived field. prior is left unchanged.
	ApplyAttempt(prior *domain.MistakePattern, attempt Attempt, now time.Time) (*domain.MistakePattern, error)
}

type defaultService struct {
	params *Params
}

// NewDefaultService creates a Service with NewDefaultParams.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a Service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

func (s *defaultService) ApplyAttempt(
	prior *domain.MistakePattern,
	attempt Attempt,
	now time.Time,
) (*domain.MistakePattern, error) {
	if prior == nil {
		return nil, ErrNilPattern
	}
	return applyAttempt(prior, attempt, now, s.params), nil
}
