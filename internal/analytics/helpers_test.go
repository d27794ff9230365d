package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/prep-api/internal/domain"
)

type questionSpec struct {
	topic      string
	difficulty domain.Difficulty
	answered   bool
	correct    bool
	pinned     bool
}

func buildSession(role string, focus []string, updated time.Time, specs ...questionSpec) domain.Session {
	s := domain.Session{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		Role:       role,
		Experience: "mid",
		FocusAreas: focus,
		UpdatedAt:  updated,
		CreatedAt:  updated,
	}
	for i, spec := range specs {
		q := domain.Question{
			ID:         uuid.New(),
			SessionID:  s.ID,
			Position:   i,
			Question:   "question",
			Answer:     "answer",
			Topic:      spec.topic,
			Difficulty: spec.difficulty,
			IsPinned:   spec.pinned,
		}
		if spec.answered {
			correct := spec.correct
			q.UserAnswer = "my answer"
			q.IsCorrect = &correct
		}
		s.Questions = append(s.Questions, q)
	}
	return s
}

func repeatSpec(n int, spec questionSpec) []questionSpec {
	out := make([]questionSpec, n)
	for i := range out {
		out[i] = spec
	}
	return out
}
