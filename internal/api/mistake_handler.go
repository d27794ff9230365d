package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/prep-api/internal/api/shared"
	"github.com/phrazzld/prep-api/internal/domain"
	"github.com/phrazzld/prep-api/internal/platform/logger"
	"github.com/phrazzld/prep-api/internal/service"
)

// MistakeHandler serves concept tracking endpoints.
type MistakeHandler struct {
	mistakes service.MistakeService
	logger   *slog.Logger
}

// NewMistakeHandler creates a MistakeHandler.
func NewMistakeHandler(mistakes service.MistakeService, logger *slog.Logger) *MistakeHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for MistakeHandler")
	}
	return &MistakeHandler{
		mistakes: mistakes,
		logger:   logger.With(slog.String("component", "mistake_handler")),
	}
}

// RecordAttempt handles POST /api/mistakes/attempts.
func (h *MistakeHandler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req RecordAttemptRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	concept, err := h.mistakes.RecordAttempt(r.Context(), service.AttemptInput{
		UserID:         userID,
		QuestionText:   req.QuestionText,
		Topic:          req.Topic,
		Difficulty:     req.Difficulty,
		IsCorrect:      *req.IsCorrect,
		QuestionID:     req.QuestionID,
		UserAnswer:     req.UserAnswer,
		ExpectedAnswer: req.ExpectedAnswer,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record attempt")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, concept)
}

// WeakConcepts handles GET /api/mistakes/weak.
func (h *MistakeHandler) WeakConcepts(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.mistakes.WeakConcepts, "Failed to load weak concepts")
}

// DueForReview handles GET /api/mistakes/due.
func (h *MistakeHandler) DueForReview(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.mistakes.DueForReview, "Failed to load concepts due for review")
}

type conceptLister func(ctx context.Context, userID uuid.UUID, limit int) ([]domain.MistakePattern, error)

func (h *MistakeHandler) list(w http.ResponseWriter, r *http.Request, fetch conceptLister, failure string) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	concepts, err := fetch(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ConceptListResponse{Concepts: concepts, Count: len(concepts)})
}

// Stats handles GET /api/mistakes/stats.
func (h *MistakeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	stats, err := h.mistakes.Stats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}
