package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/prep-api/internal/api/shared"
	"github.com/phrazzld/prep-api/internal/platform/logger"
	"github.com/phrazzld/prep-api/internal/service"
)

// QuestionHandler serves per-question endpoints.
type QuestionHandler struct {
	questions service.QuestionService
	logger    *slog.Logger
}

// NewQuestionHandler creates a QuestionHandler.
func NewQuestionHandler(questions service.QuestionService, logger *slog.Logger) *QuestionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for QuestionHandler")
	}
	return &QuestionHandler{
		questions: questions,
		logger:    logger.With(slog.String("component", "question_handler")),
	}
}

// TogglePin handles POST /api/questions/{id}/pin.
func (h *QuestionHandler) TogglePin(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, questionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	q, err := h.questions.TogglePin(r.Context(), userID, questionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update question")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, q)
}

// UpdateNote handles PUT /api/questions/{id}/note.
func (h *QuestionHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, questionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req NoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	q, err := h.questions.UpdateNote(r.Context(), userID, questionID, req.Note)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update question")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, q)
}

// SubmitAnswer handles POST /api/questions/{id}/answer.
func (h *QuestionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, questionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req AnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.questions.SubmitAnswer(r.Context(), userID, questionID, req.UserAnswer)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit answer")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, AnswerResponse{
		Question:   result.Question,
		Evaluation: result.Evaluation,
		Concept:    result.Concept,
	})
}

// Explain handles POST /api/questions/{id}/explanation.
func (h *QuestionHandler) Explain(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, questionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	result, err := h.questions.Explain(r.Context(), userID, questionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to explain question")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ExplanationResponse{
		QuestionID:  result.Question.ID,
		Explanation: result.Explanation,
		Fallback:    result.Fallback,
	})
}
