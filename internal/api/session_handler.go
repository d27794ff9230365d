package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/prep-api/internal/api/shared"
	"github.com/phrazzld/prep-api/internal/platform/logger"
	"github.com/phrazzld/prep-api/internal/service"
)

// SessionHandler serves practice session endpoints.
type SessionHandler struct {
	sessions service.SessionService
	logger   *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessions service.SessionService, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}
	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// CreateSession handles POST /api/sessions.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.sessions.Create(r.Context(), service.CreateSessionInput{
		UserID:      userID,
		Role:        req.Role,
		Experience:  req.Experience,
		FocusAreas:  req.FocusAreas,
		Description: req.Description,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, SessionResponse{
		Session:               result.Session,
		GeneratedWithFallback: result.GeneratedWithFallback,
	})
}

// ListSessions handles GET /api/sessions.
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	sessions, err := h.sessions.List(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list sessions")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, SessionListResponse{Sessions: sessions, Count: len(sessions)})
}

// GetSession handles GET /api/sessions/{id}.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	session, err := h.sessions.Get(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{Session: session})
}

// DeleteSession handles DELETE /api/sessions/{id}.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.sessions.Delete(r.Context(), userID, sessionID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete session")
		return
	}

	log.Debug("session deleted", slog.String("session_id", sessionID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// AddQuestions handles POST /api/sessions/{id}/questions. An empty body or
// question list generates new questions.
func (h *SessionHandler) AddQuestions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req AddQuestionsRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	inputs := make([]service.QuestionInput, len(req.Questions))
	for i, q := range req.Questions {
		inputs[i] = service.QuestionInput{
			Question:   q.Question,
			Answer:     q.Answer,
			Topic:      q.Topic,
			Difficulty: q.Difficulty,
		}
	}

	result, err := h.sessions.AddQuestions(r.Context(), userID, sessionID, inputs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add questions")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{
		Session:               result.Session,
		GeneratedWithFallback: result.GeneratedWithFallback,
	})
}
