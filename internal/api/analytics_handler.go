package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/prep-api/internal/api/shared"
	"github.com/phrazzld/prep-api/internal/platform/logger"
	"github.com/phrazzld/prep-api/internal/service"
)

// AnalyticsHandler serves the readiness and knowledge gap dashboards.
type AnalyticsHandler struct {
	dashboards service.DashboardService
	logger     *slog.Logger
}

// NewAnalyticsHandler creates an AnalyticsHandler.
func NewAnalyticsHandler(dashboards service.DashboardService, logger *slog.Logger) *AnalyticsHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AnalyticsHandler")
	}
	return &AnalyticsHandler{
		dashboards: dashboards,
		logger:     logger.With(slog.String("component", "analytics_handler")),
	}
}

// Readiness handles GET /api/analytics/readiness.
func (h *AnalyticsHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	readiness, err := h.dashboards.Readiness(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to calculate readiness")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, readiness)
}

// KnowledgeGaps handles GET /api/analytics/knowledge-gaps.
func (h *AnalyticsHandler) KnowledgeGaps(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	gaps, err := h.dashboards.KnowledgeGaps(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to analyse knowledge gaps")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, gaps)
}
