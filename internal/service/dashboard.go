package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/prep-api/internal/analytics"
	"github.com/phrazzld/prep-api/internal/platform/cache"
	"github.com/phrazzld/prep-api/internal/platform/logger"
	"github.com/phrazzld/prep-api/internal/redact"
	"github.com/phrazzld/prep-api/internal/store"
)

// DashboardService serves the derived dashboards.
type DashboardService interface {
	// Readiness returns the user's interview readiness score.
	Readiness(ctx context.Context, userID uuid.UUID) (*analytics.Readiness, error)

	// KnowledgeGaps returns the user's per-topic strength report.
	KnowledgeGaps(ctx context.Context, userID uuid.UUID) (*analytics.KnowledgeGaps, error)
}

type dashboardServiceImpl struct {
	sessions store.SessionStore
	cache    cache.Cache
	logger   *slog.Logger
	now      func() time.Time
}

// NewDashboardService creates a DashboardService. A nil cache disables
// caching.
func NewDashboardService(
	sessions store.SessionStore,
	dashboardCache cache.Cache,
	logger *slog.Logger,
) (DashboardService, error) {
	if sessions == nil {
		return nil, NewServiceError("dashboard", "create_service", "sessions is required", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &dashboardServiceImpl{
		sessions: sessions,
		cache:    orNoopCache(dashboardCache),
		logger:   logger.With(slog.String("component", "dashboard_service")),
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *dashboardServiceImpl) Readiness(ctx context.Context, userID uuid.UUID) (*analytics.Readiness, error) {
	var readiness analytics.Readiness
	err := s.cached(ctx, cache.ReadinessKey(userID), &readiness, func() error {
		sessions, err := s.sessions.ListByUser(ctx, userID)
		if err != nil {
			return NewServiceError("dashboard", "readiness", "failed to list sessions", err)
		}
		readiness = analytics.CalculateReadiness(sessions, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &readiness, nil
}

func (s *dashboardServiceImpl) KnowledgeGaps(
	ctx context.Context,
	userID uuid.UUID,
) (*analytics.KnowledgeGaps, error) {
	var gaps analytics.KnowledgeGaps
	err := s.cached(ctx, cache.KnowledgeGapsKey(userID), &gaps, func() error {
		sessions, err := s.sessions.ListByUser(ctx, userID)
		if err != nil {
			return NewServiceError("dashboard", "knowledge_gaps", "failed to list sessions", err)
		}
		gaps = analytics.AnalyzeKnowledgeGaps(sessions)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &gaps, nil
}

// cached fills dest from key, or runs compute (which must fill dest) and
// stores the result. Cache failures degrade to recomputation.
func (s *dashboardServiceImpl) cached(ctx context.Context, key string, dest any, compute func() error) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		log.Warn("dashboard cache read failed", redact.ErrorAttr(err), slog.String("key", key))
	}
	if found && err == nil {
		return nil
	}

	if err := compute(); err != nil {
		return err
	}

	if err := s.cache.Set(ctx, key, dest); err != nil {
		log.Warn("dashboard cache write failed", redact.ErrorAttr(err), slog.String("key", key))
	}
	return nil
}
