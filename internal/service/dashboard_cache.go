package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/prep-api/internal/platform/cache"
	"github.com/phrazzld/prep-api/internal/platform/logger"
	"github.com/phrazzld/prep-api/internal/redact"
)

// invalidateDashboard drops userID's cached dashboards. A failure only
// leaves stale entries until their TTL expires, so it is logged and not
// returned.
func invalidateDashboard(ctx context.Context, c cache.Cache, fallback *slog.Logger, userID uuid.UUID) {
	if err := c.Delete(ctx, cache.DashboardKeys(userID)...); err != nil {
		logger.FromContextOrDefault(ctx, fallback).Warn("failed to invalidate dashboard cache",
			redact.ErrorAttr(err),
			slog.String("user_id", userID.String()))
	}
}

func orNoopCache(c cache.Cache) cache.Cache {
	if c == nil {
		return cache.Noop{}
	}
	return c
}
