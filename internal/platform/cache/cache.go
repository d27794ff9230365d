package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrCacheUnavailable is returned when the backing server cannot be reached.
var ErrCacheUnavailable = errors.New("cache unavailable")

// Cache is a JSON value cache keyed by string.
type Cache interface {
	// Get decodes the value stored at key into dest. It reports false when
	// the key is absent.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value at key using the cache's default TTL.
	Set(ctx context.Context, key string, value any) error

	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}

// Dashboard cache keys.
const (
	readinessKind     = "readiness"
	knowledgeGapsKind = "knowledge_gaps"
)

// ReadinessKey is the key holding a user's readiness score.
func ReadinessKey(userID uuid.UUID) string {
	return dashboardKey(readinessKind, userID)
}

// KnowledgeGapsKey is the key holding a user's knowledge-gap report.
func KnowledgeGapsKey(userID uuid.UUID) string {
	return dashboardKey(knowledgeGapsKind, userID)
}

// DashboardKeys returns every dashboard key for userID.
func DashboardKeys(userID uuid.UUID) []string {
	return []string{ReadinessKey(userID), KnowledgeGapsKey(userID)}
}

func dashboardKey(kind string, userID uuid.UUID) string {
	return fmt.Sprintf("prep:dashboard:%s:%s", kind, userID)
}

// Noop is a Cache that never stores anything.
type Noop struct{}

var _ Cache = Noop{}

// Get always reports a miss.
func (Noop) Get(context.Context, string, any) (bool, error) {
	return false, nil
}

// Set discards the value.
func (Noop) Set(context.Context, string, any) error {
	return nil
}

// Delete does nothing.
func (Noop) Delete(context.Context, ...string) error {
	return nil
}
