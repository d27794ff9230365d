// Package cache stores derived dashboard payloads (readiness scores and
// knowledge gaps) so repeated reads do not recompute them from every
// session a user owns.
//
// Two implementations are provided. Redis keeps JSON-encoded values in a
// redis server with a fixed TTL. Noop never stores anything and is used
// when no redis address is configured, so callers never need to branch on
// whether caching is enabled.
package cache
