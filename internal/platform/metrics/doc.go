// Package metrics defines the service's prometheus collectors and the HTTP
// middleware that feeds request counts and latencies into them.
//
// Collectors are registered on an explicit registry so that tests can use
// a fresh prometheus.NewRegistry instead of the global default.
package metrics
