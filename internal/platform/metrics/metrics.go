package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "prep"

// Attempt outcomes.
const (
	OutcomeCorrect   = "correct"
	OutcomeIncorrect = "incorrect"
)

// Generation operations.
const (
	OpQuestions   = "questions"
	OpExplanation = "explanation"
	OpEvaluation  = "evaluation"
)

// Recorder receives domain events worth counting.
type Recorder interface {
	// AttemptRecorded counts one recorded attempt.
	AttemptRecorded(correct bool)
	// GenerationFallback counts content served from a fallback.
	GenerationFallback(operation string)
	// UpstreamFailure counts a failed call to the generative provider.
	UpstreamFailure(operation string)
	// AuthAttempt counts a login, registration or OAuth sign-in.
	AuthAttempt(method string, success bool)
}

// Metrics holds the registered collectors.
type Metrics struct {
	registry prometheus.Gatherer

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	attempts         *prometheus.CounterVec
	fallbacks        *prometheus.CounterVec
	upstreamFailures *prometheus.CounterVec
	authAttempts     *prometheus.CounterVec
}

var _ Recorder = (*Metrics)(nil)

// New registers the collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Time spent serving HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attempts_recorded_total",
				Help:      "Total number of concept attempts recorded",
			},
			[]string{"outcome"},
		),
		fallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_fallbacks_total",
				Help:      "Total number of responses served from fallback content",
			},
			[]string{"operation"},
		),
		upstreamFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_upstream_failures_total",
				Help:      "Total number of failed generative provider calls",
			},
			[]string{"operation"},
		),
		authAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_attempts_total",
				Help:      "Total number of authentication attempts",
			},
			[]string{"method", "status"},
		),
	}
}

// AttemptRecorded implements Recorder.
func (m *Metrics) AttemptRecorded(correct bool) {
	outcome := OutcomeIncorrect
	if correct {
		outcome = OutcomeCorrect
	}
	m.attempts.WithLabelValues(outcome).Inc()
}

// GenerationFallback implements Recorder.
func (m *Metrics) GenerationFallback(operation string) {
	m.fallbacks.WithLabelValues(operation).Inc()
}

// UpstreamFailure implements Recorder.
func (m *Metrics) UpstreamFailure(operation string) {
	m.upstreamFailures.WithLabelValues(operation).Inc()
}

// AuthAttempt implements Recorder.
func (m *Metrics) AuthAttempt(method string, success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	m.authAttempts.WithLabelValues(method, status).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records a count and latency for every request, labelled with
// the matched chi route pattern rather than the raw path.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := routePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// Discard is a Recorder that drops every event.
type Discard struct{}

var _ Recorder = Discard{}

// AttemptRecorded implements Recorder.
func (Discard) AttemptRecorded(bool) {}

// GenerationFallback implements Recorder.
func (Discard) GenerationFallback(string) {}

// UpstreamFailure implements Recorder.
func (Discard) UpstreamFailure(string) {}

// AuthAttempt implements Recorder.
func (Discard) AuthAttempt(string, bool) {}
