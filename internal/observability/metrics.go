// Package observability exposes Prometheus metrics for the HTTP server and
// proposal generation.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the application.
type Metrics struct {
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	proposalsTotal    *prometheus.CounterVec
	proposalFailures  *prometheus.CounterVec
	proposalDuration  *prometheus.HistogramVec
	assetsUnavailable prometheus.Counter
}

// NewMetrics initialises the registry and all collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roofrecharge_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roofrecharge_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	proposals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roofrecharge_proposals_generated_total",
		Help: "Proposals generated by layout and output format.",
	}, []string{"layout", "format"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roofrecharge_proposal_failures_total",
		Help: "Failed proposal generations by stage.",
	}, []string{"stage"})
	generation := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roofrecharge_proposal_generation_seconds",
		Help:    "Time spent generating one proposal.",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"format"})
	assets := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roofrecharge_assets_unavailable_total",
		Help: "Static assets skipped because they could not be loaded.",
	})
	registry.MustRegister(requests, duration, proposals, failures, generation, assets)
	return &Metrics{
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:     requests,
		requestDuration:   duration,
		proposalsTotal:    proposals,
		proposalFailures:  failures,
		proposalDuration:  generation,
		assetsUnavailable: assets,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveProposal records one successful generation.
func (m *Metrics) ObserveProposal(layout, format string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.proposalsTotal.WithLabelValues(layout, format).Inc()
	m.proposalDuration.WithLabelValues(format).Observe(elapsed.Seconds())
}

// ProposalFailed counts a generation that failed at stage.
func (m *Metrics) ProposalFailed(stage string) {
	if m == nil {
		return
	}
	m.proposalFailures.WithLabelValues(stage).Inc()
}

// AssetUnavailable counts a skipped asset.
func (m *Metrics) AssetUnavailable() {
	if m == nil {
		return
	}
	m.assetsUnavailable.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
