// Package server — metrics.go registers all Prometheus metrics for the HTTP
// server and exposes helpers used by handlers and middleware.
package server

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/54b3r/aimicro-go/internal/apperr"
)

// Metric label values shared across registrations.
const (
	// labelHandler is the "handler" label value used to partition metrics by
	// the logical endpoint name rather than the raw URL path.
	labelHandler = "handler"
)

// Service call outcomes used as the "outcome" label.
const (
	outcomeOK           = "ok"
	outcomeInvalid      = "invalid"
	outcomePrecondition = "precondition"
	outcomeError        = "error"
)

// serverMetrics holds all Prometheus metrics owned by the HTTP server.
// A single instance is created in New and stored on Server so that tests can
// inject a fresh prometheus.Registry without polluting the default one.
type serverMetrics struct {
	// serviceRequestsTotal counts completed service calls, partitioned by
	// handler and outcome.
	serviceRequestsTotal *prometheus.CounterVec

	// serviceDurationSeconds records the wall-clock duration of each service
	// call (model, retrieval, and ingestion time).
	serviceDurationSeconds *prometheus.HistogramVec

	// indexPassages is the number of passages in the most recently
	// uploaded document's index.
	indexPassages prometheus.Gauge

	// httpRequestsTotal counts all HTTP requests handled by the mux,
	// partitioned by method, handler, and status code.
	httpRequestsTotal *prometheus.CounterVec

	// httpDurationSeconds records the latency of all HTTP requests.
	httpDurationSeconds *prometheus.HistogramVec
}

// newServerMetrics registers all server metrics against reg and returns the
// populated serverMetrics. promauto.With(reg) is used so that each call
// registers into the provided registry rather than the global default.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		serviceRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aimicro",
			Subsystem: "service",
			Name:      "requests_total",
			Help:      "Total number of service calls completed, partitioned by handler and outcome.",
		}, []string{labelHandler, "outcome"}),

		serviceDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aimicro",
			Subsystem: "service",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of service calls, including model and embedding time.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{labelHandler}),

		indexPassages: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "aimicro",
			Subsystem: "index",
			Name:      "passages",
			Help:      "Number of passages in the index built by the last successful upload.",
		}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aimicro",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the server, partitioned by method, handler, and status code.",
		}, []string{"method", labelHandler, "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aimicro",
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of HTTP requests handled by the server.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", labelHandler}),
	}
}

// observe records one service call for handler.
func (m *serverMetrics) observe(handler string, start time.Time, err error) {
	m.serviceRequestsTotal.WithLabelValues(handler, outcome(err)).Inc()
	m.serviceDurationSeconds.WithLabelValues(handler).Observe(time.Since(start).Seconds())
}

// outcome classifies err for the "outcome" label.
func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, apperr.ErrInvalidInput):
		return outcomeInvalid
	case errors.Is(err, apperr.ErrPrecondition):
		return outcomePrecondition
	default:
		return outcomeError
	}
}
