// Package metrics collects Prometheus metrics for the HTTP surface and the
// session lifecycle.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels of vidtube_session_events_total.
const (
	ResultOK              = "ok"
	ResultUnauthenticated = "unauthenticated"
	ResultReplayed        = "replayed"
	ResultInvalid         = "invalid"
	ResultError           = "error"
)

type Collector struct {
	sessionEvents *prometheus.CounterVec
	httpStatus    *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
	rateLimited   prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidtube_session_events_total",
			Help: "Session operations by operation and result.",
		}, []string{"op", "result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidtube_http_status_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vidtube_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidtube_rate_limited_total",
			Help: "Requests rejected by the login/refresh rate limiter.",
		}),
	}

	reg.MustRegister(c.sessionEvents, c.httpStatus, c.httpLatency, c.rateLimited)

	return c
}

// SessionEvent records the outcome of a session operation.
func (c *Collector) SessionEvent(op string, err error) {
	c.sessionEvents.WithLabelValues(op, resultOf(err)).Inc()
}

func (c *Collector) RecordHTTP(route string, statusCode int, d time.Duration) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(route).Observe(d.Seconds())
}

func (c *Collector) RecordRateLimited() {
	c.rateLimited.Inc()
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, common.ErrRefreshTokenUsed):
		return ResultReplayed
	case errors.Is(err, common.ErrorUnauthenticated):
		return ResultUnauthenticated
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorConflict):
		return ResultInvalid
	default:
		return ResultError
	}
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
