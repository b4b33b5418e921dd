package app

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/klabast/wb-services/advent-kalender/internal/calendar"
	"github.com/klabast/wb-services/advent-kalender/internal/snow"
)

// Metrics holds the server's Prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	opened   *prometheus.CounterVec
	notices  *prometheus.CounterVec
	entries  prometheus.Gauge
}

// NewMetrics registers the calendar collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		opened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advent_windows_opened_total",
				Help: "Windows opened, split by first opening or revisit",
			},
			[]string{"first"},
		),
		notices: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advent_notices_total",
				Help: "Notices shown to users",
			},
			[]string{"kind"},
		),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "advent_content_entries",
			Help: "Day entries in the loaded content document",
		}),
	}

	m.registry.MustRegister(m.requests, m.duration, m.opened, m.notices, m.entries)
	return m
}

// WatchSnow exports the live particle count of f
func (m *Metrics) WatchSnow(f *snow.Field) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "advent_snow_particles",
			Help: "Snow particles currently in the field",
		},
		func() float64 { return float64(f.Len()) },
	))
}

// ObserveOpen counts a successful open; it matches calendar.OpenFunc
func (m *Metrics) ObserveOpen(_ string, _ int, first bool) {
	m.opened.WithLabelValues(strconv.FormatBool(first)).Inc()
}

// ObserveNotice counts a notice by its kind
func (m *Metrics) ObserveNotice(err error) {
	var gateErr *calendar.GateError
	var missing *calendar.NoContentError
	switch {
	case errors.As(err, &gateErr):
		m.notices.WithLabelValues(OpenStatusLocked).Inc()
	case errors.As(err, &missing):
		m.notices.WithLabelValues(OpenStatusNoContent).Inc()
	}
}

// Handler exposes the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := wrapWriter(w)

		next.ServeHTTP(sw, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		m.requests.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		m.duration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
