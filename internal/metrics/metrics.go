// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gastos"

// Recorder is what the services and middleware report to.
type Recorder interface {
	ObserveView(view string, d time.Duration)
	CacheLookup(view string, hit bool)
	TransactionWritten(op, status string)
	EventPublished(status string)
	ExportRun(status string, d time.Duration)
	HTTPRequest(method, route string, status int, d time.Duration)
	RateLimited()
}

type Metrics struct {
	viewDuration      *prometheus.HistogramVec
	cacheLookups      *prometheus.CounterVec
	transactionsTotal *prometheus.CounterVec
	eventsPublished   *prometheus.CounterVec
	exportRuns        *prometheus.CounterVec
	exportDuration    prometheus.Histogram
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	rateLimitedTotal  prometheus.Counter
}

// New registers the collectors with reg. Use prometheus.DefaultRegisterer in
// processes and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		viewDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "view_build_duration_seconds",
				Help:      "Time spent building a dashboard or cash-flow view",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"view"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "view_cache_lookups_total",
				Help:      "View cache lookups by result",
			},
			[]string{"view", "result"},
		),
		transactionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transaction_writes_total",
				Help:      "Transaction writes by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		eventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "change_events_published_total",
				Help:      "Transaction change events published to the broker",
			},
			[]string{"status"},
		),
		exportRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sheet_exports_total",
				Help:      "Cash-flow sheet exports by outcome",
			},
			[]string{"status"},
		),
		exportDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sheet_export_duration_seconds",
				Help:      "Cash-flow sheet export duration",
				Buckets:   prometheus.DefBuckets,
			},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "code"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		rateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
		),
	}
}

func (m *Metrics) ObserveView(view string, d time.Duration) {
	m.viewDuration.WithLabelValues(view).Observe(d.Seconds())
}

func (m *Metrics) CacheLookup(view string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(view, result).Inc()
}

func (m *Metrics) TransactionWritten(op, status string) {
	m.transactionsTotal.WithLabelValues(op, status).Inc()
}

func (m *Metrics) EventPublished(status string) {
	m.eventsPublished.WithLabelValues(status).Inc()
}

func (m *Metrics) ExportRun(status string, d time.Duration) {
	m.exportRuns.WithLabelValues(status).Inc()
	m.exportDuration.Observe(d.Seconds())
}

func (m *Metrics) HTTPRequest(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) RateLimited() {
	m.rateLimitedTotal.Inc()
}

// Handler serves the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Nop discards every observation.
type Nop struct{}

func (Nop) ObserveView(string, time.Duration)              {}
func (Nop) CacheLookup(string, bool)                       {}
func (Nop) TransactionWritten(string, string)              {}
func (Nop) EventPublished(string)                          {}
func (Nop) ExportRun(string, time.Duration)                {}
func (Nop) HTTPRequest(string, string, int, time.Duration) {}
func (Nop) RateLimited()                                   {}

var (
	_ Recorder = (*Metrics)(nil)
	_ Recorder = Nop{}
)
