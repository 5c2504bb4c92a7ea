package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	HTTPInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "studio_api",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studio_api",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "studio_api",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	LineItemsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studio_api",
			Subsystem: "billing",
			Name:      "line_items_created_total",
			Help:      "Line items added to invoices, by billable kind.",
		},
		[]string{"kind"},
	)

	LineItemsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "studio_api",
			Subsystem: "billing",
			Name:      "line_items_deleted_total",
			Help:      "Line items removed from invoices.",
		},
	)

	MailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studio_api",
			Subsystem: "mail",
			Name:      "sent_total",
			Help:      "Outgoing mails by transport and result.",
		},
		[]string{"transport", "success"},
	)

	TokensPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "studio_api",
			Subsystem: "auth",
			Name:      "verification_tokens_purged_total",
			Help:      "Expired verification tokens removed by the purge job.",
		},
	)
)

func init() {
	Registry.MustRegister(
		HTTPInFlight,
		HTTPRequests,
		HTTPDuration,
		LineItemsCreated,
		LineItemsDeleted,
		MailsSent,
		TokensPurged,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
