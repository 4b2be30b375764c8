// Package metrics exposes Prometheus collectors for HTTP traffic and the
// loyalty, package and cash-flow events of the salon.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "salon"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	loyaltyEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loyalty",
			Name:      "events_total",
			Help:      "Stamps awarded or reverted, cards completed, mimos redeemed and cards reset.",
		},
		[]string{"event"},
	)

	packageCredits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "packages",
			Name:      "events_total",
			Help:      "Package sales, reversals, consumed credits and expirations.",
		},
		[]string{"event"},
	)

	cashFlow = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cashflow",
			Name:      "amount_total",
			Help:      "Sum of amounts written to the financial ledger.",
		},
		[]string{"type", "category"},
	)

	unresolvedClients = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "unresolved_clients_total",
			Help:      "Completed appointments whose client could not be resolved.",
		},
	)
)

// Loyalty event labels.
const (
	EventStampAwarded  = "stamp_awarded"
	EventStampReverted = "stamp_reverted"
	EventCardCompleted = "card_completed"
	EventMimoRedeemed  = "mimo_redeemed"
	EventCardReset     = "card_reset"
)

// Package event labels.
const (
	EventPackageSold     = "sold"
	EventPackageReversed = "reversed"
	EventCreditConsumed  = "credit_consumed"
	EventPackageUtilized = "utilized"
	EventPackageExpired  = "expired"
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		loyaltyEvents,
		packageCredits,
		cashFlow,
		unresolvedClients,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request count and latency per route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordLoyalty counts one loyalty event.
func RecordLoyalty(event string) {
	loyaltyEvents.WithLabelValues(event).Inc()
}

// RecordPackage counts n package events.
func RecordPackage(event string, n int) {
	if n <= 0 {
		return
	}
	packageCredits.WithLabelValues(event).Add(float64(n))
}

// RecordTransaction adds a ledger amount.
func RecordTransaction(txType, category string, amount decimal.Decimal) {
	f, _ := amount.Float64()
	if f < 0 {
		return
	}
	cashFlow.WithLabelValues(txType, category).Add(f)
}

// RecordUnresolvedClient counts a completion that skipped loyalty processing.
func RecordUnresolvedClient() {
	unresolvedClients.Inc()
}
