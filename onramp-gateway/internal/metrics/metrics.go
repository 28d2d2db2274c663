package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderQuotesTotal counts quote attempts per provider by outcome
	// (ok | ineligible | timeout | provider_rejected | network | unknown).
	ProviderQuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onramp_provider_quotes_total",
			Help: "Total number of provider quote attempts by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	// ProviderQuoteDuration measures a single provider quote call, including the deadline race.
	ProviderQuoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onramp_provider_quote_duration_seconds",
			Help:    "Duration of provider quote calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"provider"},
	)

	// AggregateDuration measures one full fan-out.
	AggregateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onramp_quote_aggregate_duration_seconds",
			Help:    "Duration of quote aggregation in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"result"}, // quoted | empty
	)

	// RedirectsTotal counts redirect builds by provider and result.
	RedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onramp_redirects_total",
			Help: "Number of redirect targets built by provider and result.",
		},
		[]string{"provider", "result"}, // ok | bad_request | signing_failure | error
	)

	// SignaturesTotal counts signing operations by scheme and result.
	SignaturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onramp_signatures_total",
			Help: "Number of signing operations by scheme and result.",
		},
		[]string{"scheme", "result"},
	)

	// GeoLookupsTotal counts country resolutions by source.
	GeoLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onramp_geo_lookups_total",
			Help: "Country lookups by source (cache | remote | unknown | error).",
		},
		[]string{"source"},
	)

	NATSMessageCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_total",
			Help: "Total number of NATS messages published.",
		},
		[]string{"subject", "result"}, // result = "ok" | "error"
	)

	NATSMessageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nats_message_latency_seconds",
			Help:    "Time taken to publish NATS messages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"subject"},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onramp_errors_total",
			Help: "Count of gateway errors by component.",
		},
		[]string{"component", "reason"},
	)
)

// ObserveDuration records elapsed time since start into a HistogramVec or SummaryVec.
func ObserveDuration(v any, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()
	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	}
}

func IncProviderQuote(provider, outcome string) {
	ProviderQuotesTotal.WithLabelValues(provider, outcome).Inc()
}

func IncRedirect(provider, result string) {
	RedirectsTotal.WithLabelValues(provider, result).Inc()
}

func IncSignature(scheme, result string) {
	SignaturesTotal.WithLabelValues(scheme, result).Inc()
}

func IncGeoLookup(source string) {
	GeoLookupsTotal.WithLabelValues(source).Inc()
}

func IncNATSMessage(subject, result string) {
	NATSMessageCount.WithLabelValues(subject, result).Inc()
}

func IncError(component, reason string) {
	ErrorsTotal.WithLabelValues(component, reason).Inc()
}
