package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and records all harness metrics against a single
// Prometheus registry. It is safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	operationsTotal      *prometheus.CounterVec
	operationDuration    *prometheus.HistogramVec
	providerRequests     *prometheus.CounterVec
	providerLatency      *prometheus.HistogramVec
	providerErrors       *prometheus.CounterVec
	tokensTotal          *prometheus.CounterVec
	costTotal            *prometheus.CounterVec
	activeConversations  prometheus.Gauge
	comparisonSlotsTotal *prometheus.CounterVec
}

// NewCollector creates a collector and registers its metrics with the
// given registry. Pass prometheus.NewRegistry() in tests to avoid the
// global default registry.
func NewCollector(registry *prometheus.Registry) *Collector {
	c := &Collector{
		registry: registry,

		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saturn_operations_total",
			Help: "Total conversation operations by mode and outcome.",
		}, []string{"mode", "outcome"}),

		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "saturn_operation_duration_seconds",
			Help:    "Conversation operation duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),

		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saturn_provider_requests_total",
			Help: "Total successful provider generations by provider and model.",
		}, []string{"provider", "model"}),

		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "saturn_provider_latency_seconds",
			Help:    "Provider generation latency in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"provider", "model"}),

		providerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saturn_provider_errors_total",
			Help: "Total provider failures by provider and error kind.",
		}, []string{"provider", "kind"}),

		tokensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saturn_tokens_total",
			Help: "Total tokens consumed by provider and model.",
		}, []string{"provider", "model"}),

		costTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saturn_cost_usd_total",
			Help: "Total estimated cost in USD by provider and model.",
		}, []string{"provider", "model"}),

		activeConversations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "saturn_active_conversations",
			Help: "Number of open conversations in the store.",
		}),

		comparisonSlotsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saturn_comparison_slots_total",
			Help: "Total comparison slot executions by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		c.operationsTotal,
		c.operationDuration,
		c.providerRequests,
		c.providerLatency,
		c.providerErrors,
		c.tokensTotal,
		c.costTotal,
		c.activeConversations,
		c.comparisonSlotsTotal,
	)

	return c
}

// RecordOperation records one conversation operation.
func (c *Collector) RecordOperation(mode, outcome string, duration time.Duration) {
	if mode == "" {
		mode = "unknown"
	}
	c.operationsTotal.WithLabelValues(mode, outcome).Inc()
	c.operationDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordProviderCall records one successful provider generation.
func (c *Collector) RecordProviderCall(provider, model string, seconds float64, tokens int, costUSD float64) {
	c.providerRequests.WithLabelValues(provider, model).Inc()
	c.providerLatency.WithLabelValues(provider, model).Observe(seconds)
	c.tokensTotal.WithLabelValues(provider, model).Add(float64(tokens))
	if costUSD > 0 {
		c.costTotal.WithLabelValues(provider, model).Add(costUSD)
	}
}

// RecordProviderError records one classified provider failure.
func (c *Collector) RecordProviderError(provider, kind string) {
	c.providerErrors.WithLabelValues(provider, kind).Inc()
}

// RecordComparisonSlot records the outcome of one comparison slot.
func (c *Collector) RecordComparisonSlot(outcome string) {
	c.comparisonSlotsTotal.WithLabelValues(outcome).Inc()
}

// SetActiveConversations updates the open-conversation gauge.
func (c *Collector) SetActiveConversations(n int) {
	c.activeConversations.Set(float64(n))
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
