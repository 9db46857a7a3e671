package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector aggregates counters and latency histograms for broker-facing
// operations. A nil *Collector is valid and records nothing, so callers
// never need to guard their observe calls.
type Collector struct {
	operations *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	peeked     *prometheus.CounterVec
}

// NewCollector registers the busview metric families with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "busview",
			Name:      "operations_total",
			Help:      "Broker operations attempted, by operation name.",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "busview",
			Name:      "operation_failures_total",
			Help:      "Broker operations that surfaced an error, by operation name.",
		}, []string{"operation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "busview",
			Name:      "operation_duration_seconds",
			Help:      "Latency of broker operations, by operation name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		peeked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "busview",
			Name:      "messages_peeked_total",
			Help:      "Messages returned by peek operations, by message kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(c.operations, c.failures, c.duration, c.peeked)
	return c
}

// Observe records one finished operation.
func (c *Collector) Observe(operation string, start time.Time, err error) {
	if c == nil {
		return
	}
	c.operations.WithLabelValues(operation).Inc()
	c.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		c.failures.WithLabelValues(operation).Inc()
	}
}

// ObservePeeked records how many messages a peek returned.
func (c *Collector) ObservePeeked(kind string, count int) {
	if c == nil {
		return
	}
	c.peeked.WithLabelValues(kind).Add(float64(count))
}
