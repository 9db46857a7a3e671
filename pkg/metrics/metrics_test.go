package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve_CountsOperationsAndFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	start := time.Now()
	c.Observe("queue.list", start, nil)
	c.Observe("queue.list", start, errors.New("boom"))
	c.Observe("topic.create", start, nil)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.operations.WithLabelValues("queue.list")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.failures.WithLabelValues("queue.list")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.operations.WithLabelValues("topic.create")))
	assert.Equal(t, float64(0), testutil.ToFloat64(c.failures.WithLabelValues("topic.create")))
}

func TestObservePeeked(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObservePeeked("normal", 5)
	c.ObservePeeked("dead-letter", 2)
	c.ObservePeeked("normal", 1)

	assert.Equal(t, float64(6), testutil.ToFloat64(c.peeked.WithLabelValues("normal")))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.peeked.WithLabelValues("dead-letter")))
}

func TestNilCollector_IsSafe(t *testing.T) {
	var c *Collector
	c.Observe("queue.list", time.Now(), nil)
	c.ObservePeeked("normal", 3)
}
