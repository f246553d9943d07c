// Package metrics implements memo.Metrics on Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"gomemo/internal/memo"
)

// Collectors holds the counters shared by every Memo registered on one
// registry. Each Memo gets its own label value through For.
type Collectors struct {
	calls     *prometheus.CounterVec
	failures  *prometheus.CounterVec
	evictions *prometheus.CounterVec
}

// NewCollectors creates and registers the memo counters on reg.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gomemo_calls_total",
			Help: "Total memoized calls by outcome",
		}, []string{"memo", "result"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gomemo_producer_failures_total",
			Help: "Total producer invocations that returned an error or panicked",
		}, []string{"memo"}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gomemo_evictions_total",
			Help: "Total entries removed by expiry, invalidation or close",
		}, []string{"memo"}),
	}
	reg.MustRegister(c.calls, c.failures, c.evictions)
	return c
}

// For returns the memo.Metrics of the Memo labelled name.
func (c *Collectors) For(name string) memo.Metrics {
	return &memoMetrics{
		hit:       c.calls.WithLabelValues(name, "hit"),
		miss:      c.calls.WithLabelValues(name, "miss"),
		coalesced: c.calls.WithLabelValues(name, "coalesced"),
		failure:   c.failures.WithLabelValues(name),
		eviction:  c.evictions.WithLabelValues(name),
	}
}

type memoMetrics struct {
	hit, miss, coalesced prometheus.Counter
	failure, eviction    prometheus.Counter
}

var _ memo.Metrics = (*memoMetrics)(nil)

func (m *memoMetrics) RecordHit()       { m.hit.Inc() }
func (m *memoMetrics) RecordMiss()      { m.miss.Inc() }
func (m *memoMetrics) RecordCoalesced() { m.coalesced.Inc() }
func (m *memoMetrics) RecordFailure()   { m.failure.Inc() }
func (m *memoMetrics) RecordEviction()  { m.eviction.Inc() }
