package query

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics exports cache events as Prometheus counters. One instance
// is shared by every client of a process.
type PrometheusMetrics struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	fetches       prometheus.Counter
	fetchErrors   prometheus.Counter
	invalidations prometheus.Counter
	invalidated   prometheus.Counter
	evictions     prometheus.Counter
}

// NewPrometheusMetrics creates the counters and registers them with reg.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) (*PrometheusMetrics, error) {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query_cache",
			Name:      name,
			Help:      help,
		})
	}
	m := &PrometheusMetrics{
		hits:          counter("hits_total", "Subscriptions and fetches served from fresh cached data"),
		misses:        counter("misses_total", "Subscriptions and fetches that found absent or stale data"),
		fetches:       counter("fetches_total", "Network fetches issued after deduplication"),
		fetchErrors:   counter("fetch_errors_total", "Network fetches that failed"),
		invalidations: counter("invalidations_total", "Invalidation calls"),
		invalidated:   counter("invalidated_entries_total", "Entries marked stale by invalidations"),
		evictions:     counter("evictions_total", "Unobserved entries removed from the cache"),
	}
	for _, c := range []prometheus.Collector{m.hits, m.misses, m.fetches, m.fetchErrors, m.invalidations, m.invalidated, m.evictions} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register query cache metric: %w", err)
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) Hit()        { m.hits.Inc() }
func (m *PrometheusMetrics) Miss()       { m.misses.Inc() }
func (m *PrometheusMetrics) Fetch()      { m.fetches.Inc() }
func (m *PrometheusMetrics) FetchError() { m.fetchErrors.Inc() }
func (m *PrometheusMetrics) Evict()      { m.evictions.Inc() }

func (m *PrometheusMetrics) Invalidate(entries int) {
	m.invalidations.Inc()
	m.invalidated.Add(float64(entries))
}
