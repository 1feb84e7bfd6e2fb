package query

// Metrics receives cache events. Every method must be cheap and non-blocking.
type Metrics interface {
	// Hit is called when a subscription or fetch is served from fresh cached data.
	Hit()
	// Miss is called when cached data is absent or stale and a fetch is issued.
	Miss()
	// Fetch is called once per network fetch, after deduplication.
	Fetch()
	// FetchError is called when a fetch fails.
	FetchError()
	// Invalidate is called with the number of entries marked stale by one invalidation.
	Invalidate(entries int)
	// Evict is called when an unobserved entry is removed.
	Evict()
}

// NoopMetrics ignores every event.
type NoopMetrics struct{}

func (NoopMetrics) Hit()           {}
func (NoopMetrics) Miss()          {}
func (NoopMetrics) Fetch()         {}
func (NoopMetrics) FetchError()    {}
func (NoopMetrics) Invalidate(int) {}
func (NoopMetrics) Evict()         {}
