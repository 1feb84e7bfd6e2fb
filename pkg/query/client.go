// Package query is a client-side query cache: results are cached under
// segment keys, concurrent fetches for one key are deduplicated, and a
// successful mutation invalidates every key under its declared prefixes so
// active observers refetch.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Config holds the cache-wide policy.
type Config struct {
	// StaleTime applies to queries that do not set their own. Zero means
	// cached data is stale as soon as it arrives.
	StaleTime time.Duration `yaml:"stale_time"`
	// GCTime is how long an unobserved entry is retained. Zero or less removes
	// entries as soon as their last observer closes.
	GCTime time.Duration `yaml:"gc_time"`
	// MaxEntries bounds the number of entries; zero means unbounded. Only
	// unobserved entries are evicted, least recently used first.
	MaxEntries int `yaml:"max_entries"`
	// StoreTimeout bounds each call to the persistent Store.
	StoreTimeout time.Duration `yaml:"store_timeout"`
}

// DefaultConfig returns the defaults used when NewClient receives a nil config.
func DefaultConfig() *Config {
	return &Config{
		StaleTime:    0,
		GCTime:       5 * time.Minute,
		MaxEntries:   0,
		StoreTimeout: 2 * time.Second,
	}
}

// Option configures optional collaborators of a Client.
type Option func(*Client)

// WithStore persists successful results and hydrates new entries from them.
func WithStore(s Store) Option {
	return func(c *Client) { c.store = s }
}

// WithBroadcaster forwards every local invalidation, e.g. to other processes.
func WithBroadcaster(b Broadcaster) Option {
	return func(c *Client) { c.broadcaster = b }
}

// WithMetrics reports cache events.
func WithMetrics(m Metrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithGraph attaches the declared invalidation edges used by NewMutation.
func WithGraph(g *Graph) Option {
	return func(c *Client) { c.graph = g }
}

// Client is the cache context. It is created explicitly, shared by every
// observer and mutation of one session, and torn down with Close.
type Client struct {
	cfg         Config
	logger      zerolog.Logger
	store       Store
	broadcaster Broadcaster
	metrics     Metrics
	graph       *Graph

	mu     sync.Mutex
	index  *keyIndex
	closed bool

	flight singleflight.Group
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClient creates a Client. A nil cfg uses DefaultConfig.
func NewClient(cfg *Config, logger zerolog.Logger, opts ...Option) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		cfg:     *cfg,
		logger:  logger.With().Str("component", "QueryClient").Logger(),
		metrics: NoopMetrics{},
		graph:   NewGraph(),
		index:   newKeyIndex(),
		ctx:     ctx,
		cancel:  cancel,
	}
	if c.cfg.StoreTimeout <= 0 {
		c.cfg.StoreTimeout = 2 * time.Second
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Graph returns the invalidation graph attached to the client.
func (c *Client) Graph() *Graph {
	return c.graph
}

// Close cancels background fetches, stops collection timers and closes the store.
// It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.index.walk(nil, func(e *entry) {
		if e.gcTimer != nil {
			e.gcTimer.Stop()
			e.gcTimer = nil
		}
	})
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()

	if c.store != nil {
		if err := c.store.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Error closing query store.")
			return err
		}
	}
	c.logger.Debug().Msg("Query client closed.")
	return nil
}

// Len returns the number of cached entries.
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.count()
}

// Invalidate marks every entry under each prefix stale, schedules a refetch
// for those with active observers, deletes persisted records under the
// prefixes and forwards the prefixes to the broadcaster. It returns the
// number of entries marked and does not wait for the refetches.
func (c *Client) Invalidate(ctx context.Context, prefixes ...Key) int {
	n := c.invalidate(ctx, prefixes)
	if c.broadcaster != nil && len(prefixes) > 0 {
		if err := c.broadcaster.Broadcast(ctx, prefixes); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to broadcast invalidation.")
		}
	}
	return n
}

// ApplyInvalidation is Invalidate without broadcasting, for invalidations
// that arrived from elsewhere.
func (c *Client) ApplyInvalidation(ctx context.Context, prefixes ...Key) int {
	return c.invalidate(ctx, prefixes)
}

func (c *Client) invalidate(ctx context.Context, prefixes []Key) int {
	type job struct {
		e   *entry
		gen uint64
	}
	var (
		jobs   []job
		subs   []*subscription
		marked int
	)
	seen := make(map[*entry]struct{})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}
	for _, prefix := range prefixes {
		c.index.walk(prefix.Canonical(), func(e *entry) {
			if _, ok := seen[e]; ok {
				return
			}
			seen[e] = struct{}{}
			marked++
			e.invalidated = true
			e.generation++
			subs = append(subs, e.subscribers()...)
			if e.fetching || e.fetch == nil || !e.observed() {
				return
			}
			jobs = append(jobs, job{e: e, gen: c.begin(e)})
			c.wg.Add(1)
		})
	}
	c.mu.Unlock()

	c.metrics.Invalidate(marked)
	notifyAll(subs)
	for _, j := range jobs {
		go c.runBackground(j.e, j.gen)
	}

	if c.store != nil {
		for _, prefix := range prefixes {
			storeCtx, cancel := context.WithTimeout(ctx, c.cfg.StoreTimeout)
			if err := c.store.DeletePrefix(storeCtx, storeKey(prefix.Canonical())); err != nil {
				c.logger.Warn().Err(err).Str("prefix", prefix.String()).Msg("Failed to delete persisted records.")
			}
			cancel()
		}
	}

	c.logger.Debug().Int("prefixes", len(prefixes)).Int("entries", marked).Int("refetches", len(jobs)).Msg("Invalidated queries.")
	return marked
}

// Remove drops every unobserved entry under prefix without refetching.
// Entries with subscribers are kept.
func (c *Client) Remove(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var victims []*entry
	c.index.walk(prefix.Canonical(), func(e *entry) {
		if len(e.subs) == 0 && !e.fetching {
			victims = append(victims, e)
		}
	})
	for _, e := range victims {
		c.evictLocked(e)
	}
	return len(victims)
}

// IsStale reports whether key has an entry that would be refetched on its
// next subscription. Missing keys are reported as stale.
func (c *Client) IsStale(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.index.get(key.Canonical())
	if e == nil {
		return true
	}
	return e.isStale(time.Now())
}

// IsInvalidated reports whether key has an entry marked stale by an invalidation
// that no fetch has answered yet.
func (c *Client) IsInvalidated(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.index.get(key.Canonical())
	return e != nil && e.invalidated
}

// GetQueryData returns the cached value for key, if any.
func GetQueryData[T any](c *Client, key Key) (T, bool) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.index.get(key.Canonical())
	if e == nil || !e.hasData {
		return zero, false
	}
	v, ok := e.data.(T)
	return v, ok
}

// SetQueryData stores value under key as freshly fetched data.
func SetQueryData[T any](c *Client, key Key, value T) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	e, _ := c.lookupLocked(key)
	e.data, e.hasData, e.err = value, true, nil
	e.status = StatusSuccess
	e.updatedAt = time.Now()
	e.invalidated = false
	if e.decode == nil {
		e.decode = decoderFor[T]()
	}
	subs := e.subscribers()
	c.scheduleCollectLocked(e)
	c.mu.Unlock()
	notifyAll(subs)
	return nil
}

// --- entry management; the *Locked helpers require c.mu ---

func (c *Client) lookupLocked(key Key) (*entry, bool) {
	segs := key.Canonical()
	if e := c.index.get(segs); e != nil {
		e.lastUsed = time.Now()
		return e, false
	}
	e := newEntry(key, segs)
	e.staleTime = c.cfg.StaleTime
	e.lastUsed = time.Now()
	c.index.insert(segs, e)
	c.enforceLimitLocked(e)
	return e, true
}

// enforceLimitLocked evicts unobserved, idle entries until the cache fits
// MaxEntries. keep is never evicted.
func (c *Client) enforceLimitLocked(keep *entry) {
	if c.cfg.MaxEntries <= 0 {
		return
	}
	for c.index.count() > c.cfg.MaxEntries {
		var victim *entry
		c.index.walk(nil, func(e *entry) {
			if e == keep || len(e.subs) > 0 || e.fetching {
				return
			}
			if victim == nil || e.lastUsed.Before(victim.lastUsed) {
				victim = e
			}
		})
		if victim == nil {
			return
		}
		c.evictLocked(victim)
	}
}

func (c *Client) evictLocked(e *entry) {
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}
	if c.index.get(e.segs) == e {
		c.index.remove(e.segs)
		c.metrics.Evict()
	}
}

// scheduleCollectLocked arranges for an unobserved entry to be removed after GCTime.
func (c *Client) scheduleCollectLocked(e *entry) {
	if len(e.subs) > 0 || c.closed {
		return
	}
	if e.gcTimer != nil {
		e.gcTimer.Stop()
	}
	if c.cfg.GCTime <= 0 {
		if !e.fetching {
			c.evictLocked(e)
		}
		return
	}
	e.gcTimer = time.AfterFunc(c.cfg.GCTime, func() { c.collect(e) })
}

func (c *Client) collect(e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || len(e.subs) > 0 {
		return
	}
	if e.fetching {
		// Try again once the fetch has settled.
		e.gcTimer = time.AfterFunc(c.cfg.GCTime, func() { c.collect(e) })
		return
	}
	e.gcTimer = nil
	c.evictLocked(e)
	c.logger.Debug().Str("key", e.hash).Msg("Collected unobserved query.")
}

// --- fetching ---

// begin starts a fetch cycle on e and returns the generation being fetched.
func (c *Client) begin(e *entry) uint64 {
	if !e.fetching {
		e.fetching = true
		e.done = make(chan struct{})
	}
	if !e.hasData {
		e.status = StatusLoading
	}
	return e.generation
}

// runBackground fetches e with the client's lifetime context. The caller has
// already done c.wg.Add(1).
func (c *Client) runBackground(e *entry, gen uint64) {
	defer c.wg.Done()
	_, _ = c.execute(c.ctx, e, gen)
}

// spawn starts a background fetch of e unless the client is closing.
func (c *Client) spawn(e *entry, gen uint64) {
	c.mu.Lock()
	if c.closed {
		c.finishLocked(e)
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()
	go c.runBackground(e, gen)
}

// execute performs the fetch for generation gen. Callers asking for the same
// key and generation concurrently share one call.
func (c *Client) execute(ctx context.Context, e *entry, gen uint64) (any, error) {
	flightKey := e.hash + "#" + strconv.FormatUint(gen, 10)
	v, err, _ := c.flight.Do(flightKey, func() (any, error) {
		c.mu.Lock()
		fetch := e.fetch
		c.mu.Unlock()
		if fetch == nil {
			c.settle(e, gen, nil, ErrNoFetcher)
			return nil, ErrNoFetcher
		}
		c.metrics.Fetch()
		val, ferr := fetch(ctx)
		c.settle(e, gen, val, ferr)
		return val, ferr
	})
	return v, err
}

func (c *Client) finishLocked(e *entry) {
	if e.fetching {
		e.fetching = false
		close(e.done)
		e.done = nil
	}
}

// settle records the outcome of a fetch. If the entry was invalidated while
// the fetch was in flight, the data is kept but the entry stays stale and an
// observed entry is fetched again.
func (c *Client) settle(e *entry, gen uint64, v any, err error) {
	now := time.Now()
	c.mu.Lock()
	if err == nil {
		e.data, e.hasData, e.err = v, true, nil
		e.status = StatusSuccess
		e.updatedAt = now
		if gen == e.generation {
			e.invalidated = false
		}
	} else {
		e.err = err
		e.errorAt = now
		e.status = StatusError
	}

	current := gen == e.generation
	rerun := !current && !c.closed && e.fetch != nil && e.observed()
	next := e.generation
	if !rerun {
		c.finishLocked(e)
		if len(e.subs) == 0 {
			c.scheduleCollectLocked(e)
		}
	}
	persist := err == nil && current && c.store != nil && !c.closed
	if persist {
		c.wg.Add(1)
	}
	subs := e.subscribers()
	c.mu.Unlock()

	if err != nil {
		c.metrics.FetchError()
		if !errors.Is(err, context.Canceled) {
			c.logger.Warn().Err(err).Str("key", e.hash).Msg("Query fetch failed.")
		}
	}
	notifyAll(subs)
	if persist {
		go c.persist(e, gen, v, now)
	}
	if rerun {
		c.spawn(e, next)
	}
}

// persist writes a successful result to the store in the background.
func (c *Client) persist(e *entry, gen uint64, v any, at time.Time) {
	defer c.wg.Done()
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error().Err(err).Str("key", e.hash).Msg("Failed to marshal query data for the store.")
		return
	}
	c.mu.Lock()
	stale := gen != e.generation
	c.mu.Unlock()
	if stale {
		return
	}
	// Detached from c.ctx so writes started before Close still land.
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.StoreTimeout)
	defer cancel()
	if err := c.store.Set(ctx, storeKey(e.segs), Record{Data: payload, UpdatedAt: at}); err != nil {
		c.logger.Warn().Err(err).Str("key", e.hash).Msg("Failed to persist query data.")
	}
}

// hydrate seeds a new entry from the store, keeping the stored timestamp so
// staleness still applies.
func (c *Client) hydrate(ctx context.Context, e *entry) {
	if c.store == nil {
		return
	}
	c.mu.Lock()
	decode := e.decode
	c.mu.Unlock()
	if decode == nil {
		return
	}
	storeCtx, cancel := context.WithTimeout(ctx, c.cfg.StoreTimeout)
	defer cancel()
	rec, err := c.store.Get(storeCtx, storeKey(e.segs))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn().Err(err).Str("key", e.hash).Msg("Failed to read persisted query data.")
		}
		return
	}
	v, err := decode(rec.Data)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", e.hash).Msg("Discarding undecodable persisted query data.")
		return
	}
	c.mu.Lock()
	if !e.hasData {
		e.data, e.hasData = v, true
		e.status = StatusSuccess
		e.updatedAt = rec.UpdatedAt
	}
	c.mu.Unlock()
}

func decoderFor[T any]() decodeFunc {
	return func(data []byte) (any, error) {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}
