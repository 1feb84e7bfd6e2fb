package query

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Options describes a read query.
type Options[T any] struct {
	Key   Key
	Fetch func(ctx context.Context) (T, error)
	// StaleTime overrides the client default when non-zero. Use StaleNever to
	// keep data fresh until it is invalidated.
	StaleTime time.Duration
	// Enabled guards the fetch. A nil Enabled means enabled; a nil Fetch
	// always means disabled.
	Enabled func() bool
}

func (o Options[T]) enabledFunc() func() bool {
	if o.Fetch == nil {
		return func() bool { return false }
	}
	return o.Enabled
}

// Result is a snapshot of an observed query.
type Result[T any] struct {
	Data    T
	HasData bool
	Status  Status
	// IsLoading is true while a fetch for the key is in flight, including a
	// refetch after invalidation.
	IsLoading bool
	// IsFetching is true while a fetch runs over data that is already cached.
	IsFetching bool
	IsError    bool
	IsStale    bool
	Err        error
	UpdatedAt  time.Time
}

// Observer is a live subscription to one query key. It fetches when its key is
// stale, refetches when the key is invalidated, and signals every state change
// on Changes.
type Observer[T any] struct {
	c *Client

	mu      sync.Mutex
	opts    Options[T]
	hash    string
	e       *entry
	sub     *subscription
	closed  bool
	changes chan struct{}
}

// Observe subscribes to opts.Key. The first subscription to a missing or stale
// entry starts a fetch unless the query is disabled.
func Observe[T any](c *Client, opts Options[T]) *Observer[T] {
	o := &Observer[T]{c: c, changes: make(chan struct{}, 1)}
	o.mu.Lock()
	o.attachLocked(opts)
	o.mu.Unlock()
	return o
}

// Changes signals after state transitions. Signals are coalesced: a receiver
// should read Result after each one.
func (o *Observer[T]) Changes() <-chan struct{} {
	return o.changes
}

func (o *Observer[T]) notify() {
	select {
	case o.changes <- struct{}{}:
	default:
	}
}

// Result returns the current state of the observed query.
func (o *Observer[T]) Result() Result[T] {
	o.mu.Lock()
	e := o.e
	o.mu.Unlock()
	if e == nil {
		return Result[T]{Status: StatusIdle}
	}

	o.c.mu.Lock()
	defer o.c.mu.Unlock()
	r := Result[T]{
		HasData:    e.hasData,
		Status:     e.status,
		IsLoading:  e.fetching,
		IsFetching: e.fetching && e.hasData,
		IsError:    e.status == StatusError,
		IsStale:    e.isStale(time.Now()),
		Err:        e.err,
		UpdatedAt:  e.updatedAt,
	}
	if e.hasData {
		if v, ok := e.data.(T); ok {
			r.Data = v
		}
	}
	return r
}

// Await blocks until no fetch is in flight for the observed key and returns
// the settled result. A settled error is returned as the error.
func (o *Observer[T]) Await(ctx context.Context) (Result[T], error) {
	for {
		o.mu.Lock()
		e := o.e
		o.mu.Unlock()
		if e == nil {
			return Result[T]{}, ErrClosed
		}

		o.c.mu.Lock()
		done := e.done
		o.c.mu.Unlock()
		if done == nil {
			r := o.Result()
			if r.IsError {
				return r, r.Err
			}
			return r, nil
		}

		select {
		case <-done:
		case <-ctx.Done():
			return o.Result(), ctx.Err()
		}
	}
}

// Refetch fetches the observed key regardless of staleness and waits for the
// outcome. It backs manual retry actions.
func (o *Observer[T]) Refetch(ctx context.Context) error {
	o.mu.Lock()
	e, sub := o.e, o.sub
	o.mu.Unlock()
	if e == nil {
		return ErrClosed
	}

	c := o.c
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if e.fetch == nil || !sub.active() {
		c.mu.Unlock()
		return ErrDisabled
	}
	var subs []*subscription
	if !e.fetching {
		gen := c.begin(e)
		c.wg.Add(1)
		subs = e.subscribers()
		go c.runBackground(e, gen)
	}
	c.mu.Unlock()
	notifyAll(subs)

	_, err := o.Await(ctx)
	return err
}

// SetOptions replaces the observer's options. A different key moves the
// subscription to that key; the same key updates the fetch and guard in place.
// Either way a fetch starts if the entry is stale and the query is enabled.
func (o *Observer[T]) SetOptions(opts Options[T]) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	if o.e != nil && opts.Key.String() == o.hash {
		c := o.c
		o.opts = opts
		c.mu.Lock()
		configureLocked(o.e, opts)
		o.sub.enabled = opts.enabledFunc()
		c.mu.Unlock()
		c.maybeFetch(o.e)
		o.notify()
		return
	}
	o.detachLocked()
	o.attachLocked(opts)
}

// Close unsubscribes. The cached entry is kept for the client's GCTime.
func (o *Observer[T]) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	o.detachLocked()
}

func (o *Observer[T]) attachLocked(opts Options[T]) {
	o.opts = opts
	o.hash = opts.Key.String()
	c := o.c

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	e, created := c.lookupLocked(opts.Key)
	configureLocked(e, opts)
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}
	sub := &subscription{enabled: opts.enabledFunc(), notify: o.notify}
	e.subs[sub] = struct{}{}
	o.e, o.sub = e, sub
	c.mu.Unlock()

	if created {
		c.hydrate(c.ctx, e)
	}
	c.maybeFetch(e)
	o.notify()
}

func (o *Observer[T]) detachLocked() {
	if o.e == nil {
		return
	}
	c := o.c
	c.mu.Lock()
	delete(o.e.subs, o.sub)
	o.e.lastUsed = time.Now()
	c.scheduleCollectLocked(o.e)
	c.mu.Unlock()
	o.e, o.sub = nil, nil
}

// configureLocked installs the typed fetch and decoder on e. Requires c.mu.
func configureLocked[T any](e *entry, opts Options[T]) {
	if opts.Fetch != nil {
		fetch := opts.Fetch
		e.fetch = func(ctx context.Context) (any, error) { return fetch(ctx) }
	}
	if e.decode == nil {
		e.decode = decoderFor[T]()
	}
	if opts.StaleTime != 0 {
		e.staleTime = opts.StaleTime
	}
}

// maybeFetch starts a background fetch when e is stale and has an enabled
// subscriber. Fresh data counts as a hit.
func (c *Client) maybeFetch(e *entry) {
	c.mu.Lock()
	if c.closed || e.fetching || e.fetch == nil || !e.observed() {
		c.mu.Unlock()
		return
	}
	if !e.isStale(time.Now()) {
		c.mu.Unlock()
		c.metrics.Hit()
		return
	}
	gen := c.begin(e)
	c.wg.Add(1)
	subs := e.subscribers()
	c.mu.Unlock()

	c.metrics.Miss()
	notifyAll(subs)
	go c.runBackground(e, gen)
}

// FetchQuery returns fresh cached data for opts.Key or fetches it, sharing any
// fetch already in flight for the key. It does not subscribe.
func FetchQuery[T any](ctx context.Context, c *Client, opts Options[T]) (T, error) {
	var zero T
	if opts.Enabled != nil && !opts.Enabled() {
		return zero, ErrDisabled
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return zero, ErrClosed
	}
	e, created := c.lookupLocked(opts.Key)
	configureLocked(e, opts)
	c.mu.Unlock()
	if created {
		c.hydrate(ctx, e)
	}

	c.mu.Lock()
	if !e.isStale(time.Now()) {
		v := e.data
		c.mu.Unlock()
		c.metrics.Hit()
		return typed[T](v, e)
	}
	if e.fetch == nil {
		c.mu.Unlock()
		return zero, ErrNoFetcher
	}
	leader := !e.fetching
	gen := c.begin(e)
	done := e.done
	subs := e.subscribers()
	c.mu.Unlock()

	c.metrics.Miss()
	notifyAll(subs)
	if leader {
		_, _ = c.execute(ctx, e, gen)
	}

	select {
	case <-done:
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	c.mu.Lock()
	v, hasData, status, err := e.data, e.hasData, e.status, e.err
	c.mu.Unlock()
	if status == StatusError {
		return zero, err
	}
	if !hasData {
		return zero, ErrNotFound
	}
	return typed[T](v, e)
}

func typed[T any](v any, e *entry) (T, error) {
	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("query %s holds %T, not %T", e.hash, v, zero)
	}
	return out, nil
}
