package query

import "context"

// Broadcaster forwards local invalidations, typically to other processes that
// cache the same keys. Broadcast errors are logged, never returned to the
// mutation caller.
type Broadcaster interface {
	Broadcast(ctx context.Context, prefixes []Key) error
}

// BroadcasterFunc adapts a function to Broadcaster.
type BroadcasterFunc func(ctx context.Context, prefixes []Key) error

// Broadcast calls f.
func (f BroadcasterFunc) Broadcast(ctx context.Context, prefixes []Key) error {
	return f(ctx, prefixes)
}
