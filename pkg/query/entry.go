package query

import (
	"context"
	"strings"
	"time"
)

// Status is the lifecycle state of a query entry.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

// String returns the string representation of Status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// StaleNever keeps an entry fresh until it is invalidated.
const StaleNever time.Duration = -1

type fetchFunc func(ctx context.Context) (any, error)

type decodeFunc func(data []byte) (any, error)

// subscription is an observer's registration on an entry. enabled is evaluated
// with the client lock held and must not call back into the client.
type subscription struct {
	enabled func() bool
	notify  func()
}

func (s *subscription) active() bool {
	return s.enabled == nil || s.enabled()
}

// entry is one cached result. All fields are guarded by Client.mu.
type entry struct {
	key  Key
	segs []string
	hash string

	data        any
	hasData     bool
	err         error
	status      Status
	updatedAt   time.Time
	errorAt     time.Time
	lastUsed    time.Time
	staleTime   time.Duration
	invalidated bool

	// generation is bumped by every invalidation. A fetch that settles for an
	// older generation leaves the entry stale.
	generation uint64
	fetching   bool
	done       chan struct{}

	fetch  fetchFunc
	decode decodeFunc

	subs    map[*subscription]struct{}
	gcTimer *time.Timer
}

func newEntry(key Key, segs []string) *entry {
	return &entry{
		key:    key,
		segs:   segs,
		hash:   "[" + strings.Join(segs, ",") + "]",
		status: StatusIdle,
		subs:   make(map[*subscription]struct{}),
	}
}

func (e *entry) observed() bool {
	for s := range e.subs {
		if s.active() {
			return true
		}
	}
	return false
}

func (e *entry) isStale(now time.Time) bool {
	if !e.hasData || e.invalidated {
		return true
	}
	if e.staleTime == StaleNever {
		return false
	}
	return now.Sub(e.updatedAt) >= e.staleTime
}

func (e *entry) subscribers() []*subscription {
	out := make([]*subscription, 0, len(e.subs))
	for s := range e.subs {
		out = append(out, s)
	}
	return out
}

func notifyAll(subs []*subscription) {
	for _, s := range subs {
		s.notify()
	}
}
