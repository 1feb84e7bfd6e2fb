package storefront

import (
	"container/list"
	"errors"
	"fmt"
	"sync"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/hooks"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ErrSessionsClosed is returned once the session cache has been closed.
var ErrSessionsClosed = errors.New("session cache is closed")

// Session is one browser session: its own API cookie jar, query cache and hooks.
type Session struct {
	ID     string
	API    *apiclient.Client
	Client *query.Client
	Hooks  *hooks.Hooks
}

// Close tears down the session's query cache.
func (s *Session) Close() error {
	return s.Client.Close()
}

// SessionFactory builds the session for a new id.
type SessionFactory func(id string) (*Session, error)

// sessionCache holds at most maxSize sessions and closes the least recently
// used one when a new session pushes it out.
type sessionCache struct {
	maxSize int
	factory SessionFactory
	logger  zerolog.Logger
	flight  singleflight.Group

	mu     sync.Mutex
	ll     *list.List
	index  map[string]*list.Element
	closed bool
}

func newSessionCache(maxSize int, factory SessionFactory, logger zerolog.Logger) (*sessionCache, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("maxSize must be greater than 0")
	}
	if factory == nil {
		return nil, errors.New("session factory cannot be nil")
	}
	return &sessionCache{
		maxSize: maxSize,
		factory: factory,
		logger:  logger.With().Str("component", "SessionCache").Logger(),
		ll:      list.New(),
		index:   make(map[string]*list.Element),
	}, nil
}

// Get returns the session for id, creating it on first use. Concurrent first
// requests for one id share a single session.
func (c *sessionCache) Get(id string) (*Session, error) {
	if s, ok, err := c.touch(id); ok || err != nil {
		return s, err
	}

	v, err, _ := c.flight.Do(id, func() (any, error) {
		if s, ok, err := c.touch(id); ok || err != nil {
			return s, err
		}
		s, err := c.factory(id)
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		return s, c.add(s)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Peek returns the session for id without creating it or changing its recency.
func (c *sessionCache) Peek(id string) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.index[id]; ok {
		return elem.Value.(*Session), true
	}
	return nil, false
}

// Each calls fn for every live session.
func (c *sessionCache) Each(fn func(*Session)) {
	c.mu.Lock()
	sessions := make([]*Session, 0, c.ll.Len())
	for elem := c.ll.Front(); elem != nil; elem = elem.Next() {
		sessions = append(sessions, elem.Value.(*Session))
	}
	c.mu.Unlock()

	for _, s := range sessions {
		fn(s)
	}
}

func (c *sessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Close closes every session. Later calls to Get fail with ErrSessionsClosed.
func (c *sessionCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	var sessions []*Session
	for elem := c.ll.Front(); elem != nil; elem = elem.Next() {
		sessions = append(sessions, elem.Value.(*Session))
	}
	c.ll.Init()
	c.index = make(map[string]*list.Element)
	c.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

func (c *sessionCache) touch(id string) (*Session, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, false, ErrSessionsClosed
	}
	if elem, ok := c.index[id]; ok {
		c.ll.MoveToFront(elem)
		return elem.Value.(*Session), true, nil
	}
	return nil, false, nil
}

func (c *sessionCache) add(s *Session) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = s.Close()
		return ErrSessionsClosed
	}
	c.index[s.ID] = c.ll.PushFront(s)
	var evicted []*Session
	for c.ll.Len() > c.maxSize {
		oldest := c.ll.Remove(c.ll.Back()).(*Session)
		delete(c.index, oldest.ID)
		evicted = append(evicted, oldest)
	}
	c.mu.Unlock()

	for _, old := range evicted {
		if err := old.Close(); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to close evicted session.")
		}
		c.logger.Debug().Int("max_sessions", c.maxSize).Msg("Evicted least recently used session.")
	}
	return nil
}
