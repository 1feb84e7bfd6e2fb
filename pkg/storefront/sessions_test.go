package storefront

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bareSessions(created *atomic.Int32) SessionFactory {
	return func(id string) (*Session, error) {
		created.Add(1)
		return &Session{ID: id, Client: query.NewClient(nil, zerolog.Nop())}, nil
	}
}

func TestSessionCache(t *testing.T) {
	t.Run("Evicts and closes the least recently used session", func(t *testing.T) {
		// Arrange
		var created atomic.Int32
		cache, err := newSessionCache(2, bareSessions(&created), zerolog.Nop())
		require.NoError(t, err)
		a, err := cache.Get("a")
		require.NoError(t, err)
		_, err = cache.Get("b")
		require.NoError(t, err)
		_, err = cache.Get("a")
		require.NoError(t, err)

		// Act
		_, err = cache.Get("c")
		require.NoError(t, err)

		// Assert
		assert.Equal(t, 2, cache.Len())
		_, found := cache.Peek("b")
		assert.False(t, found, "b was least recently used")
		_, found = cache.Peek("a")
		assert.True(t, found)
		assert.Equal(t, int32(3), created.Load())
		assert.NoError(t, query.SetQueryData(a.Client, query.K("cart"), 1), "a is still open")
	})

	t.Run("Evicted session clients are closed", func(t *testing.T) {
		var created atomic.Int32
		cache, err := newSessionCache(1, bareSessions(&created), zerolog.Nop())
		require.NoError(t, err)
		first, err := cache.Get("first")
		require.NoError(t, err)

		_, err = cache.Get("second")
		require.NoError(t, err)

		assert.ErrorIs(t, query.SetQueryData(first.Client, query.K("cart"), 1), query.ErrClosed)
	})

	t.Run("Concurrent first requests share one session", func(t *testing.T) {
		// Arrange
		var created atomic.Int32
		cache, err := newSessionCache(10, bareSessions(&created), zerolog.Nop())
		require.NoError(t, err)

		// Act
		var wg sync.WaitGroup
		sessions := make([]*Session, 8)
		for i := range sessions {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				sessions[i], _ = cache.Get("shared")
			}(i)
		}
		wg.Wait()

		// Assert
		assert.Equal(t, int32(1), created.Load())
		for _, s := range sessions {
			assert.Same(t, sessions[0], s)
		}
	})

	t.Run("Factory errors are returned and nothing is cached", func(t *testing.T) {
		cache, err := newSessionCache(2, func(string) (*Session, error) {
			return nil, errors.New("api unreachable")
		}, zerolog.Nop())
		require.NoError(t, err)

		_, err = cache.Get("x")

		assert.ErrorContains(t, err, "api unreachable")
		assert.Zero(t, cache.Len())
	})

	t.Run("Close closes every session and rejects new ones", func(t *testing.T) {
		var created atomic.Int32
		cache, err := newSessionCache(4, bareSessions(&created), zerolog.Nop())
		require.NoError(t, err)
		var sessions []*Session
		for i := 0; i < 3; i++ {
			s, err := cache.Get(fmt.Sprintf("s%d", i))
			require.NoError(t, err)
			sessions = append(sessions, s)
		}

		require.NoError(t, cache.Close())

		for _, s := range sessions {
			assert.ErrorIs(t, query.SetQueryData(s.Client, query.K("cart"), 1), query.ErrClosed)
		}
		_, err = cache.Get("late")
		assert.ErrorIs(t, err, ErrSessionsClosed)
	})

	t.Run("Rejects an empty capacity", func(t *testing.T) {
		_, err := newSessionCache(0, bareSessions(new(atomic.Int32)), zerolog.Nop())
		assert.Error(t, err)
	})
}
