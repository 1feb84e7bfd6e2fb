package storefront

import (
	"context"
	"testing"
	"time"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/hooks"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	rec := query.Record{Data: []byte(`{}`), UpdatedAt: time.Now()}
	masters := hooks.Keys.ProductMasters().StoreKey()
	cart := hooks.Keys.Cart().StoreKey()
	auth := hooks.Keys.AdminAuth().StoreKey()

	t.Run("Shared results go to the shared store", func(t *testing.T) {
		// Arrange
		private, shared := query.NewInMemoryStore(), query.NewInMemoryStore()
		store := &sessionStore{private: private, shared: shared}

		// Act
		require.NoError(t, store.Set(ctx, masters, rec))
		require.NoError(t, store.Set(ctx, cart, rec))
		require.NoError(t, store.Set(ctx, auth, rec))

		// Assert
		_, err := shared.Get(ctx, masters)
		assert.NoError(t, err)
		assert.Equal(t, 1, shared.Len())
		assert.Equal(t, 2, private.Len())
	})

	t.Run("A broad prefix reaches both stores", func(t *testing.T) {
		private, shared := query.NewInMemoryStore(), query.NewInMemoryStore()
		store := &sessionStore{private: private, shared: shared}
		dashboard := hooks.Keys.AdminDashboard().StoreKey()
		require.NoError(t, store.Set(ctx, dashboard, rec))
		require.NoError(t, store.Set(ctx, auth, rec))

		require.NoError(t, store.DeletePrefix(ctx, query.K("admin").StoreKey()))

		assert.Zero(t, shared.Len())
		assert.Zero(t, private.Len())
	})

	t.Run("Private prefixes leave the shared store alone", func(t *testing.T) {
		private, shared := query.NewInMemoryStore(), query.NewInMemoryStore()
		store := &sessionStore{private: private, shared: shared}
		require.NoError(t, store.Set(ctx, masters, rec))

		require.NoError(t, store.DeletePrefix(ctx, cart))

		assert.Equal(t, 1, shared.Len())
	})

	t.Run("Without a private store only shared results persist", func(t *testing.T) {
		shared := query.NewInMemoryStore()
		store := &sessionStore{shared: shared}

		require.NoError(t, store.Set(ctx, cart, rec))
		_, err := store.Get(ctx, cart)

		assert.ErrorIs(t, err, query.ErrNotFound)
		assert.Zero(t, shared.Len())
		assert.NoError(t, store.Close())
	})
}
