package storefront

import (
	"context"
	"errors"
	"strings"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/hooks"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
)

// sharedStoreKeys are the store keys of hooks.SharedPrefixes.
var sharedStoreKeys = func() []string {
	var keys []string
	for _, p := range hooks.SharedPrefixes() {
		keys = append(keys, p.StoreKey())
	}
	return keys
}()

func isSharedStoreKey(key string) bool {
	for _, shared := range sharedStoreKeys {
		if strings.HasPrefix(key, shared) {
			return true
		}
	}
	return false
}

// sessionStore persists a session's private results in its own store and
// shared results in the store every session reads from, so deleting a
// shared prefix once removes it for sessions that are not live.
type sessionStore struct {
	private query.Store
	shared  query.Store
}

func (s *sessionStore) route(key string) query.Store {
	if isSharedStoreKey(key) {
		return s.shared
	}
	return s.private
}

func (s *sessionStore) Get(ctx context.Context, key string) (query.Record, error) {
	store := s.route(key)
	if store == nil {
		return query.Record{}, query.ErrNotFound
	}
	return store.Get(ctx, key)
}

func (s *sessionStore) Set(ctx context.Context, key string, rec query.Record) error {
	store := s.route(key)
	if store == nil {
		return nil
	}
	return store.Set(ctx, key, rec)
}

// DeletePrefix deletes from the shared store when prefix covers or falls
// under a shared prefix, and always from the private store.
func (s *sessionStore) DeletePrefix(ctx context.Context, prefix string) error {
	var errs []error
	if s.private != nil {
		errs = append(errs, s.private.DeletePrefix(ctx, prefix))
	}
	if s.shared != nil && touchesShared(prefix) {
		errs = append(errs, s.shared.DeletePrefix(ctx, prefix))
	}
	return errors.Join(errs...)
}

// Close closes the private store only. The shared store outlives sessions.
func (s *sessionStore) Close() error {
	if s.private == nil {
		return nil
	}
	return s.private.Close()
}

func touchesShared(prefix string) bool {
	for _, shared := range sharedStoreKeys {
		if strings.HasPrefix(prefix, shared) || strings.HasPrefix(shared, prefix) {
			return true
		}
	}
	return false
}
