// Package hooks binds every API operation to the query cache: read operations
// become observers under a key from Keys, write operations become mutations
// whose invalidations come from the graph built by NewGraph.
package hooks

import (
	"context"
	"io"
	"time"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/api"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/uploadstore"
	"github.com/rs/zerolog"
)

const (
	// catalogueStaleTime applies to the public catalogue, which changes rarely.
	catalogueStaleTime = 5 * time.Minute
	// authStaleTime keeps the admin auth status from being checked on every page.
	authStaleTime = time.Minute
)

// ObjectStore stores design files before they are registered with the API.
type ObjectStore interface {
	Put(ctx context.Context, fileName, contentType string, content io.Reader) (uploadstore.Object, error)
	Delete(ctx context.Context, objectPath string) error
}

// Option configures Hooks.
type Option func(*Hooks)

// WithObjectStore uploads design files to the object store and registers them,
// instead of posting them to the API as multipart bodies.
func WithObjectStore(s ObjectStore) Option {
	return func(h *Hooks) { h.objects = s }
}

// Hooks is the per-session set of read and mutation hooks.
type Hooks struct {
	client  *query.Client
	api     *api.API
	objects ObjectStore
	logger  zerolog.Logger
}

// New binds the API modules to client and declares the application's
// invalidation graph on it.
func New(client *query.Client, a *api.API, logger zerolog.Logger, opts ...Option) *Hooks {
	declare(client.Graph())
	h := &Hooks{
		client: client,
		api:    a,
		logger: logger.With().Str("component", "Hooks").Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Client returns the query client the hooks are bound to.
func (h *Hooks) Client() *query.Client {
	return h.client
}

func observe[T any](h *Hooks, key query.Key, fetch func(ctx context.Context) (T, error), enabled func() bool, staleTime time.Duration) *query.Observer[T] {
	return query.Observe(h.client, query.Options[T]{
		Key:       key,
		Fetch:     fetch,
		Enabled:   enabled,
		StaleTime: staleTime,
	})
}

func mutation[In, Out any](h *Hooks, name string, mutate func(ctx context.Context, in In) (Out, error), invalidates func(In, Out) []query.Key) *query.Mutation[In, Out] {
	return query.NewMutation(h.client, query.MutationOptions[In, Out]{
		Name:        name,
		Mutate:      mutate,
		Invalidates: invalidates,
	})
}

func positive(id int) func() bool {
	return func() bool { return id > 0 }
}

func nonEmpty(s string) func() bool {
	return func() bool { return s != "" }
}
