// Package storefront serves the storefront and admin console pages as JSON
// view models. Each browser session gets its own query cache, bound to the
// REST API through package hooks.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/api"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/config"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/hooks"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Dependencies are the optional collaborators shared by every session.
type Dependencies struct {
	// HTTPClient is used for API calls. Each session gets its own cookie jar
	// on a copy of it.
	HTTPClient *http.Client
	// StoreFor returns the persistent query store of a session.
	StoreFor func(sessionID string) query.Store
	// SharedStore persists results under hooks.SharedPrefixes for every
	// session. Without it shared results go to the session's own store.
	SharedStore query.Store
	Metrics     query.Metrics
	Objects     hooks.ObjectStore
	Publisher   Publisher
	Gatherer    prometheus.Gatherer
}

// Server is the storefront HTTP service.
type Server struct {
	*BaseServer
	cfg      *config.Config
	deps     Dependencies
	sessions *sessionCache
	fanout   *fanout
	logger   zerolog.Logger
}

// New builds the server and registers every page route.
func New(cfg *config.Config, deps Dependencies, logger zerolog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		BaseServer: NewBaseServer(logger, cfg.HTTPPort, deps.Gatherer),
		cfg:        cfg,
		deps:       deps,
		logger:     logger.With().Str("component", "Storefront").Logger(),
	}
	s.fanout = &fanout{publisher: deps.Publisher, shared: deps.SharedStore, logger: s.logger}
	sessions, err := newSessionCache(cfg.Sessions.MaxSessions, s.newSession, logger)
	if err != nil {
		return nil, err
	}
	s.sessions = sessions
	s.fanout.sessions = sessions

	s.routes()
	return s, nil
}

// Apply applies an invalidation published by another instance. An empty
// scope applies to every session.
func (s *Server) Apply(ctx context.Context, scope string, prefixes []query.Key) {
	s.fanout.apply(ctx, scope, prefixes)
}

// Sessions returns the number of live sessions.
func (s *Server) Sessions() int {
	return s.sessions.Len()
}

// Shutdown stops the HTTP server, then closes every session.
func (s *Server) Shutdown(ctx context.Context) error {
	httpErr := s.BaseServer.Shutdown(ctx)
	return errors.Join(httpErr, s.sessions.Close())
}

func (s *Server) newSession(id string) (*Session, error) {
	var httpClient *http.Client
	if s.deps.HTTPClient != nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		copied := *s.deps.HTTPClient
		copied.Jar = jar
		httpClient = &copied
	}
	logger := s.logger.With().Str("session", id[:8]).Logger()

	ac, err := apiclient.New(&s.cfg.API, httpClient, logger)
	if err != nil {
		return nil, err
	}

	opts := []query.Option{query.WithBroadcaster(s.fanout.forSession(id))}
	var private query.Store
	if s.deps.StoreFor != nil {
		private = s.deps.StoreFor(id)
	}
	switch {
	case s.deps.SharedStore != nil:
		opts = append(opts, query.WithStore(&sessionStore{private: private, shared: s.deps.SharedStore}))
	case private != nil:
		opts = append(opts, query.WithStore(private))
	}
	if s.deps.Metrics != nil {
		opts = append(opts, query.WithMetrics(s.deps.Metrics))
	}
	qc := query.NewClient(&s.cfg.Query, logger, opts...)

	var hookOpts []hooks.Option
	if s.deps.Objects != nil {
		hookOpts = append(hookOpts, hooks.WithObjectStore(s.deps.Objects))
	}
	return &Session{
		ID:     id,
		API:    ac,
		Client: qc,
		Hooks:  hooks.New(qc, api.New(ac), logger, hookOpts...),
	}, nil
}

// session resolves the caller's session from its cookie, issuing a new one
// when absent or malformed, and forwards the caller's other cookies to the API.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, error) {
	name := s.cfg.Sessions.CookieName
	var id string
	if c, err := r.Cookie(name); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			id = c.Value
		}
	}
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    id,
			Path:     "/",
			MaxAge:   int(s.cfg.Sessions.CookieTTL.Seconds()),
			HttpOnly: true,
			Secure:   s.cfg.Sessions.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	var forwarded []*http.Cookie
	for _, c := range r.Cookies() {
		if c.Name != name {
			forwarded = append(forwarded, c)
		}
	}
	sess.API.SetCookies(forwarded)
	return sess, nil
}

// sessionHandler adapts a page handler that needs the caller's session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *Session)

func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.session(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		h(w, r, sess)
	}
}
