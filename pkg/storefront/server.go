package storefront

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// BaseServer owns the listener, the route mux and the operational endpoints
// (/healthz, plus /metrics when a gatherer is given).
type BaseServer struct {
	logger   zerolog.Logger
	addr     string
	mux      *http.ServeMux
	server   *http.Server
	mu       sync.RWMutex
	listenOn net.Addr
}

func NewBaseServer(logger zerolog.Logger, addr string, gatherer prometheus.Gatherer) *BaseServer {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", HealthzHandler)
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return &BaseServer{
		logger: logger.With().Str("component", "HTTPServer").Logger(),
		addr:   addr,
		mux:    mux,
		server: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second},
	}
}

// Start binds the address and serves in the background.
func (s *BaseServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.listenOn = ln.Addr()
	s.mu.Unlock()

	s.logger.Info().Str("address", ln.Addr().String()).Msg("Serving storefront pages.")
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("HTTP server stopped unexpectedly.")
		}
	}()
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *BaseServer) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	s.logger.Info().Msg("HTTP server stopped.")
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *BaseServer) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listenOn != nil {
		return s.listenOn.String()
	}
	return s.addr
}

func (s *BaseServer) Mux() *http.ServeMux {
	return s.mux
}

func HealthzHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
