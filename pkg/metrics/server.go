package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/cuemby/ecs-daemonset/pkg/log"
)

// Server exposes /metrics, /health, /ready and /live over HTTP
type Server struct {
	server   *http.Server
	listener net.Listener
}

// NewMux returns the handler tree served by Server
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", HealthHandler())
	mux.HandleFunc("/ready", ReadyHandler())
	mux.HandleFunc("/live", LivenessHandler())
	return mux
}

// NewServer creates a server bound to addr. The listener is opened
// immediately so that a bad address fails at startup.
func NewServer(addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: ln,
		server: &http.Server{
			Handler:      NewMux(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}, nil
}

// Addr returns the address the server listens on
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Start serves in the background
func (s *Server) Start() {
	logger := log.WithComponent("metrics")
	logger.Info().Str("addr", s.Addr()).Msg("Metrics server listening")

	go func() {
		if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Metrics server stopped")
		}
	}()
}

// Shutdown stops the server, waiting for in-flight requests until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
