// Package http exposes the auth service over HTTP: signup and signin, and
// the /user routes behind the authorization gate.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/ebet/internal/dbx"
	"github.com/dmitrijs2005/ebet/internal/logging"
	"github.com/dmitrijs2005/ebet/internal/server/auth"
	"github.com/dmitrijs2005/ebet/internal/server/metrics"
	"github.com/dmitrijs2005/ebet/internal/server/services"
)

type Server struct {
	address        string
	auth           *services.AuthService
	gate           *auth.Gate
	metrics        *metrics.Metrics
	metricsHandler http.Handler
	db             dbx.Pinger
	logger         logging.Logger
}

type Option func(*Server)

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metricsHandler = h }
}

// WithHealthCheck makes /healthz ping db.
func WithHealthCheck(db dbx.Pinger) Option {
	return func(s *Server) { s.db = db }
}

func NewServer(address string, l logging.Logger, as *services.AuthService, g *auth.Gate, m *metrics.Metrics, opts ...Option) *Server {
	s := &Server{
		address: address,
		auth:    as,
		gate:    g,
		metrics: m,
		logger:  l.With("module", "http_server"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/signup", s.handleSignUp)
	mux.HandleFunc("POST /auth/signin", s.handleSignIn)
	mux.Handle("GET /user", s.requireAuth(http.HandlerFunc(s.handleListUsers)))
	mux.Handle("PUT /user", s.requireAuth(http.HandlerFunc(s.handleUpdateUser)))
	mux.Handle("GET /user/me", s.requireAuth(http.HandlerFunc(s.handleMe)))
	mux.Handle("GET /user/{id}", s.requireAuth(http.HandlerFunc(s.handleUser)))
	mux.Handle("DELETE /user/{id}", s.requireAuth(http.HandlerFunc(s.handleDeleteUser)))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metricsHandler != nil {
		mux.Handle("GET /metrics", s.metricsHandler)
	}

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is cancelled or serving
// fails. It returns only after the shutdown goroutine has finished.
func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "forced HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	err := srv.Serve(listen)
	cancel()
	<-done

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
