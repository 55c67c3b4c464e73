// Package api serves the bot's liveness and monitoring endpoints.
//
// None of these handlers touch the pick registry or the event queue; they
// only read counters, so they are safe to run beside the event loop.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

// AliveMessage answers every request outside the named routes.
const AliveMessage = "✅ Bot is alive!"

// HTTP server timeouts.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]any
}

// Server wires the liveness routes.
type Server struct {
	router *mux.Router
	health *HealthHandler
	srv    *http.Server
	logger logger.Logger
}

// NewServer builds the router. stats may be nil, in which case /healthz only
// reports status.
func NewServer(stats StatsProvider) *Server {
	s := &Server{
		router: mux.NewRouter(),
		health: NewHealthHandler(stats),
		logger: logger.Get().Named("http"),
	}
	s.register()
	return s
}

func (s *Server) register() {
	s.router.HandleFunc("/healthz", MetricsMiddleware(s.health.HandleHealth, "healthz")).Methods(http.MethodGet, http.MethodHead)
	s.router.Handle("/metrics", MetricsMiddleware(
		promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP, "metrics",
	)).Methods(http.MethodGet)
	// Everything else is a keep-alive check.
	s.router.PathPrefix("/").HandlerFunc(MetricsMiddleware(handleAlive, "alive"))
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until Shutdown is called.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	s.logger.Info(ctx, "starting HTTP server", logger.String("addr", addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%w: %w", ErrServe, err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func handleAlive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write([]byte(AliveMessage))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
