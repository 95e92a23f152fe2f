// Package httpapi exposes the ledger to HTTP callers. It is a thin host
// embedding: every handler submits an operation and awaits its handle, the
// ledger internals stay private.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/BlackForgeOfficial/ShadowEconomy/internal/config"
	"github.com/BlackForgeOfficial/ShadowEconomy/internal/ledger"
)

// Server serves the caller-facing operation surface plus health and metrics.
type Server struct {
	router *mux.Router
	server *http.Server
	ledger *ledger.Ledger
	log    zerolog.Logger
}

// NewServer wires routes over the given ledger. gatherer may be nil to skip
// the /metrics endpoint.
func NewServer(cfg config.ServerConfig, led *ledger.Ledger, logger zerolog.Logger, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		router: mux.NewRouter(),
		ledger: led,
		log:    logger,
	}
	s.setupRoutes(gatherer)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/accounts/{id}/balance", s.handleBalance).Methods(http.MethodGet)
	s.router.HandleFunc("/accounts/{id}/balance", s.handleSetBalance).Methods(http.MethodPut)
	s.router.HandleFunc("/accounts/{id}/deposit", s.handleDeposit).Methods(http.MethodPost)
	s.router.HandleFunc("/accounts/{id}/withdraw", s.handleWithdraw).Methods(http.MethodPost)
	s.router.HandleFunc("/top", s.handleTop).Methods(http.MethodGet)

	if gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
}

// Handler returns the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving requests until Shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
