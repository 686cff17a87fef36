// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/freitascorp/mcpid/pkg/config"
	"github.com/freitascorp/mcpid/pkg/health"
	"github.com/freitascorp/mcpid/pkg/mcp"
	"github.com/freitascorp/mcpid/pkg/observability"
	"github.com/freitascorp/mcpid/pkg/plugin"
	"github.com/freitascorp/mcpid/pkg/plugins"
)

const shutdownTimeout = 10 * time.Second

// Server is the MCP endpoint process: both transports, discovery,
// health, metrics and the admin API on one listener.
type Server struct {
	state      *AppState
	checker    *health.Checker
	httpServer *http.Server
	logger     *slog.Logger
}

// New assembles a server from configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry := plugin.NewRegistry()
	if err := plugins.RegisterAll(registry, cfg.DataRoot, cfg.Referrals); err != nil {
		return nil, fmt.Errorf("register plugins: %w", err)
	}

	state := NewAppState(cfg, registry, logger)

	checker := health.NewChecker()
	dataRoot := cfg.DataRoot
	checker.RegisterCheck("data_root", func() (bool, string) {
		if _, err := os.Stat(dataRoot); err != nil {
			return false, err.Error()
		}
		return true, "present"
	})

	wsDispatcher := NewDispatcher(state, mcp.MCPIVersion).WithLegacyCompletions()

	mux := http.NewServeMux()
	mux.HandleFunc("/mcpi/discover", DiscoveryHandler(state))
	mux.Handle("/mcpi", NewWSHandler(state, wsDispatcher))
	mux.Handle("/mcp", NewStreamableHandler(state))
	mux.HandleFunc("/health", checker.HealthHandler)
	mux.HandleFunc("/ready", checker.ReadyHandler)
	mux.HandleFunc("/metrics", observability.MetricsHandler(state.Metrics.Registry))
	mux.HandleFunc("/api/admin/stats", AdminStatsHandler(state))
	mux.HandleFunc("/api/admin/plugins", AdminPluginsHandler(state))
	mux.HandleFunc("/api/admin/audit", AdminAuditHandler(state))

	return &Server{
		state:   state,
		checker: checker,
		httpServer: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}, nil
}

// Handler exposes the HTTP mux, used by tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// State exposes the shared state, used by tests.
func (s *Server) State() *AppState { return s.state }

// Run serves until ctx is cancelled, then drains in-flight requests,
// terminates SSE streams and releases the session table.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening",
			"addr", s.httpServer.Addr,
			"provider", s.state.Provider.Name,
			"plugins", len(s.state.Registry.All()))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.checker.SetReady(true)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	s.checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Closing the session table ends every SSE stream, which lets
	// Shutdown finish draining.
	s.state.Sessions.CloseAll()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
