// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

// Package server implements the MCP endpoint: JSON-RPC dispatch, batch
// handling, the discovery responder, and the WebSocket and streamable
// HTTP transports.
package server

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/freitascorp/mcpid/pkg/audit"
	"github.com/freitascorp/mcpid/pkg/config"
	"github.com/freitascorp/mcpid/pkg/mcp"
	"github.com/freitascorp/mcpid/pkg/observability"
	"github.com/freitascorp/mcpid/pkg/plugin"
)

// ServerVersion is reported in initialize responses.
const ServerVersion = "0.1.0"

// AppState is the process-wide state shared by every handler. All
// fields are initialised once at startup; the session table and
// metrics carry their own synchronization.
type AppState struct {
	Registry  *plugin.Registry
	Provider  mcp.ProviderInfo
	Referrals []mcp.Referral
	Sessions  *SessionTable
	Metrics   *observability.ServerMetrics
	Audit     *audit.FileStore
	StartTime time.Time
	Logger    *slog.Logger
}

// NewAppState assembles the shared state from config and registry.
func NewAppState(cfg *config.Config, registry *plugin.Registry, logger *slog.Logger) *AppState {
	if logger == nil {
		logger = slog.Default()
	}
	metrics := observability.NewServerMetrics()
	return &AppState{
		Registry:  registry,
		Provider:  cfg.Provider,
		Referrals: cfg.Referrals,
		Sessions:  NewSessionTable(metrics, logger),
		Metrics:   metrics,
		Audit:     audit.NewFileStore(filepath.Join(cfg.DataRoot, "audit")),
		StartTime: time.Now(),
		Logger:    logger,
	}
}
