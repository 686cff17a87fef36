// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// AdminStatsHandler serves GET /api/admin/stats.
func AdminStatsHandler(state *AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"uptime_seconds":               int64(time.Since(state.StartTime).Seconds()),
			"active_websocket_connections": state.Metrics.ActiveWebSockets.Value(),
			"active_http_sessions":         state.Sessions.Count(),
			"total_requests_processed":     state.Metrics.RequestsProcessed.Value(),
		})
	}
}

// AdminAuditHandler serves GET /api/admin/audit with today's tool-call
// trail, most recent 100 events.
func AdminAuditHandler(state *AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := state.Audit.Recent(100)
		if err != nil {
			http.Error(w, "failed to read audit trail", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"events": events})
	}
}

// AdminPluginsHandler serves GET /api/admin/plugins.
func AdminPluginsHandler(state *AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plugins := []map[string]any{}
		for _, p := range state.Registry.All() {
			plugins = append(plugins, map[string]any{
				"name":        p.Name(),
				"description": p.Description(),
				"category":    p.Category(),
				"type":        string(p.Kind()),
				"operations":  p.SupportedOperations(),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"plugins": plugins})
	}
}
