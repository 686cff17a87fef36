// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package server

import (
	"encoding/json"
	"net/http"

	"github.com/freitascorp/mcpid/pkg/mcp"
)

// DiscoveryHandler serves the provider summary at GET /mcpi/discover.
func DiscoveryHandler(state *AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		capabilities := []mcp.CapabilityDescription{}
		for _, p := range state.Registry.All() {
			capabilities = append(capabilities, mcp.CapabilityDescription{
				Name:        p.Name(),
				Description: p.Description(),
				Category:    p.Category(),
				Operations:  p.SupportedOperations(),
			})
		}

		referrals := state.Referrals
		if referrals == nil {
			referrals = []mcp.Referral{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(mcp.DiscoveryResponse{
			Provider:     state.Provider,
			Mode:         "active",
			Capabilities: capabilities,
			Referrals:    referrals,
		})
	}
}
