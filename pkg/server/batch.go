// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package server

import (
	"encoding/json"
	"strings"

	"github.com/freitascorp/mcpid/pkg/mcp"
)

// HandleMessage processes a raw inbound message: a single JSON-RPC
// envelope or an array batch. It returns the serialized response and
// whether there is one; notification-only input produces none.
func (d *Dispatcher) HandleMessage(msg, clientID string) (string, bool) {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		return marshalResponse(errorResponse(nil, mcp.ErrParse, "Parse error")), true
	}

	if trimmed[0] == '[' {
		return d.handleBatch(trimmed, clientID)
	}
	return d.handleSingle(trimmed, clientID)
}

func (d *Dispatcher) handleSingle(msg, clientID string) (string, bool) {
	var req mcp.Request
	if err := json.Unmarshal([]byte(msg), &req); err != nil {
		d.state.Logger.Warn("parse error", "client", clientID, "error", err)
		return marshalResponse(errorResponse(nil, mcp.ErrParse, "Parse error")), true
	}
	if req.Method == "" {
		return marshalResponse(errorResponse(req.ID, mcp.ErrInvalidReq, "Invalid Request")), true
	}

	resp := d.HandleRequest(&req, clientID)
	if resp == nil {
		return "", false
	}
	return marshalResponse(resp), true
}

// handleBatch decomposes a JSON array, dispatches each envelope, and
// rejoins the responses in input order. Notifications contribute no
// response; a notification-only batch yields no body at all.
func (d *Dispatcher) handleBatch(msg, clientID string) (string, bool) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(msg), &raw); err != nil {
		d.state.Logger.Warn("batch parse error", "client", clientID, "error", err)
		return marshalResponse(errorResponse(nil, mcp.ErrParse, "Parse error")), true
	}
	if len(raw) == 0 {
		return marshalResponse(errorResponse(nil, mcp.ErrInvalidReq, "Invalid Request")), true
	}

	responses := make([]*mcp.Response, 0, len(raw))
	for _, item := range raw {
		var req mcp.Request
		if err := json.Unmarshal(item, &req); err != nil {
			responses = append(responses, errorResponse(nil, mcp.ErrInvalidReq, "Invalid Request"))
			continue
		}
		if resp := d.HandleRequest(&req, clientID); resp != nil {
			responses = append(responses, resp)
		}
	}

	if len(responses) == 0 {
		return "", false
	}

	out, err := json.Marshal(responses)
	if err != nil {
		d.state.Logger.Error("failed to marshal batch response", "error", err)
		return marshalResponse(errorResponse(nil, mcp.ErrInternal, "Internal error")), true
	}
	return string(out), true
}

func marshalResponse(resp *mcp.Response) string {
	out, err := json.Marshal(resp)
	if err != nil {
		// The envelope itself always marshals; result values that do
		// not are replaced by an internal error.
		fallback, _ := json.Marshal(errorResponse(resp.ID, mcp.ErrInternal, "Internal error"))
		return string(fallback)
	}
	return string(out)
}
