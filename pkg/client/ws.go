// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/freitascorp/mcpid/pkg/mcp"
)

// maxWSMessage bounds inbound frames; tools/list responses with large
// schemas fit comfortably.
const maxWSMessage = 4 << 20

// WSTransport talks JSON-RPC over the legacy /mcpi WebSocket channel.
// Each request is self-contained; the server answers frames in order.
type WSTransport struct {
	conn   *websocket.Conn
	logger *slog.Logger
}

// DialWS connects to a ws:// or wss:// endpoint URL.
func DialWS(ctx context.Context, url string, logger *slog.Logger) (*WSTransport, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	conn.SetReadLimit(maxWSMessage)

	logger.Info("websocket connected", "url", url)
	return &WSTransport{conn: conn, logger: logger}, nil
}

// Call sends one request and waits for its response frame.
func (t *WSTransport) Call(ctx context.Context, req mcp.Request) (*mcp.Response, error) {
	if err := wsjson.Write(ctx, t.conn, req); err != nil {
		return nil, fmt.Errorf("write %s: %w", req.Method, err)
	}

	var resp mcp.Response
	if err := wsjson.Read(ctx, t.conn, &resp); err != nil {
		return nil, fmt.Errorf("read %s response: %w", req.Method, err)
	}
	return &resp, nil
}

// CallBatch sends a JSON array and reads the array response. Batches
// containing notifications only would never be answered, so callers
// must include at least one request with an id.
func (t *WSTransport) CallBatch(ctx context.Context, reqs []mcp.Request) ([]mcp.Response, error) {
	if err := wsjson.Write(ctx, t.conn, reqs); err != nil {
		return nil, fmt.Errorf("write batch: %w", err)
	}

	var resps []mcp.Response
	if err := wsjson.Read(ctx, t.conn, &resps); err != nil {
		return nil, fmt.Errorf("read batch response: %w", err)
	}
	return resps, nil
}

// Close ends the connection with a normal closure.
func (t *WSTransport) Close() error {
	return t.conn.Close(websocket.StatusNormalClosure, "done")
}
