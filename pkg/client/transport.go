// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

// Package client drives an MCP endpoint over either transport: the
// legacy MCPI WebSocket channel or streamable HTTP. It also carries the
// scripted exercise sequence used by the mcpi-client CLI.
package client

import (
	"context"

	"github.com/freitascorp/mcpid/pkg/mcp"
)

// Transport sends JSON-RPC traffic to an endpoint. Implementations are
// single-connection and not safe for concurrent calls.
type Transport interface {
	Call(ctx context.Context, req mcp.Request) (*mcp.Response, error)
	CallBatch(ctx context.Context, reqs []mcp.Request) ([]mcp.Response, error)
	Close() error
}
