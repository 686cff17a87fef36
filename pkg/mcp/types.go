// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

// Package mcp defines the wire types shared by the server and client:
// the JSON-RPC 2.0 envelope, MCP method params/results, content items,
// and resource contents.
//
// All MCP types serialize with camelCase field names.
// Spec: https://modelcontextprotocol.io/specification
package mcp

const (
	// LatestProtocolVersion is the date-based MCP version echoed by the
	// streamable HTTP transport on initialize.
	LatestProtocolVersion = "2025-03-26"

	// MCPIVersion is the legacy version echoed on the WebSocket path.
	MCPIVersion = "0.1.0"
)

// ── JSON-RPC 2.0 envelope ──────────────────────────────────────────

// Request is a JSON-RPC 2.0 request/notification.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id,omitempty"` // nil for notifications
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ── JSON-RPC error codes ───────────────────────────────────────────

const (
	ErrParse         = -32700
	ErrInvalidReq    = -32600
	ErrNotFound      = -32601
	ErrInvalidParams = -32602
	ErrInternal      = -32603

	// Application codes (>= 100) used for plugin/resource failures.
	ErrResourceRead   = 100
	ErrResourceFormat = 101
)

// ── MCP initialize ─────────────────────────────────────────────────

// InitializeParams is sent by the client on the "initialize" method.
type InitializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities,omitempty"`
	ClientInfo      EntityInfo     `json:"clientInfo,omitempty"`
}

// InitializeResult is returned by the server in response to "initialize".
type InitializeResult struct {
	ProtocolVersion string           `json:"protocolVersion"`
	Capabilities    ServerCapability `json:"capabilities"`
	ServerInfo      EntityInfo       `json:"serverInfo"`
	Instructions    string           `json:"instructions,omitempty"`
}

// EntityInfo identifies a client or server.
type EntityInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// ServerCapability advertises supported features.
type ServerCapability struct {
	Resources   *ResourcesCapability `json:"resources,omitempty"`
	Tools       *ToolsCapability     `json:"tools,omitempty"`
	Prompts     *PromptsCapability   `json:"prompts,omitempty"`
	Logging     map[string]any       `json:"logging,omitempty"`
	Completions map[string]any       `json:"completions,omitempty"`
}

// ResourcesCapability describes the resources feature.
type ResourcesCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
	Subscribe   bool `json:"subscribe,omitempty"`
}

// ToolsCapability describes the tools feature.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// PromptsCapability describes the prompts feature.
type PromptsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ── resources ──────────────────────────────────────────────────────

// Resource describes a single addressable resource.
type Resource struct {
	URI         string       `json:"uri"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	MimeType    string       `json:"mimeType,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

// ListResourcesResult is the response to "resources/list".
type ListResourcesResult struct {
	Resources  []Resource `json:"resources"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// ReadResourceParams is the input for "resources/read".
type ReadResourceParams struct {
	URI string `json:"uri"`
}

// ReadResourceResult is the response to "resources/read".
type ReadResourceResult struct {
	Contents []ResourceContents `json:"contents"`
}

// ── tools ──────────────────────────────────────────────────────────

// Tool describes a callable tool.
type Tool struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	InputSchema map[string]any   `json:"inputSchema"`
	Annotations *ToolAnnotations `json:"annotations,omitempty"`
}

// ToolAnnotations carry display hints for a tool.
type ToolAnnotations struct {
	Title           string `json:"title,omitempty"`
	ReadOnlyHint    *bool  `json:"readOnlyHint,omitempty"`
	DestructiveHint *bool  `json:"destructiveHint,omitempty"`
	IdempotentHint  *bool  `json:"idempotentHint,omitempty"`
	OpenWorldHint   *bool  `json:"openWorldHint,omitempty"`
}

// ListToolsResult is the response to "tools/list".
type ListToolsResult struct {
	Tools      []Tool `json:"tools"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// CallToolParams is the input for "tools/call".
type CallToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// CallToolResult is the response to "tools/call".
// IsError is always emitted so clients can rely on its presence.
type CallToolResult struct {
	Content []ContentItem `json:"content"`
	IsError bool          `json:"isError"`
}

// ── completion/complete ────────────────────────────────────────────

// CompleteParams is the input for "completion/complete".
type CompleteParams struct {
	Ref      CompletionRef      `json:"ref"`
	Argument CompletionArgument `json:"argument"`
	Context  *CompletionContext `json:"context,omitempty"`
}

// CompletionRef names the prompt or resource being completed.
type CompletionRef struct {
	Type string `json:"type"` // "ref/prompt" or "ref/resource"
	Name string `json:"name,omitempty"`
	URI  string `json:"uri,omitempty"`
}

// CompletionArgument is the argument under completion.
type CompletionArgument struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CompletionContext carries already-resolved argument values.
type CompletionContext struct {
	Arguments map[string]string `json:"arguments,omitempty"`
}

// CompleteResult is the response to "completion/complete".
type CompleteResult struct {
	Completion Completion `json:"completion"`
}

// Completion is the value list inside a CompleteResult.
type Completion struct {
	Values  []string `json:"values"`
	Total   *int     `json:"total,omitempty"`
	HasMore *bool    `json:"hasMore,omitempty"`
}

// ── discovery ──────────────────────────────────────────────────────

// ProviderInfo identifies the capability provider behind an endpoint.
type ProviderInfo struct {
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
}

// CapabilityDescription summarizes one plugin for discovery.
type CapabilityDescription struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Operations  []string `json:"operations"`
}

// Referral points at another MCP provider.
type Referral struct {
	Name         string `json:"name"`
	Domain       string `json:"domain"`
	Relationship string `json:"relationship"`
}

// DiscoveryResponse is the body served at GET /mcpi/discover.
type DiscoveryResponse struct {
	Provider     ProviderInfo            `json:"provider"`
	Mode         string                  `json:"mode"`
	Capabilities []CapabilityDescription `json:"capabilities"`
	Referrals    []Referral              `json:"referrals"`
}
