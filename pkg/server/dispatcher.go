// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package server

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/freitascorp/mcpid/pkg/audit"
	"github.com/freitascorp/mcpid/pkg/bus"
	"github.com/freitascorp/mcpid/pkg/mcp"
	"github.com/freitascorp/mcpid/pkg/plugin"
)

// Notifier pushes a server-initiated event towards a client's SSE
// stream. clientID is the session id on the streamable transport.
type Notifier func(clientID string, ev bus.Event)

// Dispatcher routes one JSON-RPC request to its method handler. It
// holds no mutable state and is shared across connections. Each
// transport owns its own dispatcher because the two transports echo
// different protocol versions.
type Dispatcher struct {
	state           *AppState
	protocolVersion string

	// legacyCompletions accepts the early "completions" method name,
	// enabled on the WebSocket path only.
	legacyCompletions bool

	// notify is nil on transports without a server-to-client channel.
	notify Notifier
}

// NewDispatcher creates a dispatcher echoing the given protocol
// version on initialize.
func NewDispatcher(state *AppState, protocolVersion string) *Dispatcher {
	return &Dispatcher{state: state, protocolVersion: protocolVersion}
}

// WithLegacyCompletions accepts "completions" as a method alias.
func (d *Dispatcher) WithLegacyCompletions() *Dispatcher {
	d.legacyCompletions = true
	return d
}

// WithNotifier attaches a server-to-client event channel.
func (d *Dispatcher) WithNotifier(n Notifier) *Dispatcher {
	d.notify = n
	return d
}

// HandleRequest dispatches one request and returns its response, or
// nil for notifications.
func (d *Dispatcher) HandleRequest(req *mcp.Request, clientID string) *mcp.Response {
	d.state.Metrics.RequestsProcessed.Inc()

	if req.ID == nil {
		// Notifications produce no response regardless of method.
		d.state.Logger.Debug("notification received", "method", req.Method, "client", clientID)
		return nil
	}

	var resp *mcp.Response
	switch req.Method {
	case "initialize":
		resp = d.handleInitialize(req)
	case "resources/list":
		resp = d.handleResourcesList(req)
	case "resources/read":
		resp = d.handleResourcesRead(req)
	case "tools/list":
		resp = d.handleToolsList(req)
	case "tools/call":
		resp = d.handleToolsCall(req, clientID)
	case "completion/complete":
		resp = d.handleComplete(req)
	case "completions":
		if d.legacyCompletions {
			resp = d.handleComplete(req)
		} else {
			resp = errorResponse(req.ID, mcp.ErrNotFound, "Method not found: "+req.Method)
		}
	case "ping":
		resp = resultResponse(req.ID, map[string]any{})
	default:
		resp = errorResponse(req.ID, mcp.ErrNotFound, "Method not found: "+req.Method)
	}

	if resp != nil && resp.Error != nil {
		d.state.Metrics.RequestErrors.Inc()
	}
	return resp
}

// ── Method handlers ────────────────────────────────────────────────

func (d *Dispatcher) handleInitialize(req *mcp.Request) *mcp.Response {
	var params mcp.InitializeParams
	if err := reparse(req.Params, &params); err != nil {
		return errorResponse(req.ID, mcp.ErrInvalidParams, "Invalid params for initialize")
	}

	if params.ClientInfo.Name != "" {
		d.state.Logger.Info("client initialized",
			"client_name", params.ClientInfo.Name,
			"client_version", params.ClientInfo.Version)
	}

	result := mcp.InitializeResult{
		ProtocolVersion: d.protocolVersion,
		Capabilities: mcp.ServerCapability{
			Resources:   &mcp.ResourcesCapability{ListChanged: true, Subscribe: true},
			Tools:       &mcp.ToolsCapability{ListChanged: true},
			Completions: map[string]any{},
		},
		ServerInfo: mcp.EntityInfo{
			Name:    d.state.Provider.Name,
			Version: ServerVersion,
		},
		Instructions: "Provider: " + d.state.Provider.Description,
	}
	return resultResponse(req.ID, result)
}

func (d *Dispatcher) handleResourcesList(req *mcp.Request) *mcp.Response {
	resources := []mcp.Resource{}
	for _, p := range d.state.Registry.All() {
		for _, entry := range p.Resources() {
			resources = append(resources, mcp.Resource{
				URI:         d.resourceURI(p.Name(), entry.URISuffix),
				Name:        entry.Name,
				Description: entry.Description,
				MimeType:    "application/json",
			})
		}
	}
	return resultResponse(req.ID, mcp.ListResourcesResult{Resources: resources})
}

func (d *Dispatcher) handleResourcesRead(req *mcp.Request) *mcp.Response {
	d.state.Metrics.ResourceReads.Inc()

	var params mcp.ReadResourceParams
	if err := reparse(req.Params, &params); err != nil || params.URI == "" {
		return errorResponse(req.ID, mcp.ErrInvalidParams, "Invalid params for resources/read")
	}

	pluginName, suffix, err := parseResourceURI(params.URI)
	if err != nil {
		return errorResponse(req.ID, mcp.ErrResourceFormat, err.Error())
	}

	p, ok := d.state.Registry.Get(pluginName)
	if !ok {
		return errorResponse(req.ID, mcp.ErrResourceRead, "Plugin not found: "+pluginName)
	}

	reader, ok := p.(plugin.ResourceReader)
	if !ok {
		return errorResponse(req.ID, mcp.ErrResourceRead,
			fmt.Sprintf("Plugin %s does not serve resources", pluginName))
	}

	item, err := reader.ReadResource(suffix)
	if err != nil {
		return errorResponse(req.ID, mcp.ErrResourceRead, "Resource read error: "+err.Error())
	}

	contents := contentToResource(params.URI, item)
	return resultResponse(req.ID, mcp.ReadResourceResult{Contents: []mcp.ResourceContents{contents}})
}

func (d *Dispatcher) handleToolsList(req *mcp.Request) *mcp.Response {
	tools := []mcp.Tool{}
	for _, p := range d.state.Registry.All() {
		tools = append(tools, mcp.Tool{
			Name:        p.Name(),
			Description: p.Description(),
			InputSchema: p.InputSchema(),
			Annotations: plugin.AnnotationsOf(p),
		})
	}
	return resultResponse(req.ID, mcp.ListToolsResult{Tools: tools})
}

func (d *Dispatcher) handleToolsCall(req *mcp.Request, clientID string) *mcp.Response {
	var params mcp.CallToolParams
	if err := reparse(req.Params, &params); err != nil || params.Name == "" {
		return errorResponse(req.ID, mcp.ErrInvalidParams, "Invalid params for tools/call")
	}

	p, ok := d.state.Registry.Get(params.Name)
	if !ok {
		return errorResponse(req.ID, mcp.ErrInvalidParams, "Tool not found: "+params.Name)
	}

	args := params.Arguments
	if args == nil {
		args = map[string]any{}
	}
	operation := "DEFAULT"
	if op, ok := args["operation"].(string); ok && op != "" {
		operation = op
	}

	d.state.Metrics.ToolCalls.Inc()
	start := time.Now()
	result, err := p.Execute(operation, args)
	elapsed := time.Since(start)
	d.state.Metrics.ToolLatency.Observe(elapsed.Seconds())
	d.recordAudit(params.Name, operation, clientID, elapsed, err)

	if err != nil {
		// Execution failure is a result with isError, not a JSON-RPC
		// error.
		d.state.Metrics.ToolErrors.Inc()
		d.state.Logger.Warn("tool execution failed",
			"tool", params.Name, "operation", operation, "error", err, "client", clientID)
		return resultResponse(req.ID, mcp.CallToolResult{
			Content: []mcp.ContentItem{mcp.TextContent("Exec err: " + err.Error())},
			IsError: true,
		})
	}

	d.publishProgress(clientID, params.Name, operation)

	content, cerr := resultContent(result)
	if cerr != nil {
		return errorResponse(req.ID, mcp.ErrInternal, "Failed to encode tool result")
	}
	return resultResponse(req.ID, mcp.CallToolResult{Content: content, IsError: false})
}

func (d *Dispatcher) handleComplete(req *mcp.Request) *mcp.Response {
	var params mcp.CompleteParams
	if err := reparse(req.Params, &params); err != nil || params.Argument.Name == "" {
		return errorResponse(req.ID, mcp.ErrInvalidParams, "Invalid params for completion/complete")
	}

	ctxArgs := map[string]string{}
	if params.Context != nil {
		ctxArgs = params.Context.Arguments
	}

	// Tool-name context comes only from context.arguments; the ref
	// names the prompt or resource being completed, not a tool.
	toolName := ctxArgs["name"]

	values := []string{}
	switch {
	case params.Argument.Name == "name" && toolName == "":
		for _, p := range d.state.Registry.All() {
			if strings.HasPrefix(p.Name(), params.Argument.Value) {
				values = append(values, p.Name())
			}
		}
	case toolName != "":
		if p, ok := d.state.Registry.Get(toolName); ok {
			values = plugin.CompletionsOf(p, params.Argument.Name, params.Argument.Value, ctxArgs)
		}
	}

	total := len(values)
	hasMore := false
	return resultResponse(req.ID, mcp.CompleteResult{
		Completion: mcp.Completion{Values: values, Total: &total, HasMore: &hasMore},
	})
}

// ── Helpers ────────────────────────────────────────────────────────

// recordAudit appends a tools/call event to the audit trail. Audit
// failures are logged, never surfaced to the caller.
func (d *Dispatcher) recordAudit(tool, operation, clientID string, elapsed time.Duration, execErr error) {
	if d.state.Audit == nil {
		return
	}
	ev := audit.Event{
		Tool:      tool,
		Operation: operation,
		ClientID:  clientID,
		Status:    "success",
		Duration:  elapsed.Milliseconds(),
	}
	if execErr != nil {
		ev.Status = "failure"
		ev.Error = execErr.Error()
	}
	if err := d.state.Audit.Append(&ev); err != nil {
		d.state.Logger.Warn("audit append failed", "tool", tool, "error", err)
	}
}

// publishProgress pushes a completion notice onto the client's SSE
// stream when the transport has one.
func (d *Dispatcher) publishProgress(clientID, tool, operation string) {
	if d.notify == nil {
		return
	}
	data, err := json.Marshal(mcp.Request{
		JSONRPC: "2.0",
		Method:  "notifications/progress",
		Params: map[string]any{
			"tool":      tool,
			"operation": operation,
			"status":    "completed",
		},
	})
	if err != nil {
		return
	}
	d.notify(clientID, bus.Event{Type: "message", Data: string(data)})
}

func (d *Dispatcher) resourceURI(pluginName, suffix string) string {
	return fmt.Sprintf("mcpi://%s/resources/%s/%s", d.state.Provider.Domain, pluginName, suffix)
}

// parseResourceURI splits mcpi://<host>/resources/<plugin>/<suffix>.
func parseResourceURI(raw string) (pluginName, suffix string, err error) {
	u, perr := url.Parse(raw)
	if perr != nil {
		return "", "", fmt.Errorf("Invalid resource URI: %s", raw)
	}
	if u.Scheme != "mcpi" {
		return "", "", fmt.Errorf("Invalid resource URI scheme: %s", u.Scheme)
	}

	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 3)
	if len(parts) < 3 || parts[0] != "resources" || parts[1] == "" {
		return "", "", fmt.Errorf("Invalid resource URI: %s", raw)
	}
	return parts[1], parts[2], nil
}

// contentToResource rewrites a plugin content item into resource
// contents under the requested URI.
func contentToResource(uri string, item mcp.ContentItem) mcp.ResourceContents {
	mimeType := item.MimeType
	if item.Type == mcp.ContentTypeText || item.Data == "" {
		if mimeType == "" {
			mimeType = "application/json"
		}
		return mcp.TextResource(uri, mimeType, item.Text)
	}
	return mcp.BlobResource(uri, mimeType, item.Data)
}

// resultContent turns a tool result into content items. A result map
// carrying an audio object becomes an audio item followed by the
// remaining fields as JSON text.
func resultContent(result any) ([]mcp.ContentItem, error) {
	if m, ok := result.(map[string]any); ok {
		if audio, ok := m["audio"].(map[string]any); ok {
			data, _ := audio["data"].(string)
			mimeType, _ := audio["mimeType"].(string)
			if data != "" {
				rest := make(map[string]any, len(m))
				for k, v := range m {
					if k != "audio" {
						rest[k] = v
					}
				}
				text, err := json.Marshal(rest)
				if err != nil {
					return nil, err
				}
				return []mcp.ContentItem{
					mcp.AudioContent(data, mimeType),
					mcp.TextContent(string(text)),
				}, nil
			}
		}
	}

	text, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return []mcp.ContentItem{mcp.TextContent(string(text))}, nil
}

// reparse converts loosely-typed params into a concrete struct.
func reparse(params any, dst any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func resultResponse(id any, result any) *mcp.Response {
	return &mcp.Response{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id any, code int, message string) *mcp.Response {
	return &mcp.Response{JSONRPC: "2.0", ID: id, Error: &mcp.Error{Code: code, Message: message}}
}
