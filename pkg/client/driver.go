// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/freitascorp/mcpid/pkg/mcp"
)

// ErrToolNotFound reports that the tool named with --plugin is not
// advertised by the endpoint.
var ErrToolNotFound = errors.New("tool not found")

// Driver runs the scripted exercise sequence against an endpoint:
// discover, initialize, list resources and tools, a batch, one call
// per advertised operation of each tool, then a final ping.
type Driver struct {
	baseURL   string
	transport Transport
	http      *resty.Client
	out       io.Writer
	logger    *slog.Logger

	// onlyTool restricts tool calls to a single plugin.
	onlyTool string

	nextID int
}

// NewDriver creates a driver for the given base URL and transport.
func NewDriver(baseURL string, transport Transport, out io.Writer, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		transport: transport,
		http:      resty.New(),
		out:       out,
		logger:    logger,
		nextID:    1,
	}
}

// RestrictTool limits tool calls to one plugin name.
func (d *Driver) RestrictTool(name string) { d.onlyTool = name }

// Run executes the full sequence. It stops on the first transport or
// protocol failure.
func (d *Driver) Run(ctx context.Context) error {
	disc, err := d.discover(ctx)
	if err != nil {
		return err
	}

	if err := d.initialize(ctx); err != nil {
		return err
	}

	if _, err := d.call(ctx, "resources/list", nil); err != nil {
		return err
	}

	tools, err := d.listTools(ctx)
	if err != nil {
		return err
	}

	if err := d.runBatch(ctx); err != nil {
		return err
	}

	if err := d.exerciseTools(ctx, disc, tools); err != nil {
		return err
	}

	resp, err := d.transport.Call(ctx, mcp.Request{JSONRPC: "2.0", ID: 99, Method: "ping"})
	if err != nil {
		return fmt.Errorf("final ping: %w", err)
	}
	if resp.Error != nil {
		return fmt.Errorf("final ping: %s", resp.Error.Message)
	}

	fmt.Fprintln(d.out, "Done.")
	return nil
}

// discover fetches the provider summary and prints capabilities and
// referrals.
func (d *Driver) discover(ctx context.Context) (*mcp.DiscoveryResponse, error) {
	var disc mcp.DiscoveryResponse
	resp, err := d.http.R().
		SetContext(ctx).
		SetResult(&disc).
		Get(d.baseURL + "/mcpi/discover")
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("discover: status %d", resp.StatusCode())
	}

	fmt.Fprintf(d.out, "Provider: %s (%s)\n", disc.Provider.Name, disc.Provider.Domain)
	fmt.Fprintf(d.out, "Capabilities (%d):\n", len(disc.Capabilities))
	for _, c := range disc.Capabilities {
		fmt.Fprintf(d.out, "  %s [%s]: %s\n", c.Name, c.Category, strings.Join(c.Operations, ", "))
	}
	for _, ref := range disc.Referrals {
		fmt.Fprintf(d.out, "Referral: %s (%s, %s)\n", ref.Name, ref.Domain, ref.Relationship)
	}
	return &disc, nil
}

func (d *Driver) initialize(ctx context.Context) error {
	resp, err := d.call(ctx, "initialize", mcp.InitializeParams{
		ProtocolVersion: mcp.LatestProtocolVersion,
		ClientInfo:      mcp.EntityInfo{Name: "mcpi-client", Version: "0.1.0"},
	})
	if err != nil {
		return err
	}

	var result mcp.InitializeResult
	if err := decodeResult(resp, &result); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	fmt.Fprintf(d.out, "Server: %s %s (protocol %s)\n",
		result.ServerInfo.Name, result.ServerInfo.Version, result.ProtocolVersion)
	return nil
}

func (d *Driver) listTools(ctx context.Context) ([]mcp.Tool, error) {
	resp, err := d.call(ctx, "tools/list", nil)
	if err != nil {
		return nil, err
	}

	var result mcp.ListToolsResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, fmt.Errorf("tools/list: %w", err)
	}
	fmt.Fprintf(d.out, "Tools (%d)\n", len(result.Tools))
	return result.Tools, nil
}

// runBatch sends a two-item batch and checks response order.
func (d *Driver) runBatch(ctx context.Context) error {
	resps, err := d.transport.CallBatch(ctx, []mcp.Request{
		{JSONRPC: "2.0", ID: 10, Method: "ping"},
		{JSONRPC: "2.0", ID: 11, Method: "resources/list"},
	})
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	if len(resps) != 2 {
		return fmt.Errorf("batch: got %d responses, want 2", len(resps))
	}
	fmt.Fprintf(d.out, "Batch OK (ids %v, %v)\n", resps[0].ID, resps[1].ID)
	return nil
}

// exerciseTools calls every advertised operation of every tool, or of
// the single restricted tool. Operations come from the discovery
// document; argument values are synthesized from each tool's schema.
func (d *Driver) exerciseTools(ctx context.Context, disc *mcp.DiscoveryResponse, tools []mcp.Tool) error {
	operations := map[string][]string{}
	for _, c := range disc.Capabilities {
		operations[c.Name] = c.Operations
	}

	if d.onlyTool != "" {
		found := false
		for _, tool := range tools {
			if tool.Name == d.onlyTool {
				found = true
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrToolNotFound, d.onlyTool)
		}
	}

	for _, tool := range tools {
		if d.onlyTool != "" && tool.Name != d.onlyTool {
			continue
		}

		ops := operations[tool.Name]
		if len(ops) == 0 {
			ops = []string{"DEFAULT"}
		}

		for _, op := range ops {
			args := SynthesizeArgs(tool.InputSchema)
			args["operation"] = op

			resp, err := d.call(ctx, "tools/call", mcp.CallToolParams{Name: tool.Name, Arguments: args})
			if err != nil {
				return fmt.Errorf("tools/call %s %s: %w", tool.Name, op, err)
			}

			var result mcp.CallToolResult
			if err := decodeResult(resp, &result); err != nil {
				return fmt.Errorf("tools/call %s %s: %w", tool.Name, op, err)
			}

			status := "ok"
			if result.IsError {
				status = "error"
			}
			fmt.Fprintf(d.out, "  %s %s: %s (%d content items)\n", tool.Name, op, status, len(result.Content))
		}
	}
	return nil
}

// call sends one request with the next id and fails on a JSON-RPC
// error.
func (d *Driver) call(ctx context.Context, method string, params any) (*mcp.Response, error) {
	id := d.nextID
	d.nextID++

	resp, err := d.transport.Call(ctx, mcp.Request{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%s: server error %d: %s", method, resp.Error.Code, resp.Error.Message)
	}
	return resp, nil
}

func decodeResult(resp *mcp.Response, dst any) error {
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
