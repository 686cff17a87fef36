// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package plugin

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/freitascorp/mcpid/pkg/mcp"
)

// JSONConfig describes a JSON-file-backed plugin.
type JSONConfig struct {
	Name        string
	Description string
	Category    string
	Kind        Kind
	Operations  []string
	Schema      map[string]any
	DataPath    string
	Entries     []ResourceEntry
}

// JSONBacked is a reusable plugin over a JSON array on disk. Operation
// names containing SEARCH, GET or LIST map onto the three generic
// behaviors; anything else is unsupported. The data file is re-read on
// every call, so edits are picked up without a restart.
type JSONBacked struct {
	cfg JSONConfig
}

// NewJSONBacked creates a plugin from its static description.
func NewJSONBacked(cfg JSONConfig) *JSONBacked {
	if cfg.Kind == "" {
		cfg.Kind = KindCore
	}
	return &JSONBacked{cfg: cfg}
}

func (p *JSONBacked) Name() string                  { return p.cfg.Name }
func (p *JSONBacked) Description() string           { return p.cfg.Description }
func (p *JSONBacked) Category() string              { return p.cfg.Category }
func (p *JSONBacked) Kind() Kind                    { return p.cfg.Kind }
func (p *JSONBacked) SupportedOperations() []string { return p.cfg.Operations }
func (p *JSONBacked) InputSchema() map[string]any   { return p.cfg.Schema }
func (p *JSONBacked) Resources() []ResourceEntry    { return p.cfg.Entries }

// DataPath exposes the backing file location.
func (p *JSONBacked) DataPath() string { return p.cfg.DataPath }

// LoadData reads and parses the backing JSON array.
func (p *JSONBacked) LoadData() ([]map[string]any, error) {
	raw, err := os.ReadFile(p.cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("read data file %s: %w", p.cfg.DataPath, err)
	}

	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse data file %s: %w", p.cfg.DataPath, err)
	}
	return items, nil
}

// Execute routes an operation name onto the generic behaviors.
func (p *JSONBacked) Execute(operation string, args map[string]any) (any, error) {
	items, err := p.LoadData()
	if err != nil {
		return nil, err
	}

	switch {
	case strings.Contains(operation, "SEARCH"):
		return p.search(items, args), nil
	case strings.Contains(operation, "GET"):
		return p.get(items, args)
	case strings.Contains(operation, "LIST"):
		return map[string]any{"results": items, "count": len(items)}, nil
	default:
		return nil, fmt.Errorf("unsupported operation: %s", operation)
	}
}

// search matches item[field] against query, case-insensitively. An
// empty query matches every item.
func (p *JSONBacked) search(items []map[string]any, args map[string]any) map[string]any {
	query := stringArg(args, "query", "")
	field := stringArg(args, "field", "name")
	needle := strings.ToLower(query)

	results := make([]map[string]any, 0, len(items))
	for _, item := range items {
		value, ok := item[field].(string)
		if !ok {
			continue
		}
		if needle == "" || strings.Contains(strings.ToLower(value), needle) {
			results = append(results, item)
		}
	}

	return map[string]any{
		"results": results,
		"count":   len(results),
		"query":   query,
		"field":   field,
	}
}

// get scans for item["id"] == id. Not-found is a tool-level outcome,
// not an error.
func (p *JSONBacked) get(items []map[string]any, args map[string]any) (any, error) {
	id, ok := args["id"]
	if !ok {
		return nil, fmt.Errorf("id parameter required")
	}

	for _, item := range items {
		if got, ok := item["id"]; ok && fmt.Sprint(got) == fmt.Sprint(id) {
			return item, nil
		}
	}

	return map[string]any{"error": "Item not found", "id": id}, nil
}

// ReadResource serves the backing data as a JSON text resource when the
// suffix matches one of the plugin's entries.
func (p *JSONBacked) ReadResource(suffix string) (mcp.ContentItem, error) {
	for _, entry := range p.cfg.Entries {
		if entry.URISuffix != suffix {
			continue
		}
		raw, err := os.ReadFile(p.cfg.DataPath)
		if err != nil {
			return mcp.ContentItem{}, fmt.Errorf("read data file %s: %w", p.cfg.DataPath, err)
		}
		return mcp.ContentItem{Type: mcp.ContentTypeText, Text: string(raw), MimeType: "application/json"}, nil
	}
	return mcp.ContentItem{}, fmt.Errorf("unknown resource suffix: %s", suffix)
}

// stringArg reads an optional string argument with a default.
func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return fallback
}
