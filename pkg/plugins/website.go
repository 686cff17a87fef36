// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package plugins

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/freitascorp/mcpid/pkg/plugin"
)

// WebsitePlugin serves site content from a JSON file. SEARCH and GET
// come from the generic JSON-backed behavior; LIST is custom and adds
// a page_type filter plus date sorting.
type WebsitePlugin struct {
	*plugin.JSONBacked
}

// NewWebsitePlugin creates the website plugin rooted at dataRoot.
func NewWebsitePlugin(dataRoot string) *WebsitePlugin {
	base := plugin.NewJSONBacked(plugin.JSONConfig{
		Name:        "website",
		Description: "Search, list and retrieve website content",
		Category:    "content",
		Kind:        plugin.KindCore,
		Operations:  []string{"SEARCH_CONTENT", "GET_CONTENT", "LIST_CONTENT"},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"operation": map[string]any{
					"type": "string",
					"enum": []string{"SEARCH_CONTENT", "GET_CONTENT", "LIST_CONTENT"},
				},
				"id": map[string]any{
					"type":        "string",
					"description": "Page id for GET operations",
				},
				"query": map[string]any{
					"type":        "string",
					"description": "Substring to search for",
				},
				"field": map[string]any{
					"type":        "string",
					"description": "Field to search in, defaults to name",
				},
				"type": map[string]any{
					"type":        "string",
					"description": "Filter LIST results by page_type",
				},
				"sort_by": map[string]any{
					"type":        "string",
					"description": "LIST sort field, defaults to date",
				},
				"order": map[string]any{
					"type": "string",
					"enum": []string{"asc", "desc"},
				},
			},
			"required": []string{"operation"},
		},
		DataPath: filepath.Join(dataRoot, "website", "content", "data.json"),
		Entries: []plugin.ResourceEntry{
			{Name: "content", URISuffix: "content", Description: "All website content as a JSON array"},
		},
	})
	return &WebsitePlugin{JSONBacked: base}
}

// Execute intercepts LIST for filtering and sorting; everything else
// keeps the generic behavior.
func (p *WebsitePlugin) Execute(operation string, args map[string]any) (any, error) {
	if !strings.Contains(operation, "LIST") {
		return p.JSONBacked.Execute(operation, args)
	}

	items, err := p.LoadData()
	if err != nil {
		return nil, err
	}
	return listWithFilters(items, args), nil
}

// listWithFilters applies the optional page_type filter and sorts by
// the requested field.
func listWithFilters(items []map[string]any, args map[string]any) map[string]any {
	pageType, _ := args["type"].(string)
	sortBy, _ := args["sort_by"].(string)
	if sortBy == "" {
		sortBy = "date"
	}
	order, _ := args["order"].(string)
	if order != "asc" {
		order = "desc"
	}

	results := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if pageType != "" {
			if got, _ := item["page_type"].(string); got != pageType {
				continue
			}
		}
		results = append(results, item)
	}

	sort.SliceStable(results, func(i, j int) bool {
		a := fmt.Sprint(results[i][sortBy])
		b := fmt.Sprint(results[j][sortBy])
		if order == "asc" {
			return a < b
		}
		return a > b
	})

	out := map[string]any{
		"results": results,
		"count":   len(results),
		"sort_by": sortBy,
		"order":   order,
	}
	if pageType != "" {
		out["type"] = pageType
	}
	return out
}
