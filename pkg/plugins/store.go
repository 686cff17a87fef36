// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

// Package plugins holds the concrete capability providers shipped with
// the endpoint: the store family, hello, weather_forecast, website and
// social.
package plugins

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/freitascorp/mcpid/pkg/mcp"
	"github.com/freitascorp/mcpid/pkg/plugin"
)

// storeSpec describes one member of the store plugin family. They are
// all JSON-backed and differ only in naming and data location.
type storeSpec struct {
	entity      string // singular, e.g. "product"
	plural      string // e.g. "products"
	description string
}

var storeSpecs = []storeSpec{
	{"product", "products", "Search and retrieve product catalog entries"},
	{"customer", "customers", "Search and retrieve customer records"},
	{"order", "orders", "Search and retrieve order records"},
	{"review", "reviews", "Search and retrieve product reviews"},
}

// NewStorePlugin builds one store_<entity> plugin rooted at dataRoot.
func NewStorePlugin(spec storeSpec, dataRoot string) *plugin.JSONBacked {
	upper := strings.ToUpper(spec.entity)
	upperPlural := strings.ToUpper(spec.plural)
	ops := []string{
		"SEARCH_" + upperPlural,
		"GET_" + upper,
		"LIST_" + upperPlural,
	}

	return plugin.NewJSONBacked(plugin.JSONConfig{
		Name:        "store_" + spec.entity,
		Description: spec.description,
		Category:    "commerce",
		Kind:        plugin.KindCore,
		Operations:  ops,
		Schema:      storeSchema(ops, spec.entity),
		DataPath:    filepath.Join(dataRoot, "store", spec.plural, "data.json"),
		Entries: []plugin.ResourceEntry{
			{
				Name:        spec.plural,
				URISuffix:   spec.plural,
				Description: fmt.Sprintf("All %s as a JSON array", spec.plural),
			},
		},
	})
}

func storeSchema(ops []string, entity string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operation": map[string]any{
				"type": "string",
				"enum": ops,
			},
			"id": map[string]any{
				"type":        "string",
				"description": fmt.Sprintf("The %s id for GET operations", entity),
			},
			"query": map[string]any{
				"type":        "string",
				"description": "Substring to search for",
			},
			"field": map[string]any{
				"type":        "string",
				"description": "Field to search in, defaults to name",
			},
		},
		"required": []string{"operation"},
	}
}

// RegisterAll wires every shipped plugin into the registry. referrals
// seed the social plugin.
func RegisterAll(reg *plugin.Registry, dataRoot string, referrals []mcp.Referral) error {
	for _, spec := range storeSpecs {
		if err := reg.Register(NewStorePlugin(spec, dataRoot)); err != nil {
			return err
		}
	}
	if err := reg.Register(NewHelloPlugin(dataRoot)); err != nil {
		return err
	}
	if err := reg.Register(NewWeatherPlugin()); err != nil {
		return err
	}
	if err := reg.Register(NewWebsitePlugin(dataRoot)); err != nil {
		return err
	}
	if err := reg.Register(NewSocialPlugin(dataRoot, referrals)); err != nil {
		return err
	}
	return nil
}
