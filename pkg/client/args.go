// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package client

import "strings"

// SynthesizeArgs builds plausible arguments for a tool call from its
// input schema. Property names win over declared types: an "id" is
// always "test-id-123" whatever the schema says.
func SynthesizeArgs(schema map[string]any) map[string]any {
	args := map[string]any{}

	properties, ok := schema["properties"].(map[string]any)
	if !ok {
		return args
	}

	for name, raw := range properties {
		if name == "operation" {
			// The driver fills the operation in per call.
			continue
		}
		prop, _ := raw.(map[string]any)
		args[name] = synthesizeValue(name, prop)
	}
	return args
}

func synthesizeValue(name string, prop map[string]any) any {
	switch {
	case strings.Contains(name, "id"):
		return "test-id-123"
	case strings.Contains(name, "query"):
		return "search query"
	case strings.Contains(name, "location"):
		return "London"
	case strings.Contains(name, "domain"):
		return "target.example.com"
	case strings.Contains(name, "relationship"):
		return "affiliate"
	}

	propType, _ := prop["type"].(string)
	switch propType {
	case "number", "integer":
		return 42
	case "boolean":
		return false
	default:
		return "default str"
	}
}
