// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

// Package plugin defines the capability-provider contract behind tools
// and resources, the name-keyed registry, and a reusable JSON-file-backed
// plugin implementation.
package plugin

import "github.com/freitascorp/mcpid/pkg/mcp"

// Kind separates built-in capabilities from add-ons.
type Kind string

const (
	KindCore      Kind = "Core"
	KindExtension Kind = "Extension"
)

// ResourceEntry names one resource a plugin exposes. The URI suffix is
// plugin-opaque; the server prefixes it with
// mcpi://<domain>/resources/<plugin>/.
type ResourceEntry struct {
	Name        string
	URISuffix   string
	Description string
}

// Plugin is the contract every capability provider implements. A plugin
// backs exactly one tool and zero or more resources.
//
// Optional capabilities (resource reading, tool annotations, argument
// completions) are separate interfaces so leaf plugins stay small.
type Plugin interface {
	Name() string
	Description() string
	Category() string
	Kind() Kind
	SupportedOperations() []string

	// InputSchema returns the JSON schema advertised for the tool.
	InputSchema() map[string]any

	// Execute runs one operation. A returned error means the tool
	// failed; "no such entity" outcomes are plain result objects with
	// an error field, not Go errors.
	Execute(operation string, args map[string]any) (any, error)

	Resources() []ResourceEntry
}

// ResourceReader is implemented by plugins that can resolve a resource
// suffix into content. The server rewrites the content into resource
// contents under the full mcpi:// URI.
type ResourceReader interface {
	ReadResource(suffix string) (mcp.ContentItem, error)
}

// Annotated is implemented by plugins that carry tool display hints.
type Annotated interface {
	ToolAnnotations() *mcp.ToolAnnotations
}

// Completer is implemented by plugins that offer argument completion.
// ctx carries already-resolved argument values.
type Completer interface {
	Completions(argName, partial string, ctx map[string]string) []string
}

// AnnotationsOf returns p's tool annotations, or nil when p has none.
func AnnotationsOf(p Plugin) *mcp.ToolAnnotations {
	if a, ok := p.(Annotated); ok {
		return a.ToolAnnotations()
	}
	return nil
}

// CompletionsOf returns p's completions for an argument, or an empty
// list when p does not complete.
func CompletionsOf(p Plugin, argName, partial string, ctx map[string]string) []string {
	if c, ok := p.(Completer); ok {
		return c.Completions(argName, partial, ctx)
	}
	return []string{}
}
