// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package plugins

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/freitascorp/mcpid/pkg/plugin"
)

// helloConfig is the optional on-disk configuration for the hello
// plugin. Missing file or fields fall back to defaults.
type helloConfig struct {
	AgentName   string `json:"agent_name"`
	Greeting    string `json:"greeting"`
	Personality string `json:"personality"`
}

func defaultHelloConfig() helloConfig {
	return helloConfig{
		AgentName:   "MCP Assistant",
		Greeting:    "Hello! I can help you explore this provider's capabilities.",
		Personality: "friendly and concise",
	}
}

// detail levels accepted by the HELLO operation.
var helloDetailLevels = []string{"basic", "standard", "detailed"}

// HelloPlugin introduces the provider to a connecting agent.
type HelloPlugin struct {
	configPath string
}

// NewHelloPlugin creates the hello plugin rooted at dataRoot.
func NewHelloPlugin(dataRoot string) *HelloPlugin {
	return &HelloPlugin{
		configPath: filepath.Join(dataRoot, "hello", "config", "data.json"),
	}
}

func (p *HelloPlugin) Name() string        { return "hello" }
func (p *HelloPlugin) Description() string { return "Generate a structured greeting for agents" }
func (p *HelloPlugin) Category() string    { return "agent" }
func (p *HelloPlugin) Kind() plugin.Kind   { return plugin.KindCore }

func (p *HelloPlugin) SupportedOperations() []string { return []string{"HELLO"} }

func (p *HelloPlugin) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operation": map[string]any{
				"type": "string",
				"enum": []string{"HELLO"},
			},
			"context": map[string]any{
				"type":        "string",
				"description": "Free-form context about the asking agent",
			},
			"detail_level": map[string]any{
				"type": "string",
				"enum": helloDetailLevels,
			},
		},
		"required": []string{"operation"},
	}
}

func (p *HelloPlugin) Resources() []plugin.ResourceEntry { return nil }

// loadConfig reads the config file, falling back to defaults when the
// file is absent or malformed fields are missing.
func (p *HelloPlugin) loadConfig() helloConfig {
	cfg := defaultHelloConfig()

	raw, err := os.ReadFile(p.configPath)
	if err != nil {
		return cfg
	}

	var fromDisk helloConfig
	if err := json.Unmarshal(raw, &fromDisk); err != nil {
		return cfg
	}
	if fromDisk.AgentName != "" {
		cfg.AgentName = fromDisk.AgentName
	}
	if fromDisk.Greeting != "" {
		cfg.Greeting = fromDisk.Greeting
	}
	if fromDisk.Personality != "" {
		cfg.Personality = fromDisk.Personality
	}
	return cfg
}

// Execute handles the HELLO operation.
func (p *HelloPlugin) Execute(operation string, args map[string]any) (any, error) {
	if operation != "HELLO" {
		return nil, fmt.Errorf("unsupported operation: %s", operation)
	}

	cfg := p.loadConfig()

	detail := "standard"
	if v, ok := args["detail_level"].(string); ok && v != "" {
		valid := false
		for _, level := range helloDetailLevels {
			if v == level {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("invalid detail_level: %s", v)
		}
		detail = v
	}

	result := map[string]any{
		"greeting":     cfg.Greeting,
		"agent_name":   cfg.AgentName,
		"detail_level": detail,
	}
	if ctx, ok := args["context"].(string); ok && ctx != "" {
		result["context"] = ctx
	}
	if detail != "basic" {
		result["personality"] = cfg.Personality
	}
	if detail == "detailed" {
		result["capabilities_hint"] = "Call tools/list for the full capability surface."
	}
	return result, nil
}

// Completions offers the known detail levels.
func (p *HelloPlugin) Completions(argName, partial string, ctx map[string]string) []string {
	if argName != "detail_level" {
		return []string{}
	}
	out := []string{}
	for _, level := range helloDetailLevels {
		if strings.HasPrefix(level, strings.ToLower(partial)) {
			out = append(out, level)
		}
	}
	return out
}
