// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

// Package config loads the server configuration from a JSON file with
// environment variable overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"

	"github.com/freitascorp/mcpid/pkg/mcp"
)

// Config is the full server configuration.
type Config struct {
	// ListenAddr is the host:port the HTTP server binds.
	ListenAddr string `json:"listenAddr" env:"MCPID_ADDR"`

	// DataRoot is the directory holding per-plugin JSON data files.
	DataRoot string `json:"dataRoot" env:"MCPID_DATA_ROOT"`

	Provider  mcp.ProviderInfo `json:"provider"`
	Referrals []mcp.Referral   `json:"referrals"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr: ":3001",
		DataRoot:   "data",
		Provider: mcp.ProviderInfo{
			Name:        "MCP Provider",
			Domain:      "localhost",
			Description: "MCP service endpoint",
		},
		Referrals: []mcp.Referral{},
	}
}

// Load reads the config file at path, fills gaps with defaults, and
// applies environment overrides. A missing file is not an error; the
// defaults are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fall through to env overrides.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":3001"
	}
	if cfg.DataRoot == "" {
		cfg.DataRoot = "data"
	}
	return cfg, nil
}
