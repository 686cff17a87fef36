// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ListenAddr != ":3001" {
		t.Errorf("listen addr = %q, want :3001", cfg.ListenAddr)
	}
	if cfg.DataRoot != "data" {
		t.Errorf("data root = %q, want data", cfg.DataRoot)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"listenAddr": ":9900",
		"dataRoot": "/var/lib/mcpid",
		"provider": {"name": "Acme", "domain": "acme.example.com", "description": "Acme storefront"},
		"referrals": [{"name": "Partner", "domain": "partner.example.com", "relationship": "affiliate"}]
	}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ListenAddr != ":9900" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.Provider.Domain != "acme.example.com" {
		t.Errorf("provider domain = %q", cfg.Provider.Domain)
	}
	if len(cfg.Referrals) != 1 || cfg.Referrals[0].Relationship != "affiliate" {
		t.Errorf("referrals = %+v", cfg.Referrals)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"listenAddr": ":9900"}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("MCPID_ADDR", ":7777")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":7777" {
		t.Errorf("listen addr = %q, want :7777", cfg.ListenAddr)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
