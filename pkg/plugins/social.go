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

	"github.com/freitascorp/mcpid/pkg/mcp"
	"github.com/freitascorp/mcpid/pkg/plugin"
)

// SocialPlugin serves the provider's referral relationships. The
// configured referrals are the source of truth; an optional data file
// under social/referrals overrides them when present.
type SocialPlugin struct {
	dataPath  string
	referrals []mcp.Referral
}

// NewSocialPlugin creates the social plugin rooted at dataRoot with the
// configured referral list as fallback.
func NewSocialPlugin(dataRoot string, referrals []mcp.Referral) *SocialPlugin {
	return &SocialPlugin{
		dataPath:  filepath.Join(dataRoot, "social", "referrals", "data.json"),
		referrals: referrals,
	}
}

func (p *SocialPlugin) Name() string        { return "social" }
func (p *SocialPlugin) Description() string { return "Social connections and referrals to other services" }
func (p *SocialPlugin) Category() string    { return "social" }
func (p *SocialPlugin) Kind() plugin.Kind   { return plugin.KindCore }

func (p *SocialPlugin) SupportedOperations() []string {
	return []string{"LIST_REFERRALS", "GET_REFERRAL", "LIST"}
}

func (p *SocialPlugin) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operation": map[string]any{
				"type": "string",
				"enum": []string{"LIST_REFERRALS", "GET_REFERRAL", "LIST"},
			},
			"domain": map[string]any{
				"type":        "string",
				"description": "Domain name for GET_REFERRAL",
			},
			"relationship": map[string]any{
				"type":        "string",
				"description": "Filter referrals by relationship type",
			},
		},
		"required": []string{"operation"},
	}
}

func (p *SocialPlugin) Resources() []plugin.ResourceEntry {
	return []plugin.ResourceEntry{
		{Name: "referrals", URISuffix: "referrals", Description: "Referral relationships as a JSON array"},
	}
}

// loadReferrals prefers the data file, falling back to the configured
// list when the file is absent or unparsable.
func (p *SocialPlugin) loadReferrals() []mcp.Referral {
	raw, err := os.ReadFile(p.dataPath)
	if err != nil {
		return p.referrals
	}

	var fromDisk []mcp.Referral
	if err := json.Unmarshal(raw, &fromDisk); err != nil {
		return p.referrals
	}
	return fromDisk
}

// Execute handles the referral operations. An unknown domain is a
// result object with an error field, not a Go error.
func (p *SocialPlugin) Execute(operation string, args map[string]any) (any, error) {
	referrals := p.loadReferrals()

	switch operation {
	case "LIST_REFERRALS", "LIST":
		relationship, _ := args["relationship"].(string)
		filtered := make([]mcp.Referral, 0, len(referrals))
		for _, r := range referrals {
			if relationship != "" && r.Relationship != relationship {
				continue
			}
			filtered = append(filtered, r)
		}
		return map[string]any{
			"referrals": filtered,
			"count":     len(filtered),
		}, nil

	case "GET_REFERRAL":
		domain, _ := args["domain"].(string)
		for _, r := range referrals {
			if r.Domain == domain {
				return r, nil
			}
		}
		return map[string]any{
			"error":  "Referral not found",
			"domain": domain,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported operation: %s", operation)
	}
}

// ReadResource serves the referral list as JSON.
func (p *SocialPlugin) ReadResource(suffix string) (mcp.ContentItem, error) {
	if suffix != "referrals" {
		return mcp.ContentItem{}, fmt.Errorf("unknown resource suffix: %s", suffix)
	}

	raw, err := json.Marshal(p.loadReferrals())
	if err != nil {
		return mcp.ContentItem{}, fmt.Errorf("encode referrals: %w", err)
	}
	return mcp.ContentItem{Type: mcp.ContentTypeText, Text: string(raw), MimeType: "application/json"}, nil
}
