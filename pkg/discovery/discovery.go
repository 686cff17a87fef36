// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

// Package discovery resolves MCP endpoints from DNS TXT records. The
// record _mcp.<domain> holds space-separated key=value pairs naming the
// protocol version and the discovery URL. Resolution goes through
// DNS-over-HTTPS (JSON interface) so no UDP resolver is required.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/freitascorp/mcpid/pkg/resilience"
)

// DefaultDoHURL is the DNS-over-HTTPS JSON endpoint used for lookups.
const DefaultDoHURL = "https://cloudflare-dns.com/dns-query"

const dnsTypeTXT = 16

// ServiceInfo is a discovered MCP endpoint.
type ServiceInfo struct {
	Endpoint string
	Version  string
}

// Resolver queries TXT records over DoH.
type Resolver struct {
	client *resty.Client
	dohURL string
	logger *slog.Logger
}

// NewResolver creates a resolver against the default DoH endpoint.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		client: resty.New(),
		dohURL: DefaultDoHURL,
		logger: logger,
	}
}

// SetDoHURL overrides the DoH endpoint, used in tests.
func (r *Resolver) SetDoHURL(u string) { r.dohURL = u }

// dohAnswer mirrors the DoH JSON answer section.
type dohAnswer struct {
	Name string `json:"name"`
	Type int    `json:"type"`
	Data string `json:"data"`
}

type dohResponse struct {
	Status int         `json:"Status"`
	Answer []dohAnswer `json:"Answer"`
}

// Discover resolves _mcp.<domain> and parses the first TXT answer.
func (r *Resolver) Discover(ctx context.Context, domain string) (ServiceInfo, error) {
	record := "_mcp." + domain
	r.logger.Info("discovering MCP service", "record", record)

	// DoH endpoints throttle and flake; retry transient failures.
	var body dohResponse
	err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func(attempt int) error {
		if attempt > 0 {
			r.logger.Debug("retrying DoH query", "record", record, "attempt", attempt)
		}
		resp, err := r.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{"name": record, "type": "TXT"}).
			SetHeader("Accept", "application/dns-json").
			SetResult(&body).
			Get(r.dohURL)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("status %d", resp.StatusCode())
		}
		return nil
	})
	if err != nil {
		return ServiceInfo{}, fmt.Errorf("DoH query for %s: %w", record, err)
	}

	for _, ans := range body.Answer {
		if ans.Type != dnsTypeTXT {
			continue
		}
		info, err := ParseTXT(ans.Data)
		if err != nil {
			return ServiceInfo{}, err
		}
		r.logger.Info("found MCP TXT record", "endpoint", info.Endpoint, "version", info.Version)
		return info, nil
	}

	return ServiceInfo{}, fmt.Errorf("no MCP TXT record found for %s", record)
}

// ParseTXT parses a TXT payload of space-separated key=value pairs.
// Recognised keys are v (version, default mcp1) and url (required).
// Unknown keys are ignored; surrounding quotes are tolerated.
func ParseTXT(record string) (ServiceInfo, error) {
	txt := strings.Trim(strings.TrimSpace(record), `"`)

	info := ServiceInfo{Version: "mcp1"}
	for _, pair := range strings.Fields(txt) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		switch key {
		case "v":
			info.Version = value
		case "url":
			info.Endpoint = value
		}
	}

	if info.Endpoint == "" {
		return ServiceInfo{}, fmt.Errorf("no endpoint URL found in TXT record")
	}

	u, err := url.Parse(info.Endpoint)
	if err != nil {
		return ServiceInfo{}, fmt.Errorf("parse endpoint URL %q: %w", info.Endpoint, err)
	}
	switch u.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return ServiceInfo{}, fmt.Errorf("Invalid endpoint protocol scheme: '%s'", u.Scheme)
	}

	return info, nil
}

// BaseURL strips the discovery path from an endpoint URL.
func BaseURL(endpoint string) string {
	return strings.TrimSuffix(endpoint, "/mcpi/discover")
}

// WebSocketURL derives the legacy WebSocket endpoint from a base URL:
// scheme swapped to ws/wss and /mcpi appended.
func WebSocketURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/mcpi"
}

// StreamableURL derives the streamable HTTP endpoint from a base URL.
func StreamableURL(base string) string {
	return base + "/mcp"
}
