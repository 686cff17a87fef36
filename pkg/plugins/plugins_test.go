// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package plugins

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/freitascorp/mcpid/pkg/mcp"
	"github.com/freitascorp/mcpid/pkg/plugin"
)

// writeDataFile creates dataRoot-relative JSON fixtures.
func writeDataFile(t *testing.T, dataRoot, rel, content string) {
	t.Helper()

	path := filepath.Join(dataRoot, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestRegisterAll(t *testing.T) {
	reg := plugin.NewRegistry()
	if err := RegisterAll(reg, t.TempDir(), nil); err != nil {
		t.Fatalf("register all: %v", err)
	}

	want := []string{
		"hello", "social",
		"store_customer", "store_order", "store_product", "store_review",
		"weather_forecast", "website",
	}
	all := reg.All()
	if len(all) != len(want) {
		t.Fatalf("registered %d plugins, want %d", len(all), len(want))
	}
	for i, p := range all {
		if p.Name() != want[i] {
			t.Errorf("plugin[%d] = %q, want %q", i, p.Name(), want[i])
		}
	}
}

// ------------------------------------------------------------------
// store family
// ------------------------------------------------------------------

func TestStorePluginShape(t *testing.T) {
	dataRoot := t.TempDir()
	writeDataFile(t, dataRoot, "store/products/data.json",
		`[{"id":"p1","name":"Widget","price":9.99}]`)

	p := NewStorePlugin(storeSpec{"product", "products", "Products"}, dataRoot)

	if p.Name() != "store_product" {
		t.Errorf("name = %q", p.Name())
	}
	if p.Category() != "commerce" {
		t.Errorf("category = %q", p.Category())
	}
	wantOps := []string{"SEARCH_PRODUCTS", "GET_PRODUCT", "LIST_PRODUCTS"}
	if !reflect.DeepEqual(p.SupportedOperations(), wantOps) {
		t.Errorf("operations = %v", p.SupportedOperations())
	}

	result, err := p.Execute("GET_PRODUCT", map[string]any{"id": "p1"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if item := result.(map[string]any); item["name"] != "Widget" {
		t.Errorf("item = %+v", item)
	}
}

// ------------------------------------------------------------------
// hello
// ------------------------------------------------------------------

func TestHelloDefaultsWithoutConfigFile(t *testing.T) {
	p := NewHelloPlugin(t.TempDir())

	result, err := p.Execute("HELLO", map[string]any{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	m := result.(map[string]any)
	if m["greeting"] == "" {
		t.Error("expected default greeting")
	}
	if m["detail_level"] != "standard" {
		t.Errorf("detail_level = %v, want standard", m["detail_level"])
	}
}

func TestHelloReadsConfigFile(t *testing.T) {
	dataRoot := t.TempDir()
	writeDataFile(t, dataRoot, "hello/config/data.json",
		`{"agent_name":"Acme Bot","greeting":"Welcome to Acme!"}`)

	p := NewHelloPlugin(dataRoot)
	result, _ := p.Execute("HELLO", map[string]any{"context": "integration test"})

	m := result.(map[string]any)
	if m["greeting"] != "Welcome to Acme!" {
		t.Errorf("greeting = %v", m["greeting"])
	}
	if m["agent_name"] != "Acme Bot" {
		t.Errorf("agent_name = %v", m["agent_name"])
	}
	if m["context"] != "integration test" {
		t.Errorf("context = %v", m["context"])
	}
}

func TestHelloDetailLevels(t *testing.T) {
	p := NewHelloPlugin(t.TempDir())

	basic, _ := p.Execute("HELLO", map[string]any{"detail_level": "basic"})
	if _, ok := basic.(map[string]any)["personality"]; ok {
		t.Error("basic greeting should omit personality")
	}

	detailed, _ := p.Execute("HELLO", map[string]any{"detail_level": "detailed"})
	if _, ok := detailed.(map[string]any)["capabilities_hint"]; !ok {
		t.Error("detailed greeting should carry capabilities hint")
	}

	if _, err := p.Execute("HELLO", map[string]any{"detail_level": "extreme"}); err == nil {
		t.Error("expected error for unknown detail level")
	}
}

func TestHelloCompletions(t *testing.T) {
	p := NewHelloPlugin(t.TempDir())

	got := p.Completions("detail_level", "d", nil)
	if !reflect.DeepEqual(got, []string{"detailed"}) {
		t.Errorf("completions = %v", got)
	}
	if got := p.Completions("other", "", nil); len(got) != 0 {
		t.Errorf("unexpected completions for unknown arg: %v", got)
	}
}

// ------------------------------------------------------------------
// weather_forecast
// ------------------------------------------------------------------

func TestWeatherGetIsDeterministic(t *testing.T) {
	p := NewWeatherPlugin()

	first, err := p.Execute("GET", map[string]any{"location": "London"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	second, _ := p.Execute("GET", map[string]any{"location": "London"})

	if !reflect.DeepEqual(first, second) {
		t.Error("forecast changed between identical calls")
	}

	m := first.(map[string]any)
	forecast := m["forecast"].([]map[string]any)
	if len(forecast) != forecastDays {
		t.Errorf("forecast days = %d, want %d", len(forecast), forecastDays)
	}
}

func TestWeatherUnknownLocationIsToolLevel(t *testing.T) {
	p := NewWeatherPlugin()

	result, err := p.Execute("GET", map[string]any{"location": "Atlantis"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	m := result.(map[string]any)
	if m["error"] != "Location not found" {
		t.Errorf("error = %v", m["error"])
	}
	if locs := m["available_locations"].([]string); len(locs) != 5 {
		t.Errorf("available_locations = %v", locs)
	}
}

func TestWeatherRequiresLocation(t *testing.T) {
	p := NewWeatherPlugin()
	if _, err := p.Execute("GET", map[string]any{}); err == nil {
		t.Fatal("expected error for missing location")
	}
}

func TestWeatherAudio(t *testing.T) {
	p := NewWeatherPlugin()

	result, err := p.Execute("GET_AUDIO", map[string]any{"location": "Tokyo"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	m := result.(map[string]any)
	audio := m["audio"].(map[string]any)
	if audio["mimeType"] != "audio/wav" {
		t.Errorf("mimeType = %v", audio["mimeType"])
	}
	if audio["data"] != dummyForecastWAV {
		t.Error("unexpected audio payload")
	}
}

func TestWeatherList(t *testing.T) {
	p := NewWeatherPlugin()

	result, _ := p.Execute("LIST", nil)
	m := result.(map[string]any)
	if m["count"] != 5 {
		t.Errorf("count = %v, want 5", m["count"])
	}
}

func TestWeatherCompletions(t *testing.T) {
	p := NewWeatherPlugin()

	got := p.Completions("location", "lo", nil)
	if !reflect.DeepEqual(got, []string{"London"}) {
		t.Errorf("completions = %v", got)
	}
}

func TestWeatherAnnotationsAndResource(t *testing.T) {
	p := NewWeatherPlugin()

	ann := plugin.AnnotationsOf(p)
	if ann == nil || ann.ReadOnlyHint == nil || !*ann.ReadOnlyHint {
		t.Errorf("annotations = %+v", ann)
	}

	item, err := p.ReadResource("locations")
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	if item.MimeType != "application/json" {
		t.Errorf("mimeType = %q", item.MimeType)
	}
}

// ------------------------------------------------------------------
// website
// ------------------------------------------------------------------

func newWebsiteFixture(t *testing.T) *WebsitePlugin {
	t.Helper()

	dataRoot := t.TempDir()
	writeDataFile(t, dataRoot, "website/content/data.json", `[
		{"id": "home", "name": "Home", "page_type": "page", "date": "2025-01-10"},
		{"id": "post-1", "name": "Launch post", "page_type": "post", "date": "2025-03-01"},
		{"id": "post-2", "name": "Roadmap post", "page_type": "post", "date": "2025-02-15"}
	]`)
	return NewWebsitePlugin(dataRoot)
}

func TestWebsiteListFiltersByType(t *testing.T) {
	p := newWebsiteFixture(t)

	result, err := p.Execute("LIST_CONTENT", map[string]any{"type": "post"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	m := result.(map[string]any)
	if m["count"] != 2 {
		t.Errorf("count = %v, want 2", m["count"])
	}
	if m["type"] != "post" {
		t.Errorf("type = %v", m["type"])
	}

	// Default ordering is date descending.
	results := m["results"].([]map[string]any)
	if results[0]["id"] != "post-1" {
		t.Errorf("first result = %v", results[0]["id"])
	}
}

func TestWebsiteListAscending(t *testing.T) {
	p := newWebsiteFixture(t)

	result, _ := p.Execute("LIST_CONTENT", map[string]any{"order": "asc"})
	m := result.(map[string]any)

	results := m["results"].([]map[string]any)
	if results[0]["id"] != "home" {
		t.Errorf("first result = %v, want home (oldest)", results[0]["id"])
	}
	if m["order"] != "asc" || m["sort_by"] != "date" {
		t.Errorf("meta = %+v", m)
	}
}

func TestWebsiteSearchDelegatesToGeneric(t *testing.T) {
	p := newWebsiteFixture(t)

	result, err := p.Execute("SEARCH_CONTENT", map[string]any{"query": "post"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if m := result.(map[string]any); m["count"] != 2 {
		t.Errorf("count = %v, want 2", m["count"])
	}
}

// ------------------------------------------------------------------
// social
// ------------------------------------------------------------------

var testReferrals = []mcp.Referral{
	{Name: "Partner", Domain: "partner.example.com", Relationship: "affiliate"},
	{Name: "Sister Shop", Domain: "sister.example.com", Relationship: "subsidiary"},
	{Name: "Reseller", Domain: "reseller.example.com", Relationship: "affiliate"},
}

func TestSocialListFiltersByRelationship(t *testing.T) {
	p := NewSocialPlugin(t.TempDir(), testReferrals)

	result, err := p.Execute("LIST_REFERRALS", map[string]any{"relationship": "affiliate"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	m := result.(map[string]any)
	if m["count"] != 2 {
		t.Errorf("count = %v, want 2", m["count"])
	}
	for _, r := range m["referrals"].([]mcp.Referral) {
		if r.Relationship != "affiliate" {
			t.Errorf("unexpected referral %+v", r)
		}
	}

	// LIST is an alias for LIST_REFERRALS.
	result, _ = p.Execute("LIST", nil)
	if m := result.(map[string]any); m["count"] != 3 {
		t.Errorf("unfiltered count = %v, want 3", m["count"])
	}
}

func TestSocialGetReferral(t *testing.T) {
	p := NewSocialPlugin(t.TempDir(), testReferrals)

	result, err := p.Execute("GET_REFERRAL", map[string]any{"domain": "sister.example.com"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if r := result.(mcp.Referral); r.Name != "Sister Shop" {
		t.Errorf("referral = %+v", r)
	}
}

func TestSocialUnknownDomainIsToolLevel(t *testing.T) {
	p := NewSocialPlugin(t.TempDir(), testReferrals)

	result, err := p.Execute("GET_REFERRAL", map[string]any{"domain": "nowhere.example.com"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	m := result.(map[string]any)
	if m["error"] != "Referral not found" || m["domain"] != "nowhere.example.com" {
		t.Errorf("result = %+v", m)
	}
}

func TestSocialDataFileOverridesConfig(t *testing.T) {
	dataRoot := t.TempDir()
	writeDataFile(t, dataRoot, "social/referrals/data.json",
		`[{"name":"From Disk","domain":"disk.example.com","relationship":"partner"}]`)

	p := NewSocialPlugin(dataRoot, testReferrals)
	result, _ := p.Execute("LIST_REFERRALS", nil)

	m := result.(map[string]any)
	if m["count"] != 1 {
		t.Fatalf("count = %v, want 1", m["count"])
	}
	if r := m["referrals"].([]mcp.Referral)[0]; r.Domain != "disk.example.com" {
		t.Errorf("referral = %+v", r)
	}
}

func TestSocialUnsupportedOperation(t *testing.T) {
	p := NewSocialPlugin(t.TempDir(), testReferrals)
	if _, err := p.Execute("DEFAULT", nil); err == nil {
		t.Fatal("expected error for unsupported operation")
	}
}

func TestSocialResource(t *testing.T) {
	p := NewSocialPlugin(t.TempDir(), testReferrals)

	item, err := p.ReadResource("referrals")
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	if item.MimeType != "application/json" {
		t.Errorf("mimeType = %q", item.MimeType)
	}
	if !strings.Contains(item.Text, "partner.example.com") {
		t.Errorf("text = %q", item.Text)
	}

	if _, err := p.ReadResource("followers"); err == nil {
		t.Error("expected error for unknown suffix")
	}
}
