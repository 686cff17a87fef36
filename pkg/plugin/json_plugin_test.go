// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package plugin

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestData(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test data: %v", err)
	}
	return path
}

func newTestPlugin(t *testing.T) *JSONBacked {
	t.Helper()

	path := writeTestData(t, `[
		{"id": "p1", "name": "Blue Widget", "price": 9.99},
		{"id": "p2", "name": "Red Widget", "price": 14.99},
		{"id": "p3", "name": "Gasket", "price": 2.50}
	]`)

	return NewJSONBacked(JSONConfig{
		Name:        "store_product",
		Description: "Product catalog",
		Category:    "commerce",
		Operations:  []string{"SEARCH_PRODUCTS", "GET_PRODUCT", "LIST_PRODUCTS"},
		Schema:      map[string]any{"type": "object"},
		DataPath:    path,
		Entries:     []ResourceEntry{{Name: "products", URISuffix: "products", Description: "All products"}},
	})
}

func TestSearchMatchesSubstringCaseInsensitive(t *testing.T) {
	p := newTestPlugin(t)

	result, err := p.Execute("SEARCH_PRODUCTS", map[string]any{"query": "widget"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	m := result.(map[string]any)
	if m["count"] != 2 {
		t.Errorf("count = %v, want 2", m["count"])
	}
	if m["field"] != "name" {
		t.Errorf("field = %v, want name (default)", m["field"])
	}
}

func TestSearchEmptyQueryMatchesAll(t *testing.T) {
	p := newTestPlugin(t)

	result, err := p.Execute("SEARCH_PRODUCTS", map[string]any{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if m := result.(map[string]any); m["count"] != 3 {
		t.Errorf("count = %v, want 3", m["count"])
	}
}

func TestGetReturnsItem(t *testing.T) {
	p := newTestPlugin(t)

	result, err := p.Execute("GET_PRODUCT", map[string]any{"id": "p3"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	item := result.(map[string]any)
	if item["name"] != "Gasket" {
		t.Errorf("name = %v, want Gasket", item["name"])
	}
}

func TestGetNotFoundIsToolLevel(t *testing.T) {
	p := newTestPlugin(t)

	// An unknown id yields a plain object with an error field, never a
	// Go error.
	result, err := p.Execute("GET_PRODUCT", map[string]any{"id": "nope"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	m := result.(map[string]any)
	if m["error"] != "Item not found" {
		t.Errorf("error = %v, want 'Item not found'", m["error"])
	}
	if m["id"] != "nope" {
		t.Errorf("id = %v, want nope", m["id"])
	}
}

func TestGetRequiresID(t *testing.T) {
	p := newTestPlugin(t)

	if _, err := p.Execute("GET_PRODUCT", map[string]any{}); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestListReturnsEverything(t *testing.T) {
	p := newTestPlugin(t)

	result, err := p.Execute("LIST_PRODUCTS", nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if m := result.(map[string]any); m["count"] != 3 {
		t.Errorf("count = %v, want 3", m["count"])
	}
}

func TestUnsupportedOperation(t *testing.T) {
	p := newTestPlugin(t)

	if _, err := p.Execute("EXPLODE", nil); err == nil {
		t.Fatal("expected error for unsupported operation")
	}
}

func TestMissingDataFileIsExecutionError(t *testing.T) {
	p := NewJSONBacked(JSONConfig{
		Name:     "ghost",
		DataPath: "/nonexistent/data.json",
	})

	if _, err := p.Execute("LIST", nil); err == nil {
		t.Fatal("expected error for missing data file")
	}
}

func TestReadResourceServesDataFile(t *testing.T) {
	p := newTestPlugin(t)

	item, err := p.ReadResource("products")
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	if item.MimeType != "application/json" {
		t.Errorf("mimeType = %q, want application/json", item.MimeType)
	}
	if item.Text == "" {
		t.Error("expected text content")
	}

	if _, err := p.ReadResource("unknown"); err == nil {
		t.Fatal("expected error for unknown suffix")
	}
}
