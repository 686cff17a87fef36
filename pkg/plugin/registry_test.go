// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package plugin

import "testing"

type stubPlugin struct {
	name string
}

func (s *stubPlugin) Name() string                  { return s.name }
func (s *stubPlugin) Description() string           { return "stub" }
func (s *stubPlugin) Category() string              { return "test" }
func (s *stubPlugin) Kind() Kind                    { return KindCore }
func (s *stubPlugin) SupportedOperations() []string { return []string{"DEFAULT"} }
func (s *stubPlugin) InputSchema() map[string]any   { return map[string]any{"type": "object"} }
func (s *stubPlugin) Resources() []ResourceEntry    { return nil }
func (s *stubPlugin) Execute(op string, args map[string]any) (any, error) {
	return map[string]any{"op": op}, nil
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(&stubPlugin{name: "a"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := reg.Register(&stubPlugin{name: "a"}); err == nil {
		t.Fatal("expected error for duplicate name")
	}
}

func TestAllIsSortedByName(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"zebra", "alpha", "mango"} {
		if err := reg.Register(&stubPlugin{name: name}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	all := reg.All()
	want := []string{"alpha", "mango", "zebra"}
	for i, p := range all {
		if p.Name() != want[i] {
			t.Errorf("all[%d] = %q, want %q", i, p.Name(), want[i])
		}
	}
}

func TestExecuteUnknownPlugin(t *testing.T) {
	reg := NewRegistry()

	if _, err := reg.Execute("missing", "LIST", nil); err == nil {
		t.Fatal("expected error for unknown plugin")
	}
}

func TestOptionalCapabilitiesDefault(t *testing.T) {
	p := &stubPlugin{name: "plain"}

	if AnnotationsOf(p) != nil {
		t.Error("plain plugin should have no annotations")
	}
	if got := CompletionsOf(p, "name", "x", nil); len(got) != 0 {
		t.Errorf("plain plugin completions = %v, want empty", got)
	}
}
