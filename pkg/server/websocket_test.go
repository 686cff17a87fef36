// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/freitascorp/mcpid/pkg/mcp"
)

func dialWS(t *testing.T) (*websocket.Conn, *AppState) {
	t.Helper()

	state := newTestState(t)
	dispatcher := NewDispatcher(state, mcp.MCPIVersion).WithLegacyCompletions()
	srv := httptest.NewServer(NewWSHandler(state, dispatcher))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn, state
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg string) mcp.Response {
	t.Helper()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var resp mcp.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return resp
}

func TestWebSocketInitialize(t *testing.T) {
	conn, _ := dialWS(t)

	resp := roundTrip(t, conn, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	if resp.Error != nil {
		t.Fatalf("error = %+v", resp.Error)
	}

	raw, _ := json.Marshal(resp.Result)
	var result mcp.InitializeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("result: %v", err)
	}
	if result.ProtocolVersion != mcp.MCPIVersion {
		t.Errorf("protocol version = %q, want %q", result.ProtocolVersion, mcp.MCPIVersion)
	}
}

func TestWebSocketLegacyCompletions(t *testing.T) {
	conn, _ := dialWS(t)

	resp := roundTrip(t, conn,
		`{"jsonrpc":"2.0","id":2,"method":"completions","params":{"argument":{"name":"name","value":"weather"}}}`)
	if resp.Error != nil {
		t.Fatalf("error = %+v", resp.Error)
	}
}

func TestWebSocketBatch(t *testing.T) {
	conn, _ := dialWS(t)

	if err := conn.WriteMessage(websocket.TextMessage,
		[]byte(`[{"jsonrpc":"2.0","id":10,"method":"ping"},{"jsonrpc":"2.0","id":11,"method":"tools/list"}]`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var responses []mcp.Response
	if err := json.Unmarshal(data, &responses); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(responses) != 2 {
		t.Fatalf("got %d responses", len(responses))
	}
	if responses[0].ID.(float64) != 10 || responses[1].ID.(float64) != 11 {
		t.Errorf("ids = %v, %v", responses[0].ID, responses[1].ID)
	}
}

func TestWebSocketNotificationGetsNoReply(t *testing.T) {
	conn, _ := dialWS(t)

	if err := conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The next frame received must answer the follow-up request, not
	// the notification.
	resp := roundTrip(t, conn, `{"jsonrpc":"2.0","id":5,"method":"ping"}`)
	if id, ok := resp.ID.(float64); !ok || id != 5 {
		t.Errorf("id = %v", resp.ID)
	}
}

func TestWebSocketConnectionCounter(t *testing.T) {
	conn, state := dialWS(t)

	// The upgrade increments the gauge; allow the handler goroutine a
	// moment to run.
	waitFor(t, func() bool { return state.Metrics.ActiveWebSockets.Value() == 1 })

	conn.Close()
	waitFor(t, func() bool { return state.Metrics.ActiveWebSockets.Value() == 0 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
