// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/freitascorp/mcpid/pkg/bus"
	"github.com/freitascorp/mcpid/pkg/mcp"
)

// SessionHeader carries the streamable HTTP session id.
const SessionHeader = "mcp-session-id"

// maxBodySize caps POST bodies at 10 MiB.
const maxBodySize = 10 << 20

// StreamableHandler serves the streamable HTTP transport at /mcp:
// POST for request/response, GET for the SSE stream, DELETE for
// session teardown.
type StreamableHandler struct {
	state      *AppState
	dispatcher *Dispatcher
	keepAlive  time.Duration
}

// NewStreamableHandler creates the transport handler. Progress events
// raised by the dispatcher land on the posting session's SSE stream.
func NewStreamableHandler(state *AppState) *StreamableHandler {
	h := &StreamableHandler{
		state:     state,
		keepAlive: 15 * time.Second,
	}
	h.dispatcher = NewDispatcher(state, mcp.LatestProtocolVersion).WithNotifier(h.publish)
	return h
}

// publish delivers a server-initiated event to a session, assigning
// the next per-session event id. Unknown ids are dropped silently;
// POSTs without a session have nowhere to stream to.
func (h *StreamableHandler) publish(clientID string, ev bus.Event) {
	s, ok := h.state.Sessions.Get(clientID)
	if !ok {
		return
	}
	ev.ID = s.NextEventID()
	s.Events.Publish(ev)
}

func (h *StreamableHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGet opens an SSE stream. A request without a session header
// provisions a fresh session; a known id reuses it; an unknown id is
// rejected.
func (h *StreamableHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	var session *Session
	if id := r.Header.Get(SessionHeader); id != "" {
		existing, ok := h.state.Sessions.Get(id)
		if !ok {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		session = existing
	} else {
		session = h.state.Sessions.Create()
	}

	if lastID := r.Header.Get("Last-Event-ID"); lastID != "" {
		// Best-effort resume: the position is recorded but only still
		// buffered events can be replayed.
		session.SetLastEventID(lastID)
		h.state.Logger.Info("SSE resume requested",
			"session_id", session.ID, "last_event_id", lastID)
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set(SessionHeader, session.ID)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cancel := session.Events.Subscribe()
	defer cancel()

	h.state.Logger.Info("SSE stream opened", "session_id", session.ID)
	defer h.state.Logger.Info("SSE stream closed", "session_id", session.ID)

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-events:
			if !open {
				// Session deleted or server shutting down.
				return
			}
			writeSSE(w, ev)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}

// handlePost runs a single request or batch and returns the direct
// JSON-RPC response. A notification-only body yields 204.
func (h *StreamableHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	clientID := "http-" + uuid.NewString()[:8]
	if id := r.Header.Get(SessionHeader); id != "" {
		if _, ok := h.state.Sessions.Get(id); !ok {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		clientID = id
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	response, ok := h.dispatcher.HandleMessage(string(body), clientID)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, response)
}

// handleDelete removes a session.
func (h *StreamableHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		http.Error(w, "mcp-session-id header required", http.StatusBadRequest)
		return
	}
	if !h.state.Sessions.Delete(id) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	fmt.Fprint(w, "Session terminated")
}

// writeSSE emits one event in text/event-stream framing.
func writeSSE(w io.Writer, ev bus.Event) {
	eventType := ev.Type
	if eventType == "" {
		eventType = "message"
	}
	fmt.Fprintf(w, "event: %s\n", eventType)
	if ev.ID != "" {
		fmt.Fprintf(w, "id: %s\n", ev.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", ev.Data)
}
