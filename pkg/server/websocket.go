// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSHandler serves the legacy MCPI WebSocket transport at /mcpi. Each
// connection runs its own read loop; there is no session state and
// every request is self-contained.
type WSHandler struct {
	state      *AppState
	dispatcher *Dispatcher
	upgrader   websocket.Upgrader
}

// NewWSHandler creates the WebSocket transport handler.
func NewWSHandler(state *AppState, dispatcher *Dispatcher) *WSHandler {
	return &WSHandler{
		state:      state,
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// TLS and origin policy belong to the fronting proxy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.state.Logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	clientID := "ws-" + uuid.NewString()[:8]
	h.state.Metrics.ActiveWebSockets.Inc()
	h.state.Logger.Info("websocket client connected", "client", clientID, "remote", r.RemoteAddr)

	go h.readLoop(conn, clientID)
}

// readLoop receives frames until the peer closes. A top-level guard
// keeps a panicking handler from taking the process down.
func (h *WSHandler) readLoop(conn *websocket.Conn, clientID string) {
	defer func() {
		if rec := recover(); rec != nil {
			h.state.Logger.Error("websocket handler panic", "client", clientID, "panic", rec)
		}
		conn.Close()
		h.state.Metrics.ActiveWebSockets.Dec()
		h.state.Logger.Info("websocket client disconnected", "client", clientID)
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.state.Logger.Warn("websocket read error", "client", clientID, "error", err)
			}
			return
		}

		if messageType != websocket.TextMessage {
			h.state.Logger.Warn("rejecting non-text websocket frame",
				"client", clientID, "message_type", messageType)
			continue
		}

		response, ok := h.dispatcher.HandleMessage(string(data), clientID)
		if !ok {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(response)); err != nil {
			h.state.Logger.Warn("websocket write error", "client", clientID, "error", err)
			return
		}
	}
}
