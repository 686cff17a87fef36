// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package server

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/freitascorp/mcpid/pkg/bus"
	"github.com/freitascorp/mcpid/pkg/observability"
)

// Session ties a streamable HTTP POST channel to its SSE subscribers.
type Session struct {
	ID        string
	Events    *bus.Broadcaster
	CreatedAt time.Time

	mu          sync.Mutex
	lastEventID string
	eventSeq    atomic.Int64
}

// SetLastEventID records the id a resuming subscriber last saw.
func (s *Session) SetLastEventID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastEventID = id
}

// LastEventID returns the recorded resume position, if any.
func (s *Session) LastEventID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastEventID
}

// NextEventID allocates the next per-session SSE event id.
func (s *Session) NextEventID() string {
	return fmt.Sprint(s.eventSeq.Add(1))
}

// SessionTable maps session ids to live sessions. GET and DELETE are
// the writers; POST only reads.
type SessionTable struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	metrics  *observability.ServerMetrics
	logger   *slog.Logger
}

// NewSessionTable creates an empty table.
func NewSessionTable(metrics *observability.ServerMetrics, logger *slog.Logger) *SessionTable {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionTable{
		sessions: make(map[string]*Session),
		metrics:  metrics,
		logger:   logger,
	}
}

// Create provisions a session with a fresh id.
func (t *SessionTable) Create() *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Events:    bus.NewBroadcaster(bus.DefaultCapacity, t.logger),
		CreatedAt: time.Now(),
	}
	if t.metrics != nil {
		s.Events.OnDrop(t.metrics.SSEEventsDropped.Inc)
	}

	t.mu.Lock()
	t.sessions[s.ID] = s
	t.mu.Unlock()

	if t.metrics != nil {
		t.metrics.ActiveSessions.Inc()
	}
	t.logger.Info("session created", "session_id", s.ID)
	return s
}

// Get looks up a session by id.
func (t *SessionTable) Get(id string) (*Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[id]
	return s, ok
}

// Delete removes a session and closes its broadcaster. It reports
// whether the id was known.
func (t *SessionTable) Delete(id string) bool {
	t.mu.Lock()
	s, ok := t.sessions[id]
	if ok {
		delete(t.sessions, id)
	}
	t.mu.Unlock()

	if !ok {
		return false
	}

	s.Events.Close()
	if t.metrics != nil {
		t.metrics.ActiveSessions.Dec()
	}
	t.logger.Info("session terminated", "session_id", id)
	return true
}

// Count reports the number of live sessions.
func (t *SessionTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// CloseAll tears down every session, used at shutdown.
func (t *SessionTable) CloseAll() {
	t.mu.Lock()
	sessions := make([]*Session, 0, len(t.sessions))
	for id, s := range t.sessions {
		sessions = append(sessions, s)
		delete(t.sessions, id)
	}
	t.mu.Unlock()

	for _, s := range sessions {
		s.Events.Close()
		if t.metrics != nil {
			t.metrics.ActiveSessions.Dec()
		}
	}
}
