// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

// Package audit records tool invocations as append-only structured
// events. Each day gets its own JSON-lines file; events are never
// rewritten.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a single immutable audit record for one tools/call.
// Duration is in milliseconds.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"ts"`
	Tool      string    `json:"tool"`
	Operation string    `json:"operation"`
	ClientID  string    `json:"client_id"`
	Status    string    `json:"status"` // "success" or "failure"
	Duration  int64     `json:"duration_ms"`
	Error     string    `json:"error,omitempty"`
}

// FileStore appends events to per-day JSONL files under a directory.
type FileStore struct {
	dir string

	mu sync.Mutex
}

// NewFileStore creates a store rooted at dir. The directory is created
// on first append.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Append writes one event. The event id and timestamp are filled in if
// absent.
func (s *FileStore) Append(ev *Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}

	path := s.dayFile(ev.Timestamp)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// Recent returns up to limit events from today's file, oldest first.
func (s *FileStore) Recent(limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.dayFile(time.Now().UTC()))
	if err != nil {
		if os.IsNotExist(err) {
			return []Event{}, nil
		}
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	events := []Event{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			// A torn final line from a crash is skipped, not fatal.
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit file: %w", err)
	}

	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}

func (s *FileStore) dayFile(ts time.Time) string {
	return filepath.Join(s.dir, ts.Format("2006-01-02")+".jsonl")
}
