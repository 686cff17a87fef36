// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

// Package health provides liveness and readiness handlers mounted on
// the endpoint's HTTP mux.
package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Check is the result of one registered readiness probe.
type Check struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusResponse is the body of /health and /ready.
type StatusResponse struct {
	Status string           `json:"status"`
	Uptime string           `json:"uptime"`
	Checks map[string]Check `json:"checks,omitempty"`
}

// CheckFunc probes one dependency. It returns pass/fail and a message.
type CheckFunc func() (bool, string)

// Checker tracks process readiness and registered probes.
type Checker struct {
	mu      sync.RWMutex
	ready   bool
	checks  map[string]CheckFunc
	started time.Time
}

// NewChecker creates a checker. The process starts not ready.
func NewChecker() *Checker {
	return &Checker{
		checks:  make(map[string]CheckFunc),
		started: time.Now(),
	}
}

// SetReady flips the readiness flag.
func (c *Checker) SetReady(ready bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = ready
}

// RegisterCheck adds a named readiness probe.
func (c *Checker) RegisterCheck(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = fn
}

// HealthHandler serves liveness: 200 as long as the process runs.
func (c *Checker) HealthHandler(w http.ResponseWriter, r *http.Request) {
	c.writeStatus(w, http.StatusOK, StatusResponse{
		Status: "ok",
		Uptime: time.Since(c.started).Round(time.Second).String(),
	})
}

// ReadyHandler serves readiness: 200 only when SetReady(true) was
// called and every registered check passes.
func (c *Checker) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	c.mu.RLock()
	ready := c.ready
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	results := make(map[string]Check, len(checks))
	allPassed := true
	for name, fn := range checks {
		ok, msg := fn()
		if !ok {
			allPassed = false
		}
		results[name] = Check{
			Name:      name,
			Status:    statusString(ok),
			Message:   msg,
			Timestamp: time.Now(),
		}
	}

	status := "ready"
	code := http.StatusOK
	if !ready || !allPassed {
		status = "not ready"
		code = http.StatusServiceUnavailable
	}

	c.writeStatus(w, code, StatusResponse{
		Status: status,
		Uptime: time.Since(c.started).Round(time.Second).String(),
		Checks: results,
	})
}

func (c *Checker) writeStatus(w http.ResponseWriter, code int, body StatusResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func statusString(ok bool) string {
	if ok {
		return "ok"
	}
	return "fail"
}
