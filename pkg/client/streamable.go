// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/freitascorp/mcpid/pkg/mcp"
)

// sessionHeader carries the streamable HTTP session id.
const sessionHeader = "mcp-session-id"

// HTTPTransport talks JSON-RPC over the streamable HTTP channel: POST
// for calls, with an optional SSE stream bound to a session.
type HTTPTransport struct {
	client    *resty.Client
	url       string
	sessionID string
	logger    *slog.Logger

	streamCancel context.CancelFunc
	streamDone   chan struct{}
}

// NewHTTPTransport creates a transport against the /mcp endpoint URL.
func NewHTTPTransport(url string, logger *slog.Logger) *HTTPTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPTransport{
		client: resty.New(),
		url:    url,
		logger: logger,
	}
}

// SessionID reports the session bound by OpenStream, if any.
func (t *HTTPTransport) SessionID() string { return t.sessionID }

// OpenStream starts the SSE stream, binds its session id to later
// POSTs, and consumes events in the background until Close.
func (t *HTTPTransport) OpenStream(ctx context.Context) error {
	streamCtx, cancel := context.WithCancel(ctx)

	resp, err := t.client.R().
		SetContext(streamCtx).
		SetDoNotParseResponse(true).
		Get(t.url)
	if err != nil {
		cancel()
		return fmt.Errorf("open SSE stream: %w", err)
	}
	if resp.StatusCode() != 200 {
		resp.RawBody().Close()
		cancel()
		return fmt.Errorf("open SSE stream: status %d", resp.StatusCode())
	}

	t.sessionID = resp.Header().Get(sessionHeader)
	t.streamCancel = cancel
	t.streamDone = make(chan struct{})
	t.logger.Info("SSE stream open", "session_id", t.sessionID)

	go func() {
		defer close(t.streamDone)
		defer resp.RawBody().Close()

		scanner := bufio.NewScanner(resp.RawBody())
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, "data: ") {
				t.logger.Info("server event", "data", strings.TrimPrefix(line, "data: "))
			}
		}
	}()

	return nil
}

// Call POSTs one request. A 204 (notification accepted) yields a nil
// response.
func (t *HTTPTransport) Call(ctx context.Context, req mcp.Request) (*mcp.Response, error) {
	body, status, err := t.post(ctx, req)
	if err != nil {
		return nil, err
	}
	if status == 204 {
		return nil, nil
	}

	var resp mcp.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", req.Method, err)
	}
	return &resp, nil
}

// CallBatch POSTs a JSON array and decodes the array response.
func (t *HTTPTransport) CallBatch(ctx context.Context, reqs []mcp.Request) ([]mcp.Response, error) {
	body, status, err := t.post(ctx, reqs)
	if err != nil {
		return nil, err
	}
	if status == 204 {
		return nil, nil
	}

	var resps []mcp.Response
	if err := json.Unmarshal(body, &resps); err != nil {
		return nil, fmt.Errorf("decode batch response: %w", err)
	}
	return resps, nil
}

func (t *HTTPTransport) post(ctx context.Context, payload any) ([]byte, int, error) {
	r := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload)
	if t.sessionID != "" {
		r.SetHeader(sessionHeader, t.sessionID)
	}

	resp, err := r.Post(t.url)
	if err != nil {
		return nil, 0, fmt.Errorf("POST %s: %w", t.url, err)
	}
	if resp.StatusCode() >= 400 {
		return nil, resp.StatusCode(), fmt.Errorf("POST %s: status %d: %s",
			t.url, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return resp.Body(), resp.StatusCode(), nil
}

// Close tears the session down on the server and stops the stream.
func (t *HTTPTransport) Close() error {
	if t.streamCancel != nil {
		t.streamCancel()
		<-t.streamDone
	}

	if t.sessionID == "" {
		return nil
	}
	resp, err := t.client.R().
		SetHeader(sessionHeader, t.sessionID).
		Delete(t.url)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("delete session: status %d", resp.StatusCode())
	}
	t.logger.Info("session terminated", "session_id", t.sessionID)
	return nil
}
