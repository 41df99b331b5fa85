// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP plumbing used by the fetcher: a
// per-call session, a fail-fast GET that classifies non-2xx responses, and a
// context-aware wait for rate limiting.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/jstage-search/pkg/types"
)

const (
	defaultTimeout = 30 * time.Second

	// maxBodySnippet bounds how much of an error response body is kept.
	maxBodySnippet = 512
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d", e.StatusCode)
	if e.Status != "" {
		msg = "HTTP " + e.Status
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Session is an HTTP client scoped to one fetch call. Close releases its
// idle connections.
type Session struct {
	client    *http.Client
	userAgent string
}

// NewSession returns a session with its own connection pool and the
// configured timeout (default 30s) and User-Agent.
func NewSession(cfg types.HTTPConfig) *Session {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Session{
		client:    &http.Client{Timeout: timeout, Transport: transport},
		userAgent: cfg.UserAgent,
	}
}

// Close releases idle connections held by the session.
func (s *Session) Close() {
	s.client.CloseIdleConnections()
}

// Get issues a GET request and returns the full response body. Transport
// failures are returned wrapped; non-2xx responses produce a *StatusError.
// No retry is attempted.
func (s *Session) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippet))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        url,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

// Wait blocks for d or until ctx is done, whichever comes first. It returns
// ctx.Err() when the context ends the wait.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
