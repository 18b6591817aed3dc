// Package api is the typed client for the EnteBhoomi marketplace REST API.
// Every request attaches the session bearer token when one is present; a 401
// response invalidates the session through the capped reload policy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/inspitereno-lang/entebhoomi/internal/session"
)

// Error is a failed API call: an unexpected HTTP status or an envelope with
// success=false. Msg carries the backend's message when it sent one.
type Error struct {
	Status int
	Msg    string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Msg)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// IsUnauthorized reports whether err is a 401 API error.
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*Error)
	return ok && apiErr.Status == http.StatusUnauthorized
}

// Client issues authenticated requests against the marketplace backend.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Session
}

// New constructs a Client for the given base URL and session.
func New(baseURL string, sess *session.Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		session: sess,
	}
}

// BaseURL exposes the configured API base for the normalization layer.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session exposes the injected session.
func (c *Client) Session() *session.Session {
	return c.session
}

// RequestOpts captures the inputs for a single API call.
type RequestOpts struct {
	Method      string
	Path        string
	Query       map[string]string
	Body        any
	RawBody     io.Reader
	ContentType string
}

// Response bundles the HTTP response metadata.
type Response struct {
	Status int
	Body   []byte
	Header http.Header
}

// Do performs a request, attaching the bearer token when present. A 401
// response triggers the session invalidation policy before returning.
func (c *Client) Do(ctx context.Context, opts RequestOpts) (*Response, error) {
	if opts.Method == "" {
		return nil, fmt.Errorf("api: request method is required")
	}

	targetURL, err := c.makeURL(opts.Path, opts.Query)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	contentType := opts.ContentType
	switch {
	case opts.RawBody != nil:
		bodyReader = opts.RawBody
	case opts.Body != nil:
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("api: marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
		if contentType == "" {
			contentType = "application/json"
		}
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, targetURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.session.HandleUnauthorized()
	}

	return &Response{
		Status: resp.StatusCode,
		Body:   respBody,
		Header: resp.Header.Clone(),
	}, nil
}

// doJSON performs a request and decodes the response into out. Non-2xx
// statuses become *Error with the backend message when available.
func (c *Client) doJSON(ctx context.Context, opts RequestOpts, out any) error {
	resp, err := c.Do(ctx, opts)
	if err != nil {
		return err
	}

	if resp.Status < 200 || resp.Status >= 300 {
		return &Error{Status: resp.Status, Msg: messageFrom(resp.Body)}
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("api: unmarshal response: %w", err)
	}

	return nil
}

func (c *Client) makeURL(path string, query map[string]string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("api: parse base URL: %w", err)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		values := u.Query()
		for k, v := range query {
			values.Set(k, v)
		}
		u.RawQuery = values.Encode()
	}
	return u.String(), nil
}

// envelope is the common response wrapper the backend uses. Some endpoints
// say msg, some message; both are accepted everywhere.
type envelope struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

func (e envelope) text() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Message
}

// ok converts a decoded envelope into an error when the backend reported
// failure despite a 2xx status.
func (e envelope) ok() error {
	if e.Success {
		return nil
	}
	return &Error{Status: http.StatusOK, Msg: e.text()}
}

func messageFrom(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.text()
}
