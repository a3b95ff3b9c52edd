// Package api is the single chokepoint for every call the client makes to
// the ROHIS backend. It builds URLs, attaches the ambient credential,
// serializes bodies, and classifies responses; resource clients in this
// package map operation names onto it without reshaping results.
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
)

const fallbackErrorMessage = "Request failed"

const exportContentType = "application/vnd.openxmlformats"

// CredentialSource supplies the bearer token attached to every request.
// The session store implements it; the transport never stores the token.
type CredentialSource interface {
	Token() string
}

// CredentialFunc adapts a plain function to a CredentialSource.
type CredentialFunc func() string

func (f CredentialFunc) Token() string { return f() }

// Client issues HTTP calls against one backend base URL. Each call is a
// single round trip: no retries, no timeouts, no caching.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource

	Auth       *AuthAPI
	Members    *MembersAPI
	Sessions   *SessionsAPI
	Attendance *AttendanceAPI
	Notulensi  *NotulensiAPI
	Pics       *PicsAPI
	Piket      *PiketAPI
	Profile    *ProfileAPI
	Feed       *FeedAPI
	Calendar   *CalendarAPI
	Chat       *ChatAPI
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithCredentials sets the source of the bearer token.
func WithCredentials(src CredentialSource) Option {
	return func(c *Client) {
		if src != nil {
			c.creds = src
		}
	}
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    http.DefaultClient,
		creds:   CredentialFunc(func() string { return "" }),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.Auth = &AuthAPI{c}
	c.Members = &MembersAPI{c}
	c.Sessions = &SessionsAPI{c}
	c.Attendance = &AttendanceAPI{c}
	c.Notulensi = &NotulensiAPI{c}
	c.Pics = &PicsAPI{c}
	c.Piket = &PiketAPI{c}
	c.Profile = &ProfileAPI{c}
	c.Feed = &FeedAPI{c}
	c.Calendar = &CalendarAPI{c}
	c.Chat = &ChatAPI{c}
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// requestOptions carries the per-call knobs for Do.
type requestOptions struct {
	params    url.Values
	jsonBody  any
	hasJSON   bool
	multipart io.Reader
	multiType string
}

// RequestOption customizes a single request.
type RequestOption func(*requestOptions)

// WithParams adds query parameters. Empty values are omitted.
func WithParams(params map[string]string) RequestOption {
	return func(o *requestOptions) {
		for k, v := range params {
			if v == "" {
				continue
			}
			if o.params == nil {
				o.params = url.Values{}
			}
			o.params.Set(k, v)
		}
	}
}

// WithJSON attaches a JSON-serialized body.
func WithJSON(body any) RequestOption {
	return func(o *requestOptions) {
		o.jsonBody = body
		o.hasJSON = true
	}
}

// WithMultipart attaches a raw multipart form body. The content type must
// be the one produced by the multipart writer (it carries the boundary).
func WithMultipart(body io.Reader, contentType string) RequestOption {
	return func(o *requestOptions) {
		o.multipart = body
		o.multiType = contentType
	}
}

// Do performs one round trip and decodes the JSON response into out (when
// out is non-nil). Non-2xx JSON responses become a *Error carrying the
// backend's message, the HTTP status, and the decoded body.
//
// Responses declaring an office-document content type are returned raw:
// out must then be a *[]byte, and a non-2xx status collapses to a generic
// export failure because binary routes carry no structured error body.
func (c *Client) Do(ctx context.Context, method, path string, out any, opts ...RequestOption) error {
	res, err := c.send(ctx, method, path, opts...)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if strings.Contains(res.Header.Get("Content-Type"), exportContentType) {
		if res.StatusCode >= 300 {
			return &Error{
				Message: "Export failed",
				Status:  res.StatusCode,
				Kind:    kindForStatus(res.StatusCode),
			}
		}
		raw, err := io.ReadAll(res.Body)
		if err != nil {
			return fmt.Errorf("api: read export: %w", err)
		}
		if sink, ok := out.(*[]byte); ok {
			*sink = raw
		}
		return nil
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}
	if res.StatusCode >= 300 {
		// Error bodies are parsed too; non-binary routes always answer
		// JSON, even on failure.
		body := map[string]any{}
		_ = json.Unmarshal(raw, &body)
		return &Error{
			Message: errorMessage(body),
			Status:  res.StatusCode,
			Kind:    kindForStatus(res.StatusCode),
			Body:    body,
		}
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("api: decode response: %w", err)
		}
	}
	return nil
}

// DoBinary performs one round trip against a document endpoint and returns
// the raw payload unparsed.
func (c *Client) DoBinary(ctx context.Context, method, path string, opts ...RequestOption) ([]byte, error) {
	var raw []byte
	if err := c.Do(ctx, method, path, &raw, opts...); err != nil {
		return nil, err
	}
	return raw, nil
}

// Get issues a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, out, opts...)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, out, WithJSON(body))
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, out, WithJSON(body))
}

// Delete issues a DELETE request, with a JSON body when body is non-nil.
func (c *Client) Delete(ctx context.Context, path string, body, out any) error {
	if body == nil {
		return c.Do(ctx, http.MethodDelete, path, out)
	}
	return c.Do(ctx, http.MethodDelete, path, out, WithJSON(body))
}

func (c *Client) send(ctx context.Context, method, path string, opts ...RequestOption) (*http.Response, error) {
	var ro requestOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&ro)
		}
	}

	target := c.baseURL + path
	if len(ro.params) > 0 {
		target += "?" + ro.params.Encode()
	}

	var reader io.Reader
	contentType := ""
	switch {
	case ro.multipart != nil:
		reader = ro.multipart
		contentType = ro.multiType
	case ro.hasJSON:
		payload := ro.jsonBody
		if payload == nil {
			payload = map[string]any{}
		}
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("api: encode body: %w", err)
		}
		reader = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Message: err.Error(), Kind: KindNetwork}
	}
	return res, nil
}

func errorMessage(body map[string]any) string {
	if msg, ok := body["message"].(string); ok && msg != "" {
		return msg
	}
	if msg, ok := body["error"].(string); ok && msg != "" {
		return msg
	}
	return fallbackErrorMessage
}
