// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
)

// DefaultTimeout bounds a single request when no client is supplied.
const DefaultTimeout = 30 * time.Second

// ErrBaseURL is returned when the API base URL cannot be used.
var ErrBaseURL = errors.New("invalid API base URL")

// HTTP implements Transport over net/http. Paths are resolved against
// BaseURL, so "/cached/doctors" becomes "https://host/api/cached/doctors".
type HTTP struct {
	BaseURL   *url.URL
	Token     string
	UserAgent string
	Client    *http.Client
}

var _ Transport = (*HTTP)(nil)

// Option customizes an HTTP transport.
type Option func(*HTTP)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(h *HTTP) { h.Token = token }
}

// WithTimeout overrides DefaultTimeout on the pooled client.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTP) {
		if d > 0 {
			h.Client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the pooled client entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTP) {
		if c != nil {
			h.Client = c
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(h *HTTP) { h.UserAgent = ua }
}

// NewHTTP builds a transport for base, which must be an absolute http(s) URL.
// A bare hostname is accepted and treated as https://<host>/api.
func NewHTTP(base string, opts ...Option) (*HTTP, error) {
	if base == "" {
		return nil, fmt.Errorf("empty host: %w", ErrBaseURL)
	}
	if !strings.Contains(base, "://") {
		base = "https://" + base + "/api"
	}

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err, ErrBaseURL)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%q: %w", base, ErrBaseURL)
	}

	client := cleanhttp.DefaultPooledClient()
	client.Timeout = DefaultTimeout

	h := &HTTP{
		BaseURL:   u,
		UserAgent: "clinicctl",
		Client:    client,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *HTTP) Get(ctx context.Context, path string, req Request) (*Response, error) {
	return h.do(ctx, http.MethodGet, path, req)
}

func (h *HTTP) Post(ctx context.Context, path string, req Request) (*Response, error) {
	return h.do(ctx, http.MethodPost, path, req)
}

func (h *HTTP) Put(ctx context.Context, path string, req Request) (*Response, error) {
	return h.do(ctx, http.MethodPut, path, req)
}

func (h *HTTP) Delete(ctx context.Context, path string, req Request) (*Response, error) {
	return h.do(ctx, http.MethodDelete, path, req)
}

// resolve joins path (which may carry its own query) onto BaseURL and merges
// params into the query.
func (h *HTTP) resolve(path string, params url.Values) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse path %q: %w", path, err)
	}

	u := *h.BaseURL
	u.Path = strings.TrimRight(h.BaseURL.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	u.RawPath = ""

	q := ref.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	return &u, nil
}

func (h *HTTP) do(ctx context.Context, method, path string, req Request) (*Response, error) {
	u, err := h.resolve(path, req.Params)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Err: err}
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &Error{Method: method, Path: path, Err: fmt.Errorf("failed to encode body: %w", err)}
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	switch req.ResponseType {
	case Binary:
		httpReq.Header.Set("Accept", "application/octet-stream, */*")
	default:
		httpReq.Header.Set("Accept", "application/json")
	}
	if h.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+h.Token)
	}
	if h.UserAgent != "" {
		httpReq.Header.Set("User-Agent", h.UserAgent)
	}

	log.WithFields(log.Fields{"request_id": requestID}).Debugf("%s %s", method, u.Redacted())

	start := time.Now()
	resp, err := h.Client.Do(httpReq)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, &Error{Method: method, Path: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	log.WithFields(log.Fields{
		"request_id": requestID,
		"status":     resp.StatusCode,
		"bytes":      doc.Len(),
		"elapsed":    time.Since(start).Round(time.Millisecond),
	}).Debugf("%s %s done", method, path)

	header := resp.Header.Clone()
	if header.Get("Content-Length") == "" && resp.ContentLength >= 0 {
		header.Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Method: method, Path: path, Status: resp.StatusCode, Body: doc.Bytes()}
	}

	return &Response{Status: resp.StatusCode, Header: header, Data: doc.Bytes()}, nil
}
