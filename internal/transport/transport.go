// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ResponseType selects how the response body is requested.
type ResponseType int

const (
	// JSON asks for application/json. The body is still returned undecoded.
	JSON ResponseType = iota
	// Binary asks for an opaque byte stream.
	Binary
)

// Request carries the optional parts of a call.
type Request struct {
	// Params are merged into any query already present in the path.
	Params url.Values
	// Body is JSON encoded when non-nil.
	Body         any
	ResponseType ResponseType
}

// Response is a completed 2xx exchange.
type Response struct {
	Status int
	Header http.Header
	Data   []byte
}

// ContentLength returns the declared Content-Length, if any.
func (r *Response) ContentLength() (int64, bool) {
	if r == nil || r.Header == nil {
		return 0, false
	}
	v := r.Header.Get("Content-Length")
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Transport is the HTTP style client consumed by the cache and task layers.
// Non-2xx statuses and network failures are returned as *Error.
type Transport interface {
	Get(ctx context.Context, path string, req Request) (*Response, error)
	Post(ctx context.Context, path string, req Request) (*Response, error)
	Put(ctx context.Context, path string, req Request) (*Response, error)
	Delete(ctx context.Context, path string, req Request) (*Response, error)
}
