// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package transporttest provides a scripted in-memory Transport for tests.
package transporttest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/staranto/clinicctl/internal/transport"
)

// Call records one request seen by the Fake.
type Call struct {
	Method string
	Path   string
	Req    transport.Request
}

// Handler answers a single request.
type Handler func(ctx context.Context, call Call) (*transport.Response, error)

// Fake is a Transport whose answers come from Handler. Every call is
// recorded, including those that fail.
type Fake struct {
	Handler Handler

	mu    sync.Mutex
	calls []Call
}

var _ transport.Transport = (*Fake)(nil)

// New returns a Fake driven by h.
func New(h Handler) *Fake {
	return &Fake{Handler: h}
}

// JSON builds a 200 response carrying body with a matching Content-Length.
func JSON(body string) *transport.Response {
	return WithStatus(http.StatusOK, body)
}

// WithStatus builds a response with the given status and body.
func WithStatus(status int, body string) *transport.Response {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	return &transport.Response{Status: status, Header: h, Data: []byte(body)}
}

// Failure builds the *transport.Error a real server would produce for status
// and body.
func Failure(method, path string, status int, body string) error {
	return &transport.Error{Method: method, Path: path, Status: status, Body: []byte(body)}
}

// Unreachable builds a network level *transport.Error.
func Unreachable(method, path string) error {
	return &transport.Error{Method: method, Path: path, Err: fmt.Errorf("dial tcp: connection refused")}
}

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Count returns how many calls were made.
func (f *Fake) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *Fake) Get(ctx context.Context, path string, req transport.Request) (*transport.Response, error) {
	return f.do(ctx, http.MethodGet, path, req)
}

func (f *Fake) Post(ctx context.Context, path string, req transport.Request) (*transport.Response, error) {
	return f.do(ctx, http.MethodPost, path, req)
}

func (f *Fake) Put(ctx context.Context, path string, req transport.Request) (*transport.Response, error) {
	return f.do(ctx, http.MethodPut, path, req)
}

func (f *Fake) Delete(ctx context.Context, path string, req transport.Request) (*transport.Response, error) {
	return f.do(ctx, http.MethodDelete, path, req)
}

func (f *Fake) do(ctx context.Context, method, path string, req transport.Request) (*transport.Response, error) {
	call := Call{Method: method, Path: path, Req: req}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &transport.Error{Method: method, Path: path, Err: err}
	}
	if f.Handler == nil {
		return JSON(`{}`), nil
	}
	return f.Handler(ctx, call)
}
