// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/staranto/clinicctl/internal/apierr"
)

// Error is a transport failure: either the request never completed (Err is
// set, Status is 0) or the server answered with a non-2xx status.
type Error struct {
	Method string
	Path   string
	Status int
	Body   []byte
	Err    error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	if msg, ok := e.ServerMessage(); ok {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, msg)
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports every transport Error as apierr.ErrTransport.
func (e *Error) Is(target error) bool {
	return target == apierr.ErrTransport
}

// ServerMessage extracts the "error" field of a structured {error: string}
// body.
func (e *Error) ServerMessage() (string, bool) {
	if len(e.Body) == 0 || !gjson.ValidBytes(e.Body) {
		return "", false
	}
	msg := gjson.GetBytes(e.Body, "error")
	if msg.Type != gjson.String || msg.Str == "" {
		return "", false
	}
	return msg.Str, true
}
