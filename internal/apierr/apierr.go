// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package apierr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindTransport is a network failure or a non-2xx HTTP status.
	KindTransport
	// KindValidation is a missing or invalid parameter, detected before any
	// request is issued.
	KindValidation
	// KindCacheInconsistency means the server refused or failed to invalidate
	// its cache, so the local cache was intentionally left unchanged.
	KindCacheInconsistency
	// KindPollExhausted means the attempt budget ran out before the task
	// reached a terminal status.
	KindPollExhausted
	// KindCanceled means the caller's context ended the operation.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	case KindCacheInconsistency:
		return "cache inconsistency"
	case KindPollExhausted:
		return "poll exhausted"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per Kind, so callers can use errors.Is.
var (
	ErrTransport          = errors.New("transport error")
	ErrValidation         = errors.New("validation error")
	ErrCacheInconsistency = errors.New("cache inconsistency")
	ErrPollExhausted      = errors.New("poll exhausted")
	ErrCanceled           = errors.New("canceled")
)

var sentinels = map[Kind]error{
	KindTransport:          ErrTransport,
	KindValidation:         ErrValidation,
	KindCacheInconsistency: ErrCacheInconsistency,
	KindPollExhausted:      ErrPollExhausted,
	KindCanceled:           ErrCanceled,
}

// Error is a classified failure of a single operation. Message is the human
// readable text meant for the user; Err is the underlying cause, if any.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's Kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// New builds an Error with no underlying cause.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Validation is shorthand for a KindValidation error.
func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap adds context and preserves the error chain (errors.Is/As works).
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf adds formatted context and preserves the error chain.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	args = append(args, err)
	return fmt.Errorf(format+": %w", args...)
}

// KindOf returns the Kind of the first *Error in err's chain, falling back
// to whichever sentinel err matches.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for _, k := range []Kind{KindTransport, KindValidation, KindCacheInconsistency, KindPollExhausted, KindCanceled} {
		if errors.Is(err, sentinels[k]) {
			return k
		}
	}
	return KindUnknown
}

// messager is implemented by errors that carry a server supplied message.
type messager interface {
	ServerMessage() (string, bool)
}

// Message returns the text a user should see for err: the structured
// server message when one is present anywhere in the chain, then the Message
// of a classified Error, and finally fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var m messager
	if errors.As(err, &m) {
		if msg, ok := m.ServerMessage(); ok {
			return msg
		}
	}

	var e *Error
	if errors.As(err, &e) && e.Kind != KindTransport && e.Message != "" {
		return e.Message
	}

	return fallback
}
