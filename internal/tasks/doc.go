// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package tasks drives the server's asynchronous job protocol: a job is
// submitted from a fixed template, its status is polled until it settles or
// the attempt budget runs out, and a finished export is fetched as raw bytes.
//
// The server owns scheduling and execution. Nothing here persists state
// between calls.
package tasks
