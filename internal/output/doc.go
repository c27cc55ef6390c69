// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package output turns JSON payloads from the clinic API into what the user
// sees: tables, JSON, YAML or the raw body, after --attrs, --filter and --sort
// have been applied.
package output
