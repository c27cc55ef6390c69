// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package transport is the generic HTTP contract the cache and task clients
// are written against, plus its net/http implementation.
package transport
