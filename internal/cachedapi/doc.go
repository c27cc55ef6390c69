// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package cachedapi is the cache-aside client for the /cached endpoints.
// Reads are served from an in-memory cache.Store while fresh; invalidation is
// coordinated with the server so the local cache is only cleared after the
// server has cleared its own.
package cachedapi
