// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache provides the in-memory, TTL based response store that sits in
// front of the API transport. Expiry is lazy: entries are checked when read,
// never swept in the background.
package cache
