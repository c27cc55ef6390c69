// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"bytes"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// DefaultTTL is how long an entry stays fresh.
const DefaultTTL = 5 * time.Minute

// Clock supplies the current time. Tests substitute a fake.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Entry represents a single cached payload.
type Entry struct {
	Key        string
	Payload    []byte
	InsertedAt time.Time
}

// Store is a map of Entry keyed by cache key. The mutex only keeps the map
// itself sound; there is no ordering between concurrent Get and Set on the
// same key and the most recent Set wins.
type Store struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration
	clock   Clock
}

// Option customizes a Store.
type Option func(*Store)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock injects the time source.
func WithClock(c Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// New returns an empty, isolated Store.
func New(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]Entry),
		ttl:     DefaultTTL,
		clock:   systemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL reports the configured freshness window.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Set stores a copy of payload under key, replacing any existing entry and
// stamping the current time.
func (s *Store) Set(key string, payload []byte) {
	payload = bytes.Clone(payload)
	s.mu.Lock()
	s.entries[key] = Entry{Key: key, Payload: payload, InsertedAt: s.clock.Now()}
	s.mu.Unlock()
}

// Get returns a copy of the payload for key if it is fresh. A stale entry is
// evicted and reported as absent.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}

	if s.clock.Now().Sub(entry.InsertedAt) >= s.ttl {
		delete(s.entries, key)
		log.Debugf("cache expired: %s", key)
		return nil, false
	}

	return bytes.Clone(entry.Payload), true
}

// Invalidate removes every entry whose key contains pattern and returns the
// number removed. An empty pattern matches every key.
func (s *Store) Invalidate(pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if strings.Contains(key, pattern) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// InvalidateAll empties the store and returns the number of entries removed.
func (s *Store) InvalidateAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.entries)
	s.entries = make(map[string]Entry)
	return removed
}

// Len is the number of resident entries, stale ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
