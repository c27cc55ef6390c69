// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cachedapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/apex/log"
	"golang.org/x/sync/singleflight"

	"github.com/staranto/clinicctl/internal/apierr"
	"github.com/staranto/clinicctl/internal/cache"
	"github.com/staranto/clinicctl/internal/obs"
	"github.com/staranto/clinicctl/internal/transport"
)

// DefaultMaxCacheableBytes is the largest declared Content-Length that will
// still be cached.
const DefaultMaxCacheableBytes int64 = 100000

// Options tune a single Get.
type Options struct {
	// ForceRefresh skips the cache lookup. The fresh response still
	// replaces the cached one.
	ForceRefresh bool
	// NoCache prevents the response from being stored.
	NoCache bool
}

// Payload is a response body and whether it came from the cache.
type Payload struct {
	Data   json.RawMessage `json:"data"`
	Cached bool            `json:"cached"`
}

// Client wraps a Transport with the response cache.
type Client struct {
	store    *cache.Store
	tr       transport.Transport
	recorder obs.Recorder
	maxBytes int64
	noStore  bool

	// fetches coalesces concurrent network reads of the same key.
	fetches singleflight.Group
}

// Option customizes a Client.
type Option func(*Client)

// WithMaxCacheableBytes overrides DefaultMaxCacheableBytes. Non-positive
// values are ignored.
func WithMaxCacheableBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// WithNoStore makes every Get behave as if Options.NoCache were set.
func WithNoStore(noStore bool) Option {
	return func(c *Client) {
		c.noStore = noStore
	}
}

// WithRecorder sends cache events to r.
func WithRecorder(r obs.Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// New returns a Client reading through store. The store is owned by the
// caller and may be shared between clients.
func New(store *cache.Store, tr transport.Transport, opts ...Option) *Client {
	c := &Client{
		store:    store,
		tr:       tr,
		recorder: obs.Noop{},
		maxBytes: DefaultMaxCacheableBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the backing cache.
func (c *Client) Store() *cache.Store {
	return c.store
}

// Get performs a cache-aside GET of url. url is the path and query relative
// to the API base, e.g. "/cached/doctors?search=ann".
func (c *Client) Get(ctx context.Context, url string, opts Options) (Payload, error) {
	key := cache.Key(http.MethodGet, url)
	opts.NoCache = opts.NoCache || c.noStore

	if !opts.ForceRefresh {
		if data, ok := c.store.Get(key); ok {
			log.WithField("key", key).Debug("cache hit")
			c.recorder.CacheLookup(true)
			return Payload{Data: data, Cached: true}, nil
		}
		log.WithField("key", key).Debug("cache miss")
		c.recorder.CacheLookup(false)
	}

	if err := ctx.Err(); err != nil {
		return Payload{}, &apierr.Error{Kind: apierr.KindCanceled, Op: "GET " + url, Err: err}
	}

	// The shared fetch outlives any one caller's cancellation; each caller
	// still stops waiting when its own ctx ends.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.fetches.DoChan(key, func() (any, error) {
		resp, err := c.tr.Get(fetchCtx, url, transport.Request{})
		if err != nil {
			return nil, err
		}

		if ok, reason := c.shouldCache(resp, opts); ok {
			c.store.Set(key, resp.Data)
			c.recorder.CacheStore()
			log.WithField("key", key).Debug("cache store")
		} else {
			c.recorder.CacheSkip(reason)
			log.WithFields(log.Fields{"key": key, "reason": reason}).Debug("cache skip")
		}
		return []byte(resp.Data), nil
	})

	select {
	case <-ctx.Done():
		return Payload{}, &apierr.Error{Kind: apierr.KindCanceled, Op: "GET " + url, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return Payload{}, res.Err
		}
		data := res.Val.([]byte)
		if res.Shared {
			// Waiters each get their own copy of the body.
			log.WithField("key", key).Debug("shared fetch")
			data = bytes.Clone(data)
		}
		return Payload{Data: data, Cached: false}, nil
	}
}

// ShouldCache reports whether resp may be stored under opts.
func (c *Client) ShouldCache(resp *transport.Response, opts Options) bool {
	ok, _ := c.shouldCache(resp, opts)
	return ok
}

func (c *Client) shouldCache(resp *transport.Response, opts Options) (bool, string) {
	switch {
	case opts.NoCache:
		return false, "no_cache"
	case resp == nil || resp.Status != http.StatusOK:
		return false, "status"
	}
	if n, ok := resp.ContentLength(); ok && n > c.maxBytes {
		return false, "too_large"
	}
	return true, ""
}
