// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cachedapi

import (
	"context"
	"encoding/json"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/clinicctl/internal/apierr"
	"github.com/staranto/clinicctl/internal/transport"
)

// Fallback messages used when the server supplies none.
const (
	MsgClearFailed  = "Failed to clear cache"
	MsgStatsFailed  = "Failed to get cache stats"
	MsgHealthFailed = "Failed to get cache health"
)

// ClearResult reports a coordinated invalidation.
type ClearResult struct {
	Message string `json:"message"`
	Removed int    `json:"removed"`
}

type clearBody struct {
	Pattern *string `json:"pattern"`
}

// ClearCache asks the server to clear entries matching pattern (all entries
// when pattern is nil) and, only once the server has succeeded, removes the
// matching local entries. On failure the local cache is left untouched and a
// KindCacheInconsistency error wrapping the transport error is returned.
func (c *Client) ClearCache(ctx context.Context, pattern *string) (ClearResult, error) {
	resp, err := c.tr.Post(ctx, "/cached/cache/clear", transport.Request{
		Body: clearBody{Pattern: pattern},
	})
	if err != nil {
		log.WithError(err).Warn("server cache clear failed, local cache kept")
		return ClearResult{}, &apierr.Error{
			Kind: apierr.KindCacheInconsistency,
			Op:   "clear cache",
			Err:  err,
		}
	}

	var removed int
	scope := "all"
	if pattern == nil {
		removed = c.store.InvalidateAll()
	} else {
		scope = "pattern"
		removed = c.store.Invalidate(*pattern)
	}
	c.recorder.CacheInvalidated(scope, removed)

	msg := gjson.GetBytes(resp.Data, "message").String()
	log.WithFields(log.Fields{"scope": scope, "removed": removed}).Debug("cache cleared")

	return ClearResult{Message: msg, Removed: removed}, nil
}

// CacheStats returns the server's cache statistics verbatim
// ({cache_stats, redis_connected}). Nothing is derived from the local store.
func (c *Client) CacheStats(ctx context.Context) (json.RawMessage, error) {
	return c.passthrough(ctx, "/cached/cache/stats", "cache stats")
}

// CacheHealth returns the server's cache health verbatim
// ({status, redis_connected, stats}).
func (c *Client) CacheHealth(ctx context.Context) (json.RawMessage, error) {
	return c.passthrough(ctx, "/cached/cache/health", "cache health")
}

func (c *Client) passthrough(ctx context.Context, path, op string) (json.RawMessage, error) {
	resp, err := c.tr.Get(ctx, path, transport.Request{})
	if err != nil {
		return nil, apierr.Wrap(err, op)
	}
	return resp.Data, nil
}
