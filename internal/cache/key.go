// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import "strings"

// Key builds the canonical cache key for a request, for example
// "GET:/cached/doctors?search=x". url is the path plus encoded query, used
// verbatim so that the same request always maps to the same key.
func Key(method, url string) string {
	var b strings.Builder
	b.Grow(len(method) + len(url) + 1)
	b.WriteString(strings.ToUpper(method))
	b.WriteByte(':')
	b.WriteString(url)
	return b.String()
}
