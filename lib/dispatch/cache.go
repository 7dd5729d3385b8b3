// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bureau-foundation/nfdmgmt/lib/clock"
	"github.com/bureau-foundation/nfdmgmt/lib/name"
)

// Response cache defaults.
const (
	DefaultCacheSize     = 256
	DefaultCacheLifetime = time.Minute
)

// cachedResponse is what one Interest name is answered with: a single
// segment, or every segment of a command response under the request
// name.
type cachedResponse struct {
	wires   [][]byte
	expires time.Time
}

// responseCache holds recently produced Data by exact Interest name.
// Dataset segments are stored as they are produced. Command responses
// are stored only for requests that passed signature verification, so
// a forged packet copying a genuine name never decides what the
// genuine request receives.
type responseCache struct {
	clock    clock.Clock
	lifetime time.Duration
	entries  *lru.Cache[string, cachedResponse]
}

func newResponseCache(clk clock.Clock, size int, lifetime time.Duration) (*responseCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if lifetime <= 0 {
		lifetime = DefaultCacheLifetime
	}
	entries, err := lru.New[string, cachedResponse](size)
	if err != nil {
		return nil, fmt.Errorf("dispatch: creating response cache: %w", err)
	}
	return &responseCache{clock: clk, lifetime: lifetime, entries: entries}, nil
}

func (c *responseCache) add(interestName name.Name, wires ...[]byte) {
	c.entries.Add(interestName.String(), cachedResponse{
		wires:   wires,
		expires: c.clock.Now().Add(c.lifetime),
	})
}

func (c *responseCache) lookup(interestName name.Name) ([][]byte, bool) {
	key := interestName.String()
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if !c.clock.Now().Before(entry.expires) {
		c.entries.Remove(key)
		return nil, false
	}
	return entry.wires, true
}

func (c *responseCache) len() int { return c.entries.Len() }
