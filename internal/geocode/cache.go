// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/wneessen/iss-tracker/internal/position"
)

// coordPrecision is the precision used to quantize coordinates (0.1 degrees ≈ 11 km)
const coordPrecision = 1e-1

type cacheKey struct {
	Provider string
	LatQ     int32
	LonQ     int32
}

type cacheEntry struct {
	Address Address
	Expiry  time.Time
}

// CachedGeocoder wraps a Geocoder and keeps its results for a while. Points without an
// address are kept for ttlMiss, all others for ttlHit.
type CachedGeocoder struct {
	coder   Geocoder
	ttlHit  time.Duration
	ttlMiss time.Duration

	mu    sync.RWMutex
	cache map[cacheKey]cacheEntry
}

func NewCachedGeocoder(coder Geocoder, ttlHit, ttlMiss time.Duration) *CachedGeocoder {
	return &CachedGeocoder{
		coder:   coder,
		ttlHit:  ttlHit,
		ttlMiss: ttlMiss,
		cache:   make(map[cacheKey]cacheEntry),
	}
}

func (c *CachedGeocoder) Name() string {
	return "geocoder cache using " + c.coder.Name()
}

func (c *CachedGeocoder) Reverse(ctx context.Context, pos position.Position) (Address, error) {
	key := newKey(c.coder.Name(), pos.Latitude, pos.Longitude)
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if ok && now.Before(entry.Expiry) {
		addr := entry.Address
		addr.CacheHit = true
		return addr, nil
	}

	addr, err := c.coder.Reverse(ctx, pos)
	if err != nil {
		return addr, err
	}

	ttl := c.ttlHit
	if !addr.AddressFound {
		ttl = c.ttlMiss
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.evict(now)
	c.cache[key] = cacheEntry{
		Address: addr,
		Expiry:  now.Add(ttl),
	}
	return addr, nil
}

// entries returns the number of cached entries, expired ones included.
func (c *CachedGeocoder) entries() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// evict drops expired entries. Callers must hold the write lock.
func (c *CachedGeocoder) evict(now time.Time) {
	for key, entry := range c.cache {
		if !now.Before(entry.Expiry) {
			delete(c.cache, key)
		}
	}
}

func quantizeCoord(val float64) int32 {
	return int32(math.Round(val / coordPrecision))
}

func newKey(provider string, lat, lon float64) cacheKey {
	return cacheKey{
		Provider: provider,
		LatQ:     quantizeCoord(lat),
		LonQ:     quantizeCoord(lon),
	}
}
