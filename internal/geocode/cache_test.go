// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/wneessen/iss-tracker/internal/position"
)

const (
	testHitTTL  = time.Minute
	testMissTTL = time.Second * 10
)

var (
	landPos  = position.Position{Latitude: 52.5129, Longitude: 13.3910}
	waterPos = position.Position{Latitude: -30.0, Longitude: -140.0}
	failPos  = position.Position{Latitude: 1, Longitude: -1}
)

var testAddress = Address{
	DisplayName: "Berlin, Germany",
	Country:     "Germany",
	CountryCode: "de",
	State:       "Berlin",
}

type mockCoder struct {
	calls atomic.Int32
}

func (c *mockCoder) Name() string { return "mock" }

func (c *mockCoder) Reverse(_ context.Context, pos position.Position) (Address, error) {
	c.calls.Add(1)
	if pos == failPos {
		return Address{}, errors.New("lookup intentionally failed")
	}
	if pos == waterPos {
		return Address{Latitude: pos.Latitude, Longitude: pos.Longitude}, nil
	}
	addr := testAddress
	addr.AddressFound = true
	addr.Latitude = pos.Latitude
	addr.Longitude = pos.Longitude
	return addr, nil
}

func TestNewCachedGeocoder(t *testing.T) {
	coder := NewCachedGeocoder(&mockCoder{}, testHitTTL, testMissTTL)
	if coder == nil {
		t.Fatal("expected a non-nil geocoder")
	}
	if coder.Name() != "geocoder cache using mock" {
		t.Errorf("expected geocoder name to be 'geocoder cache using mock', got %q", coder.Name())
	}
}

func TestCachedGeocoder_Reverse(t *testing.T) {
	t.Run("second lookup nearby is a cache hit", func(t *testing.T) {
		mock := &mockCoder{}
		coder := NewCachedGeocoder(mock, testHitTTL, testMissTTL)
		addr, err := coder.Reverse(t.Context(), landPos)
		if err != nil {
			t.Fatalf("failed to reverse geocode: %s", err)
		}
		if !addr.AddressFound || addr.CacheHit {
			t.Errorf("expected uncached address, got %+v", addr)
		}
		nearby := position.Position{Latitude: landPos.Latitude + 0.01, Longitude: landPos.Longitude - 0.01}
		addr, err = coder.Reverse(t.Context(), nearby)
		if err != nil {
			t.Fatalf("failed to reverse geocode: %s", err)
		}
		if !addr.CacheHit {
			t.Error("expected cache hit")
		}
		if got := mock.calls.Load(); got != 1 {
			t.Errorf("expected 1 upstream lookup, got %d", got)
		}
	})
	t.Run("hits and misses expire after their TTL", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			mock := &mockCoder{}
			coder := NewCachedGeocoder(mock, testHitTTL, testMissTTL)
			for _, pos := range []position.Position{landPos, waterPos} {
				if _, err := coder.Reverse(t.Context(), pos); err != nil {
					t.Fatalf("failed to reverse geocode: %s", err)
				}
			}

			time.Sleep(testMissTTL)
			addr, err := coder.Reverse(t.Context(), waterPos)
			if err != nil {
				t.Fatalf("failed to reverse geocode: %s", err)
			}
			if addr.CacheHit || addr.AddressFound {
				t.Errorf("expected expired miss to be looked up again, got %+v", addr)
			}
			addr, err = coder.Reverse(t.Context(), landPos)
			if err != nil {
				t.Fatalf("failed to reverse geocode: %s", err)
			}
			if !addr.CacheHit {
				t.Error("expected hit to still be cached")
			}

			time.Sleep(testHitTTL)
			addr, err = coder.Reverse(t.Context(), landPos)
			if err != nil {
				t.Fatalf("failed to reverse geocode: %s", err)
			}
			if addr.CacheHit {
				t.Error("expected expired hit to be looked up again")
			}
			if got := mock.calls.Load(); got != 4 {
				t.Errorf("expected 4 upstream lookups, got %d", got)
			}
			if got := coder.entries(); got != 1 {
				t.Errorf("expected expired entries to be evicted, got %d entries", got)
			}
		})
	})
	t.Run("errors are not cached", func(t *testing.T) {
		mock := &mockCoder{}
		coder := NewCachedGeocoder(mock, testHitTTL, testMissTTL)
		for range 2 {
			if _, err := coder.Reverse(t.Context(), failPos); err == nil {
				t.Fatal("expected lookup to fail")
			}
		}
		if got := mock.calls.Load(); got != 2 {
			t.Errorf("expected 2 upstream lookups, got %d", got)
		}
		if got := coder.entries(); got != 0 {
			t.Errorf("expected empty cache, got %d entries", got)
		}
	})
}

func TestAddress_Region(t *testing.T) {
	tests := []struct {
		name string
		addr Address
		want string
	}{
		{"state and country", testAddress, "Berlin, Germany"},
		{"country only", Address{Country: "Chad"}, "Chad"},
		{"state equals country", Address{State: "Singapore", Country: "Singapore"}, "Singapore"},
		{"display name fallback", Address{DisplayName: "Antarctica"}, "Antarctica"},
		{"empty", Address{}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.addr.Region(); got != tc.want {
				t.Errorf("expected region %q, got %q", tc.want, got)
			}
		})
	}
}
