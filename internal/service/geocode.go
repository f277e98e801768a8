// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/wneessen/iss-tracker/internal/logger"
)

// fetchLocation reverse geocodes the point below the latest satellite position and hands
// the result to the UI owner.
func (s *Session) fetchLocation(ctx context.Context) {
	if s.geocoder == nil {
		return
	}
	snap := s.shared.Snapshot()
	addr, err := s.geocoder.Reverse(ctx, snap.Position)
	s.metrics.GeocodeLookedUp(addr.AddressFound, addr.CacheHit, err)
	if err != nil {
		s.logger.Error("failed to reverse geocode satellite position", logger.Err(err),
			slog.String("geocoder", s.geocoder.Name()), slog.String("position", snap.Position.String()))
		return
	}
	s.logger.Debug("region below the satellite updated", slog.String("geocoder", s.geocoder.Name()),
		slog.String("region", addr.Region()), slog.Bool("cache_hit", addr.CacheHit))
	s.owner.SetLocation(addr)
}
