// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/wneessen/iss-tracker/internal/logger"
)

// fetchWeather looks up the weather below the latest satellite position and hands it to
// the UI owner.
func (s *Session) fetchWeather(ctx context.Context) {
	if s.weather == nil {
		return
	}
	snap := s.shared.Snapshot()
	data, err := s.weather.GetWeather(ctx, snap.Position)
	s.metrics.WeatherFetched(err)
	if err != nil {
		s.logger.Error("failed to get weather data", logger.Err(err), slog.String("provider", s.weather.Name()),
			slog.String("position", snap.Position.String()))
		return
	}
	s.logger.Debug("weather data updated", slog.String("provider", s.weather.Name()),
		slog.String("position", snap.Position.String()))
	s.owner.SetWeather(data)
}
