// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package openmeteo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hectormalot/omgo"

	"github.com/wneessen/iss-tracker/internal/logger"
	"github.com/wneessen/iss-tracker/internal/position"
	"github.com/wneessen/iss-tracker/internal/weather"
)

const (
	name       = "open-meteo"
	apiTimeout = time.Second * 10
)

var hourlyFields = []string{"temperature_2m", "relative_humidity_2m", "pressure_msl", "cloud_cover", "is_day"}

type forecaster interface {
	Forecast(ctx context.Context, loc omgo.Location, opts *omgo.Options) (*omgo.Forecast, error)
}

type OpenMeteo struct {
	unit   string
	log    *logger.Logger
	client forecaster
}

func New(log *logger.Logger, unit string) (*OpenMeteo, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	client, err := omgo.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create Open-Meteo client: %w", err)
	}

	return &OpenMeteo{unit: unit, log: log, client: client}, nil
}

func (o *OpenMeteo) Name() string {
	return name
}

func (o *OpenMeteo) GetWeather(ctx context.Context, pos position.Position) (*weather.Data, error) {
	ctxFetch, cancelFetch := context.WithTimeout(ctx, apiTimeout)
	defer cancelFetch()

	location, err := omgo.NewLocation(pos.Latitude, pos.Longitude)
	if err != nil {
		return nil, fmt.Errorf("failed create Open-Meteo location from coordinates: %w", err)
	}

	opts := &omgo.Options{
		Timezone:      "GMT",
		HourlyMetrics: hourlyFields,
	}
	switch strings.ToLower(o.unit) {
	case "imperial":
		opts.TemperatureUnit = "fahrenheit"
		opts.PrecipitationUnit = "inch"
		opts.WindspeedUnit = "mph"
	default:
		opts.TemperatureUnit = "celsius"
		opts.PrecipitationUnit = "mm"
		opts.WindspeedUnit = "kmh"
	}

	forecast, err := o.client.Forecast(ctxFetch, location, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve weather data from Open-Meteo API: %w", err)
	}

	return dataFromForecast(pos, forecast, time.Now(), o.unit), nil
}

// dataFromForecast maps the current weather and the hourly values of the current hour onto
// weather.Data. Hourly values missing for that hour are left at zero.
func dataFromForecast(pos position.Position, forecast *omgo.Forecast, now time.Time, unit string) *weather.Data {
	data := weather.NewData(pos)
	data.GeneratedAt = now
	data.Current = weather.Instant{
		InstantTime:   forecast.CurrentWeather.Time.Time,
		Temperature:   forecast.CurrentWeather.Temperature,
		WeatherCode:   int(forecast.CurrentWeather.WeatherCode),
		WindSpeed:     forecast.CurrentWeather.WindSpeed,
		WindDirection: forecast.CurrentWeather.WindDirection,
		Units: weather.Units{
			Temperature: forecast.HourlyUnits["temperature_2m"],
			Humidity:    forecast.HourlyUnits["relative_humidity_2m"],
			Pressure:    forecast.HourlyUnits["pressure_msl"],
			CloudCover:  forecast.HourlyUnits["cloud_cover"],
			WindSpeed:   windSpeedUnit(unit),
		},
	}

	hour := now.UTC().Truncate(time.Hour)
	idx := -1
	for i, t := range forecast.HourlyTimes {
		if t.UTC().Equal(hour) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return data
	}
	if values := forecast.HourlyMetrics["relative_humidity_2m"]; idx < len(values) {
		data.Current.RelativeHumidity.Set(values[idx])
	}
	if values := forecast.HourlyMetrics["pressure_msl"]; idx < len(values) {
		data.Current.PressureMSL.Set(values[idx])
	}
	if values := forecast.HourlyMetrics["cloud_cover"]; idx < len(values) {
		data.Current.CloudCover.Set(values[idx])
	}
	if values := forecast.HourlyMetrics["is_day"]; idx < len(values) {
		data.Current.IsDay.Set(values[idx] == 1)
	}
	return data
}

func windSpeedUnit(unit string) string {
	if strings.EqualFold(unit, "imperial") {
		return "mph"
	}
	return "km/h"
}
