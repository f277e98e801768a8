// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package weather

import (
	"context"
	"time"

	"github.com/wneessen/iss-tracker/internal/position"
	"github.com/wneessen/iss-tracker/internal/vartype"
)

// Provider is implemented by each weather API backend.
type Provider interface {
	Name() string
	GetWeather(ctx context.Context, pos position.Position) (*Data, error)
}

// Data is the weather at the point on the ground below the satellite.
type Data struct {
	GeneratedAt time.Time
	Position    position.Position

	Current Instant
}

// Instant holds the weather at one point in time. Hourly metrics are unset when the
// backend has no value for the current hour.
type Instant struct {
	InstantTime      time.Time
	Temperature      float64
	WeatherCode      int
	WindSpeed        float64
	WindDirection    float64
	RelativeHumidity vartype.VarFloat64
	PressureMSL      vartype.VarFloat64
	CloudCover       vartype.VarFloat64
	IsDay            vartype.VarBool
	Units            Units
}

type Units struct {
	Temperature string
	WindSpeed   string
	Humidity    string
	Pressure    string
	CloudCover  string
}

func NewData(pos position.Position) *Data {
	return &Data{
		GeneratedAt: time.Now(),
		Position:    pos,
	}
}

// Age returns how long ago the data was generated.
func (d *Data) Age(now time.Time) time.Duration {
	return now.Sub(d.GeneratedAt)
}
