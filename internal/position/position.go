// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package position holds the satellite position value type, the interface implemented by
// position APIs and the synchronized cell shared between the poller and the UI owner.
package position

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	// ErrNetwork marks connectivity, timeout and HTTP status failures.
	ErrNetwork = errors.New("network error")
	// ErrParse marks malformed or incomplete response bodies.
	ErrParse = errors.New("parse error")
	// ErrInitialization marks failures while setting up the tracker at startup.
	ErrInitialization = errors.New("initialization error")
)

// Source is implemented by each satellite position API backend. Fetch issues exactly one
// request and does not retry.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (Position, error)
}

// Position is a geographic position in decimal degrees.
type Position struct {
	Latitude  float64
	Longitude float64
}

// Valid checks if the position lies within the WGS84 coordinate ranges.
func (p Position) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

func (p Position) String() string {
	return fmt.Sprintf("%.4f,%.4f", p.Latitude, p.Longitude)
}

// Degrees is a JSON coordinate value that accepts both numbers and numeric strings.
type Degrees struct {
	value float64
	isset bool
}

// Value returns the decoded value.
func (d Degrees) Value() float64 {
	return d.value
}

// IsSet returns true if a value has been decoded.
func (d Degrees) IsSet() bool {
	return d.isset
}

func (d *Degrees) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		unquoted, err := strconv.Unquote(string(b))
		if err != nil {
			return fmt.Errorf("invalid coordinate string %s: %w", string(b), err)
		}
		b = []byte(unquoted)
	}
	val, err := strconv.ParseFloat(string(bytes.TrimSpace(b)), 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate %s: %w", string(b), err)
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("invalid coordinate %s: not a finite number", string(b))
	}
	d.value = val
	d.isset = true
	return nil
}

// FromDegrees builds a Position from decoded latitude and longitude values. It returns an
// ErrParse error if either value is missing or out of range.
func FromDegrees(lat, lon Degrees) (Position, error) {
	if !lat.IsSet() {
		return Position{}, fmt.Errorf("%w: latitude missing in response", ErrParse)
	}
	if !lon.IsSet() {
		return Position{}, fmt.Errorf("%w: longitude missing in response", ErrParse)
	}
	pos := Position{Latitude: lat.Value(), Longitude: lon.Value()}
	if !pos.Valid() {
		return Position{}, fmt.Errorf("%w: coordinates out of range: %s", ErrParse, pos)
	}
	return pos, nil
}
