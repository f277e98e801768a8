// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geocode resolves the point on the ground below the satellite to a region name.
package geocode

import (
	"context"

	"github.com/wneessen/iss-tracker/internal/position"
)

// Address is a reverse geocoding result. AddressFound is false when the point has no
// address, which for a satellite ground track usually means open water.
type Address struct {
	AddressFound bool
	CacheHit     bool
	Latitude     float64
	Longitude    float64
	DisplayName  string
	Country      string
	CountryCode  string
	State        string
}

// Region returns the most specific name of the address that is useful at country scale.
func (a Address) Region() string {
	switch {
	case a.State != "" && a.Country != "" && a.State != a.Country:
		return a.State + ", " + a.Country
	case a.Country != "":
		return a.Country
	default:
		return a.DisplayName
	}
}

type Geocoder interface {
	Name() string
	Reverse(ctx context.Context, pos position.Position) (Address, error)
}
