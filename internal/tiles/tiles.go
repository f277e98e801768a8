// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package tiles maps the human-readable names of the supported map tile servers to their
// URL templates.
package tiles

import (
	"errors"
	"fmt"
	"strings"
)

const (
	OpenStreetMap   = "OpenStreetMap"
	GoogleNormal    = "Google normal"
	GoogleSatellite = "Google satellite"
)

// ErrUnknownSource is returned when a tile source name is not one of the supported names.
var ErrUnknownSource = errors.New("unknown tile source")

// Source describes a tile server. URL is a template with {x}, {y} and {z} placeholders.
type Source struct {
	Name    string
	URL     string
	MaxZoom int
}

var sources = []Source{
	{Name: OpenStreetMap, URL: "https://a.tile.openstreetmap.org/{z}/{x}/{y}.png", MaxZoom: 19},
	{Name: GoogleNormal, URL: "https://mt0.google.com/vt/lyrs=m&hl=en&x={x}&y={y}&z={z}&s=Ga", MaxZoom: 22},
	{Name: GoogleSatellite, URL: "https://mt0.google.com/vt/lyrs=s&hl=en&x={x}&y={y}&z={z}&s=Ga", MaxZoom: 22},
}

// Lookup returns the Source registered under name. The comparison ignores case and
// surrounding whitespace.
func Lookup(name string) (Source, error) {
	needle := strings.TrimSpace(name)
	for _, s := range sources {
		if strings.EqualFold(s.Name, needle) {
			return s, nil
		}
	}
	return Source{}, fmt.Errorf("%w: %q", ErrUnknownSource, name)
}

// Names returns the names of all supported tile sources in menu order.
func Names() []string {
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name)
	}
	return names
}

// Next returns the source following current in menu order, wrapping around at the end.
// An unknown current name yields the first source.
func Next(current string) Source {
	for i, s := range sources {
		if strings.EqualFold(s.Name, current) {
			return sources[(i+1)%len(sources)]
		}
	}
	return sources[0]
}

// TileURL expands the template for the given tile coordinates.
func (s Source) TileURL(x, y, z int) string {
	return strings.NewReplacer(
		"{x}", fmt.Sprint(x),
		"{y}", fmt.Sprint(y),
		"{z}", fmt.Sprint(z),
	).Replace(s.URL)
}
