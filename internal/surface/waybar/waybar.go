// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package waybar renders the tracker as a custom waybar module: one JSON object per line
// on the output.
package waybar

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/wneessen/iss-tracker/internal/position"
	"github.com/wneessen/iss-tracker/internal/presenter"
	"github.com/wneessen/iss-tracker/internal/surface"
	"github.com/wneessen/iss-tracker/internal/template"
	"github.com/wneessen/iss-tracker/internal/tiles"
	"github.com/wneessen/iss-tracker/internal/tracker"
)

const OutputClass = "iss-tracker"

type outputData struct {
	Text    string   `json:"text"`
	Alt     string   `json:"alt"`
	Tooltip string   `json:"tooltip"`
	Class   []string `json:"class"`
}

// Surface has no map of its own. It keeps the marker position and the labels and prints
// them through the configured templates on every Flush.
type Surface struct {
	enc    *json.Encoder
	tpls   *template.Templates
	closed bool

	center position.Position
	tile   tiles.Source
	labels presenter.Labels
	marker *Marker
}

type Marker struct {
	surface *Surface
	pos     position.Position
}

func New(out io.Writer, tpls *template.Templates) *Surface {
	return &Surface{enc: json.NewEncoder(out), tpls: tpls}
}

func (s *Surface) AddMarker(_ string, pos position.Position) (tracker.Marker, error) {
	if s.closed {
		return nil, surface.ErrClosed
	}
	if s.marker == nil {
		s.marker = &Marker{surface: s}
	}
	s.marker.pos = pos
	return s.marker, nil
}

func (m *Marker) SetPosition(pos position.Position) error {
	if m.surface.closed {
		return surface.ErrClosed
	}
	m.pos = pos
	return nil
}

func (s *Surface) SetViewCenter(pos position.Position) error {
	if s.closed {
		return surface.ErrClosed
	}
	s.center = pos
	return nil
}

func (s *Surface) SetTileSource(src tiles.Source) error {
	if s.closed {
		return surface.ErrClosed
	}
	s.tile = src
	return nil
}

func (s *Surface) SetLabels(labels presenter.Labels) error {
	if s.closed {
		return surface.ErrClosed
	}
	s.labels = labels
	return nil
}

func (s *Surface) Flush() error {
	if s.closed {
		return surface.ErrClosed
	}
	data := template.DisplayData{
		Title:      s.labels.Title,
		Class:      s.labels.Class,
		TileSource: s.tile.Name,
		Entries:    s.labels.Entries,
	}
	if s.marker != nil {
		data.Latitude = s.marker.pos.Latitude
		data.Longitude = s.marker.pos.Longitude
	}
	text, alt, tooltip, err := s.tpls.Render(data)
	if err != nil {
		return err
	}

	class := []string{OutputClass}
	if s.labels.Class != "" {
		class = append(class, s.labels.Class)
	}
	output := outputData{
		Text:    text,
		Alt:     alt,
		Tooltip: tooltip,
		Class:   class,
	}
	if err = s.enc.Encode(output); err != nil {
		return fmt.Errorf("failed to encode waybar output: %w", err)
	}
	return nil
}

func (s *Surface) Close() error {
	s.closed = true
	return nil
}
