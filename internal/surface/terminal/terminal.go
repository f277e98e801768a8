// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package terminal renders the map as an equirectangular ASCII world map on a text
// terminal. The view is scrolled horizontally so the view center is always in the middle
// column.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/wneessen/iss-tracker/internal/position"
	"github.com/wneessen/iss-tracker/internal/presenter"
	"github.com/wneessen/iss-tracker/internal/surface"
	"github.com/wneessen/iss-tracker/internal/tiles"
	"github.com/wneessen/iss-tracker/internal/tracker"
)

const (
	pxPerCol = 32
	pxPerRow = 64

	minCols, maxCols = 24, 160
	minRows, maxRows = 12, 60

	graticule = 30.0

	clearScreen = "\x1b[H\x1b[2J"
	// Lines end with CRLF since the console may put the terminal into raw mode.
	eol = "\r\n"
)

const (
	glyphEmpty     = ' '
	glyphGrid      = '.'
	glyphEquator   = '-'
	glyphMeridian  = '|'
	glyphCrossing  = '+'
	glyphMarker    = '@'
	glyphMarkerTag = '#'
)

// Options configures a terminal Surface.
type Options struct {
	// Width and Height of the window in pixels. They are converted to columns and rows.
	Width  int
	Height int
	Zoom   int
	// Clear redraws the frame in place instead of appending it to the output.
	Clear bool
}

type Surface struct {
	out  io.Writer
	cols int
	rows int
	zoom int
	// maxZoom is the configured zoom level, zoom is clamped to the tile source.
	maxZoom int
	clear   bool
	closed  bool

	center  position.Position
	tile    tiles.Source
	labels  presenter.Labels
	markers map[string]*Marker
	order   []string
}

// Marker is a marker on the terminal map.
type Marker struct {
	surface *Surface
	id      string
	pos     position.Position
}

func New(out io.Writer, opts Options) *Surface {
	return &Surface{
		out:     out,
		cols:    clamp(opts.Width/pxPerCol, minCols, maxCols),
		rows:    clamp(opts.Height/pxPerRow, minRows, maxRows),
		zoom:    opts.Zoom,
		maxZoom: opts.Zoom,
		clear:   opts.Clear,
		markers: make(map[string]*Marker),
	}
}

func (s *Surface) AddMarker(id string, pos position.Position) (tracker.Marker, error) {
	if s.closed {
		return nil, surface.ErrClosed
	}
	if !pos.Valid() {
		return nil, fmt.Errorf("invalid marker position %s", pos)
	}
	if marker, ok := s.markers[id]; ok {
		marker.pos = pos
		return marker, nil
	}
	marker := &Marker{surface: s, id: id, pos: pos}
	s.markers[id] = marker
	s.order = append(s.order, id)
	return marker, nil
}

func (m *Marker) SetPosition(pos position.Position) error {
	if m.surface.closed {
		return surface.ErrClosed
	}
	if !pos.Valid() {
		return fmt.Errorf("invalid marker position %s", pos)
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
	s.zoom = min(s.maxZoom, src.MaxZoom)
	return nil
}

func (s *Surface) SetLabels(labels presenter.Labels) error {
	if s.closed {
		return surface.ErrClosed
	}
	s.labels = labels
	return nil
}

// Flush writes the current frame to the output.
func (s *Surface) Flush() error {
	if s.closed {
		return surface.ErrClosed
	}
	buf := bufio.NewWriter(s.out)
	if s.clear {
		_, _ = buf.WriteString(clearScreen)
	}
	s.render(buf)
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to write map frame: %w", err)
	}
	return nil
}

func (s *Surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return nil
}

func (s *Surface) render(w *bufio.Writer) {
	header := s.labels.Title
	if s.tile.Name != "" {
		header = runewidth.FillRight(header, s.cols+2-runewidth.StringWidth(s.tile.Name)-2) +
			"[" + s.tile.Name + "]"
	}
	_, _ = w.WriteString(header + eol)

	border := "+" + strings.Repeat("-", s.cols) + "+" + eol
	_, _ = w.WriteString(border)
	for _, row := range s.grid() {
		_, _ = w.WriteString("|" + string(row) + "|" + eol)
	}
	_, _ = w.WriteString(border)

	if s.tile.URL != "" {
		x, y := TileXY(s.center, s.zoom)
		_, _ = w.WriteString("Tile: " + s.tile.TileURL(x, y, s.zoom) + eol)
	}
	for _, line := range alignLabels(s.labels.Entries) {
		_, _ = w.WriteString(line + eol)
	}
}

func (s *Surface) grid() [][]rune {
	grid := make([][]rune, s.rows)
	for r := range grid {
		grid[r] = make([]rune, s.cols)
		lat := s.latAt(r)
		for c := range grid[r] {
			grid[r][c] = s.background(lat, s.lonAt(c), r, c)
		}
	}
	for _, id := range s.order {
		marker := s.markers[id]
		c, r := s.Cell(marker.pos)
		grid[r][c] = glyphMarker
		if c+1 < s.cols {
			grid[r][c+1] = glyphMarkerTag
		}
	}
	return grid
}

func (s *Surface) background(lat, lon float64, r, c int) rune {
	equator := r == s.Row(0)
	meridian := c == s.Col(0)
	switch {
	case equator && meridian:
		return glyphCrossing
	case equator:
		return glyphEquator
	case meridian:
		return glyphMeridian
	case onGraticule(lat, 180/float64(s.rows)) && onGraticule(lon, 360/float64(s.cols)):
		return glyphGrid
	default:
		return glyphEmpty
	}
}

// Cell returns the column and row pos is drawn at.
func (s *Surface) Cell(pos position.Position) (col, row int) {
	return s.Col(pos.Longitude), s.Row(pos.Latitude)
}

// Col returns the column of a longitude relative to the view center.
func (s *Surface) Col(lon float64) int {
	offset := math.Mod(lon-s.center.Longitude+180, 360)
	if offset < 0 {
		offset += 360
	}
	return clamp(int(offset/360*float64(s.cols)), 0, s.cols-1)
}

// Row returns the row of a latitude.
func (s *Surface) Row(lat float64) int {
	return clamp(int((90-lat)/180*float64(s.rows)), 0, s.rows-1)
}

func (s *Surface) lonAt(c int) float64 {
	return s.center.Longitude - 180 + (float64(c)+0.5)*360/float64(s.cols)
}

func (s *Surface) latAt(r int) float64 {
	return 90 - (float64(r)+0.5)*180/float64(s.rows)
}

// TileXY returns the slippy map tile containing pos at the given zoom level.
func TileXY(pos position.Position, zoom int) (x, y int) {
	n := math.Exp2(float64(zoom))
	lat := math.Max(math.Min(pos.Latitude, 85.0511), -85.0511) * math.Pi / 180
	x = int(math.Floor((pos.Longitude + 180) / 360 * n))
	y = int(math.Floor((1 - math.Log(math.Tan(lat)+1/math.Cos(lat))/math.Pi) / 2 * n))
	maxTile := int(n) - 1
	return clamp(x, 0, maxTile), clamp(y, 0, maxTile)
}

func alignLabels(entries []presenter.Label) []string {
	width := 0
	for _, entry := range entries {
		width = max(width, runewidth.StringWidth(entry.Caption))
	}
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, runewidth.FillRight(entry.Caption+":", width+2)+entry.Value)
	}
	return lines
}

// onGraticule reports whether deg is within half a cell of a graticule line.
func onGraticule(deg, cell float64) bool {
	rem := math.Mod(math.Abs(deg), graticule)
	return rem < cell/2 || graticule-rem <= cell/2
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
