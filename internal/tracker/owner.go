// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package tracker implements the single-threaded owner of all visual state. Other goroutines
// never touch the map surface directly; they queue work through Owner.Post.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wneessen/iss-tracker/internal/config"
	"github.com/wneessen/iss-tracker/internal/geocode"
	"github.com/wneessen/iss-tracker/internal/logger"
	"github.com/wneessen/iss-tracker/internal/position"
	"github.com/wneessen/iss-tracker/internal/presenter"
	"github.com/wneessen/iss-tracker/internal/tiles"
	"github.com/wneessen/iss-tracker/internal/weather"
)

// MarkerID is the logical id of the satellite marker on the map surface.
const MarkerID = "ISS"

const queueSize = 32

// ErrInvalidInterval is returned by ChangeInterval for intervals outside the allowed range.
var ErrInvalidInterval = errors.New("invalid update interval")

// Marker is a visual entity on the map surface.
type Marker interface {
	SetPosition(pos position.Position) error
}

// Surface renders the map, the marker and the labels. Its methods are only ever called
// from the owner's goroutine.
type Surface interface {
	AddMarker(id string, pos position.Position) (Marker, error)
	SetViewCenter(pos position.Position) error
	SetTileSource(src tiles.Source) error
	SetLabels(labels presenter.Labels) error
	Flush() error
	Close() error
}

// Recorder receives the number of position updates applied to the surface.
type Recorder interface {
	UpdateApplied()
}

// Options configures an Owner.
type Options struct {
	TileSource tiles.Source
	Interval   time.Duration
	Recorder   Recorder
	// IntervalChanged is called on the owner's goroutine when the update interval changes.
	IntervalChanged func(time.Duration) error
}

// Owner is the UI owner. Run executes its event loop; all other methods are safe for
// concurrent use.
type Owner struct {
	log       *logger.Logger
	surface   Surface
	shared    *position.Shared
	presenter *presenter.Presenter
	recorder  Recorder
	onIntvl   func(time.Duration) error
	now       func() time.Time

	queue     chan func()
	closed    chan struct{}
	closeOnce sync.Once
	done      chan struct{}

	// Owned by the event loop.
	marker   Marker
	applied  uint64
	tile     tiles.Source
	interval time.Duration
	weather  *weather.Data
	location *geocode.Address
}

func New(log *logger.Logger, surface Surface, shared *position.Shared, pres *presenter.Presenter,
	opts Options,
) (*Owner, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if surface == nil {
		return nil, errors.New("map surface is required")
	}
	if shared == nil {
		return nil, errors.New("shared position is required")
	}
	if pres == nil {
		return nil, errors.New("presenter is required")
	}
	if opts.TileSource.Name == "" {
		src, err := tiles.Lookup(tiles.OpenStreetMap)
		if err != nil {
			return nil, fmt.Errorf("failed to look up default tile source: %w", err)
		}
		opts.TileSource = src
	}

	return &Owner{
		log:       log,
		surface:   surface,
		shared:    shared,
		presenter: pres,
		recorder:  opts.Recorder,
		onIntvl:   opts.IntervalChanged,
		now:       time.Now,
		queue:     make(chan func(), queueSize),
		closed:    make(chan struct{}),
		done:      make(chan struct{}),
		tile:      opts.TileSource,
		interval:  opts.Interval,
	}, nil
}

// Run sets up the surface and processes queued work until the owner is closed or ctx is
// canceled. The surface is closed before Run returns.
func (o *Owner) Run(ctx context.Context) error {
	defer close(o.done)
	o.setup()

	for {
		select {
		case <-o.closed:
			return o.closeSurface()
		case <-ctx.Done():
			o.Close()
			return o.closeSurface()
		case fn := <-o.queue:
			select {
			case <-o.closed:
				return o.closeSurface()
			default:
			}
			fn()
		}
	}
}

// Post queues fn for execution on the owner's goroutine. It blocks until fn is queued and
// returns false if the owner has been closed.
func (o *Owner) Post(fn func()) bool {
	select {
	case <-o.closed:
		return false
	default:
	}
	select {
	case o.queue <- fn:
		return true
	case <-o.closed:
		return false
	}
}

// Notify queues one update notification. It is called by the poller after every
// successful sample.
func (o *Owner) Notify() {
	if !o.Post(o.onUpdateNotification) {
		o.log.Debug("owner closed, dropping update notification")
	}
}

// ChangeMap switches the tile source by name. Unknown names are logged and leave the
// current tile source unchanged.
func (o *Owner) ChangeMap(name string) error {
	src, err := tiles.Lookup(name)
	if err != nil {
		o.log.Warn("ignoring map change", logger.Err(err))
		return err
	}
	o.Post(func() { o.applyTileSource(src) })
	return nil
}

// CycleMap switches to the next tile source.
func (o *Owner) CycleMap() {
	o.Post(func() { o.applyTileSource(tiles.Next(o.tile.Name)) })
}

// ChangeInterval sets a new position update interval. Intervals outside the allowed range
// are logged and ignored.
func (o *Owner) ChangeInterval(interval time.Duration) error {
	if interval < config.MinPositionInterval || interval > config.MaxPositionInterval {
		err := fmt.Errorf("%w: %s is not within %s and %s", ErrInvalidInterval, interval,
			config.MinPositionInterval, config.MaxPositionInterval)
		o.log.Warn("ignoring interval change", logger.Err(err))
		return err
	}
	o.Post(func() { o.applyInterval(interval) })
	return nil
}

// SetWeather hands new weather data to the owner.
func (o *Owner) SetWeather(data *weather.Data) {
	o.Post(func() {
		o.weather = data
		o.render()
	})
}

// SetLocation hands a new reverse geocoding result for the point below the satellite to
// the owner.
func (o *Owner) SetLocation(addr geocode.Address) {
	o.Post(func() {
		o.location = &addr
		o.render()
	})
}

// Refresh re-renders the labels.
func (o *Owner) Refresh() {
	o.Post(o.render)
}

// Close stops the event loop. It is safe to call more than once.
func (o *Owner) Close() {
	o.closeOnce.Do(func() {
		close(o.closed)
	})
}

// Done returns a channel that is closed once Run has returned.
func (o *Owner) Done() <-chan struct{} {
	return o.done
}

func (o *Owner) setup() {
	snap := o.shared.Snapshot()
	if err := o.surface.SetTileSource(o.tile); err != nil {
		o.log.Error("failed to set tile source", logger.Err(err), slog.String("tile_source", o.tile.Name))
	}
	if err := o.surface.SetViewCenter(snap.Position); err != nil {
		o.log.Error("failed to center map view", logger.Err(err))
	}
	marker, err := o.surface.AddMarker(MarkerID, snap.Position)
	if err != nil {
		err = fmt.Errorf("%w: failed to create marker: %w", position.ErrInitialization, err)
		o.log.Error("marker will be created on the next update", logger.Err(err))
	}
	o.marker = marker
	o.applied = snap.Count
	o.render()
}

// onUpdateNotification applies the latest snapshot to the surface. It never performs
// network I/O. Notifications that arrive after a newer sample has already been applied
// only refresh the labels.
func (o *Owner) onUpdateNotification() {
	snap := o.shared.Snapshot()
	if o.marker != nil && snap.Count <= o.applied {
		o.render()
		return
	}

	// A newly created marker leaves the view where it is.
	if o.marker == nil {
		marker, err := o.surface.AddMarker(MarkerID, snap.Position)
		if err != nil {
			o.log.Error("failed to create marker", logger.Err(err))
		}
		o.marker = marker
	} else {
		if err := o.marker.SetPosition(snap.Position); err != nil {
			o.log.Error("failed to move marker", logger.Err(err))
		}
		if err := o.surface.SetViewCenter(snap.Position); err != nil {
			o.log.Error("failed to center map view", logger.Err(err))
		}
	}

	o.applied = snap.Count
	if o.recorder != nil {
		o.recorder.UpdateApplied()
	}
	o.log.Debug("position update applied", slog.String("position", snap.Position.String()),
		slog.Uint64("count", snap.Count))
	o.renderSnapshot(snap)
}

func (o *Owner) applyTileSource(src tiles.Source) {
	if err := o.surface.SetTileSource(src); err != nil {
		o.log.Error("failed to set tile source", logger.Err(err), slog.String("tile_source", src.Name))
		return
	}
	o.tile = src
	o.log.Info("tile source changed", slog.String("tile_source", src.Name))
	o.render()
}

func (o *Owner) applyInterval(interval time.Duration) {
	if o.onIntvl != nil {
		if err := o.onIntvl(interval); err != nil {
			o.log.Error("failed to change update interval", logger.Err(err))
			return
		}
	}
	o.interval = interval
	o.log.Info("update interval changed", slog.Duration("interval", interval))
	o.render()
}

func (o *Owner) render() {
	o.renderSnapshot(o.shared.Snapshot())
}

func (o *Owner) renderSnapshot(snap position.Snapshot) {
	labels := o.presenter.Labels(presenter.Input{
		Snapshot:   snap,
		Interval:   o.interval,
		TileSource: o.tile.Name,
		Weather:    o.weather,
		Location:   o.location,
		Now:        o.now(),
	})
	if err := o.surface.SetLabels(labels); err != nil {
		o.log.Error("failed to set labels", logger.Err(err))
	}
	if err := o.surface.Flush(); err != nil {
		o.log.Error("failed to flush map surface", logger.Err(err))
	}
}

func (o *Owner) closeSurface() error {
	if err := o.surface.Close(); err != nil {
		return fmt.Errorf("failed to close map surface: %w", err)
	}
	return nil
}
