// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package poller implements the background loop that fetches the satellite position at a
// fixed cadence and hands every successful sample over to the UI owner.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wneessen/iss-tracker/internal/logger"
	"github.com/wneessen/iss-tracker/internal/position"
)

// DefaultInterval is the default time between two position fetches.
const DefaultInterval = time.Second * 10

// ErrNotIdle is returned by Start if the poller has been started or stopped before.
var ErrNotIdle = errors.New("poller is not idle")

// State is the lifecycle state of a Poller.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// Recorder receives the outcome of every fetch.
type Recorder interface {
	FetchSucceeded(source string, took time.Duration, count uint64)
	FetchFailed(source string, kind string, took time.Duration)
}

// Poller periodically fetches the position from a Source, writes it to the shared cell and
// calls notify once per successful fetch. notify must be safe to call from the poller's
// goroutine; it is expected to queue work for the UI owner rather than touch UI state.
type Poller struct {
	log      *logger.Logger
	source   position.Source
	shared   *position.Shared
	recorder Recorder
	notify   func()
	interval atomic.Int64

	mu    sync.Mutex
	state State
	stop  chan struct{}
	done  chan struct{}
}

// New returns an idle Poller. A nil recorder disables fetch recording.
func New(log *logger.Logger, source position.Source, shared *position.Shared, recorder Recorder,
	notify func(), interval time.Duration,
) (*Poller, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if source == nil {
		return nil, fmt.Errorf("position source is required")
	}
	if shared == nil {
		return nil, fmt.Errorf("shared position is required")
	}
	if notify == nil {
		return nil, fmt.Errorf("notify function is required")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}

	poller := &Poller{
		log:      log,
		source:   source,
		shared:   shared,
		recorder: recorder,
		notify:   notify,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	poller.interval.Store(int64(interval))
	return poller, nil
}

// Start launches the polling loop on its own goroutine. The first fetch happens immediately.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateIdle {
		return fmt.Errorf("%w: %s", ErrNotIdle, p.state)
	}
	p.state = StateRunning
	go p.run(ctx)
	return nil
}

// Stop requests the loop to end and returns without waiting for it. A fetch in flight is
// completed; the loop exits before the next one. Calling Stop more than once is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case StateIdle:
		p.state = StateStopped
		close(p.done)
	case StateRunning:
		p.state = StateStopping
		close(p.stop)
	default:
	}
}

// State returns the current lifecycle state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Done returns a channel that is closed once the poller reached StateStopped.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

// Interval returns the current time between two fetches.
func (p *Poller) Interval() time.Duration {
	return time.Duration(p.interval.Load())
}

// SetInterval changes the time between two fetches, starting with the next wait.
func (p *Poller) SetInterval(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid poll interval: %s", interval)
	}
	p.interval.Store(int64(interval))
	return nil
}

func (p *Poller) run(ctx context.Context) {
	defer p.finish()

	// Stop requests and context cancellation are only observed between iterations,
	// an in-flight fetch is bounded by the source's own timeout.
	fetchCtx := context.WithoutCancel(ctx)
	for {
		p.poll(fetchCtx)
		if !p.wait(ctx) {
			return
		}
	}
}

// poll performs one fetch. Failures are logged and never touch the shared position, the loop
// retries on the next tick without any backoff.
func (p *Poller) poll(ctx context.Context) {
	start := time.Now()
	pos, err := p.source.Fetch(ctx)
	took := time.Since(start)
	if err != nil {
		p.log.Error("failed to fetch satellite position", logger.Err(err),
			slog.String("source", p.source.Name()))
		p.recorder.FetchFailed(p.source.Name(), errorKind(err), took)
		return
	}

	p.shared.Write(pos)
	count := p.shared.Snapshot().Count
	p.log.Debug("satellite position updated", slog.Float64("lat", pos.Latitude),
		slog.Float64("lon", pos.Longitude), slog.Uint64("count", count), slog.Duration("took", took))
	p.recorder.FetchSucceeded(p.source.Name(), took, count)
	p.notify()
}

// wait blocks for the poll interval. It returns false if the loop should end.
func (p *Poller) wait(ctx context.Context) bool {
	timer := time.NewTimer(p.Interval())
	defer timer.Stop()
	select {
	case <-p.stop:
		return false
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (p *Poller) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateStopped
	close(p.done)
	p.log.Debug("position poller stopped")
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, position.ErrNetwork):
		return "network"
	case errors.Is(err, position.ErrParse):
		return "parse"
	default:
		return "other"
	}
}

type nopRecorder struct{}

func (nopRecorder) FetchSucceeded(string, time.Duration, uint64) {}
func (nopRecorder) FetchFailed(string, string, time.Duration)    {}
