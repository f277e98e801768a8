// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package service wires the tracker together and owns its lifecycle from the startup fetch
// to the shutdown on quit.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vorlif/spreak"

	"github.com/wneessen/iss-tracker/internal/config"
	"github.com/wneessen/iss-tracker/internal/console"
	"github.com/wneessen/iss-tracker/internal/geocode"
	"github.com/wneessen/iss-tracker/internal/logger"
	"github.com/wneessen/iss-tracker/internal/metrics"
	"github.com/wneessen/iss-tracker/internal/poller"
	"github.com/wneessen/iss-tracker/internal/position"
	"github.com/wneessen/iss-tracker/internal/presenter"
	"github.com/wneessen/iss-tracker/internal/tiles"
	"github.com/wneessen/iss-tracker/internal/tracker"
	"github.com/wneessen/iss-tracker/internal/weather"
)

// StartupFetchTimeout bounds the synchronous position fetch performed before the map
// surface is built.
const StartupFetchTimeout = time.Second * 10

// Session is the process-wide tracker state. It is created at startup, runs while the
// poll loop is active and is torn down exactly once on quit.
type Session struct {
	config    *config.Config
	logger    *logger.Logger
	t         *spreak.Localizer
	scheduler gocron.Scheduler
	metrics   *metrics.Collector

	source   position.Source
	shared   *position.Shared
	owner    *tracker.Owner
	poller   *poller.Poller
	weather  weather.Provider
	geocoder geocode.Geocoder
	console  *console.Console
	input    io.Reader

	SignalSrc    signalSource
	monitorSleep bool

	quitOnce sync.Once
}

// New selects the configured providers, performs the startup fetch and builds the map
// surface. A failing startup fetch is logged and the tracker starts at (0, 0).
func New(ctx context.Context, conf *config.Config, log *logger.Logger, t *spreak.Localizer) (*Session, error) {
	if conf == nil {
		return nil, errors.New("config is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}

	source, err := selectPositionSource(conf, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create position provider: %w", err)
	}
	var wprov weather.Provider
	if !conf.Weather.Disable {
		if wprov, err = selectWeatherProvider(conf, log); err != nil {
			return nil, fmt.Errorf("failed to create weather provider: %w", err)
		}
	}

	var coder geocode.Geocoder
	if !conf.Geocode.Disable {
		if coder, err = selectGeocoder(log, t); err != nil {
			return nil, fmt.Errorf("failed to create geocoder: %w", err)
		}
	}

	initial := startupFetch(ctx, log, source)
	surface, err := selectSurface(conf, t, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to create map surface: %w", err)
	}

	var input io.Reader
	if strings.EqualFold(conf.Output.Surface, "terminal") {
		input = os.Stdin
	}
	session, err := newSession(conf, log, t, source, initial, surface, wprov, input)
	if err != nil {
		return nil, err
	}
	session.monitorSleep = wprov != nil
	session.geocoder = coder
	return session, nil
}

func newSession(conf *config.Config, log *logger.Logger, t *spreak.Localizer, source position.Source,
	initial position.Position, surface tracker.Surface, wprov weather.Provider, input io.Reader,
) (*Session, error) {
	if t == nil {
		return nil, errors.New("localizer is required")
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	collector, err := metrics.NewCollector(prometheus.NewRegistry())
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics collector: %w", err)
	}
	pres, err := presenter.New(t)
	if err != nil {
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}
	tile, err := tiles.Lookup(conf.Map.TileSource)
	if err != nil {
		return nil, fmt.Errorf("failed to look up tile source: %w", err)
	}

	session := &Session{
		config:    conf,
		logger:    log,
		t:         t,
		scheduler: scheduler,
		metrics:   collector,
		source:    source,
		shared:    position.NewShared(initial),
		weather:   wprov,
		input:     input,
		SignalSrc: stdLibSignalSource{},
	}

	session.owner, err = tracker.New(log, surface, session.shared, pres, tracker.Options{
		TileSource: tile,
		Interval:   conf.Intervals.Position,
		Recorder:   collector,
		IntervalChanged: func(interval time.Duration) error {
			return session.poller.SetInterval(interval)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create UI owner: %w", err)
	}
	session.poller, err = poller.New(log, source, session.shared, collector, session.owner.Notify,
		conf.Intervals.Position)
	if err != nil {
		return nil, fmt.Errorf("failed to create poller: %w", err)
	}
	if input != nil {
		if session.console, err = console.New(log, session); err != nil {
			return nil, fmt.Errorf("failed to create console: %w", err)
		}
	}
	return session, nil
}

// Run starts the poller, the scheduled jobs and the auxiliary listeners and then runs the
// UI owner's event loop on the calling goroutine until the session quits or ctx is
// canceled.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := s.createJobs(ctx); err != nil {
		return errors.Join(err, s.shutdownScheduler())
	}
	if err := s.poller.Start(ctx); err != nil {
		return errors.Join(fmt.Errorf("failed to start poller: %w", err), s.shutdownScheduler())
	}
	s.scheduler.Start()

	sigChan := make(chan os.Signal, 1)
	s.SignalSrc.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2)
	go func() {
		defer s.SignalSrc.Stop(sigChan)
		s.HandleSignals(ctx, sigChan)
	}()

	if s.monitorSleep {
		go s.monitorSleepResume(ctx)
	}
	if s.config.Metrics.Address != "" {
		go func() {
			if err := s.metrics.Serve(ctx, s.config.Metrics.Address, s.logger); err != nil {
				s.logger.Error("metrics server failed", logger.Err(err))
			}
		}()
	}
	consoleDone := make(chan struct{})
	if s.console != nil {
		go func() {
			defer close(consoleDone)
			if err := s.console.Run(ctx, s.input); err != nil {
				s.logger.Error("console failed", logger.Err(err))
			}
		}()
	} else {
		close(consoleDone)
	}

	err := s.owner.Run(ctx)
	s.Quit()
	cancel()
	// The console restores the terminal state on return.
	<-consoleDone
	return errors.Join(err, s.shutdownScheduler())
}

// Quit tears the session down. The poller is asked to stop without waiting for an
// in-flight fetch and the UI owner is closed. Calling Quit more than once is a no-op.
func (s *Session) Quit() {
	s.quitOnce.Do(func() {
		s.logger.Info("shutting down tracker session")
		s.poller.Stop()
		s.owner.Close()
	})
}

func (s *Session) ChangeMap(name string) error {
	return s.owner.ChangeMap(name)
}

func (s *Session) CycleMap() {
	s.owner.CycleMap()
}

func (s *Session) ChangeInterval(interval time.Duration) error {
	return s.owner.ChangeInterval(interval)
}

// Snapshot returns the latest shared position.
func (s *Session) Snapshot() position.Snapshot {
	return s.shared.Snapshot()
}

func (s *Session) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string, opts ...gocron.JobOption,
) error {
	opts = append([]gocron.JobOption{
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	}, opts...)
	_, err := s.scheduler.NewJob(gocron.DurationJob(interval), gocron.NewTask(task), opts...)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}

func (s *Session) createJobs(ctx context.Context) error {
	if err := s.createScheduledJob(ctx, s.config.Intervals.Output, s.refreshLabels,
		"label_refresh_job"); err != nil {
		return err
	}
	if s.weather != nil {
		if err := s.createScheduledJob(ctx, s.config.Intervals.Weather, s.fetchWeather, "weather_update_job",
			gocron.WithStartAt(gocron.WithStartImmediately())); err != nil {
			return err
		}
	}
	if s.geocoder != nil {
		if err := s.createScheduledJob(ctx, s.config.Intervals.Geocode, s.fetchLocation, "geocode_update_job",
			gocron.WithStartAt(gocron.WithStartImmediately())); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) shutdownScheduler() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down scheduler: %w", err)
	}
	return nil
}

func (s *Session) refreshLabels(context.Context) {
	s.owner.Refresh()
}

// startupFetch performs the single synchronous fetch before the surface is built.
func startupFetch(ctx context.Context, log *logger.Logger, source position.Source) position.Position {
	ctxFetch, cancelFetch := context.WithTimeout(ctx, StartupFetchTimeout)
	defer cancelFetch()

	pos, err := source.Fetch(ctxFetch)
	if err != nil {
		err = fmt.Errorf("%w: startup fetch failed: %w", position.ErrInitialization, err)
		log.Error("degraded start, centering map at 0,0", logger.Err(err),
			slog.String("source", source.Name()))
		return position.Position{}
	}
	log.Debug("startup position fetched", slog.String("position", pos.String()),
		slog.String("source", source.Name()))
	return pos
}
