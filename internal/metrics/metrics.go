// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wneessen/iss-tracker/internal/logger"
)

const (
	namespace       = "isstracker"
	shutdownTimeout = time.Second * 5
)

// Collector records position polling and display metrics. A nil *Collector is a valid
// no-op recorder.
type Collector struct {
	gatherer prometheus.Gatherer

	Fetches        *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec
	Samples        prometheus.Gauge
	UpdatesApplied prometheus.Counter
	WeatherFetches *prometheus.CounterVec
	GeocodeLookups *prometheus.CounterVec
}

// NewCollector registers the tracker metrics with reg. A nil registerer uses the
// prometheus default registry.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	collector := &Collector{
		gatherer: gatherer,
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "position_fetches_total",
			Help:      "Number of satellite position fetches by source, result and error kind.",
		}, []string{"source", "result", "kind"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "position_fetch_duration_seconds",
			Help:      "Duration of satellite position fetches.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		Samples: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "position_samples",
			Help:      "Number of successful position samples written since startup.",
		}),
		UpdatesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "display_updates_total",
			Help:      "Number of position updates applied to the map surface.",
		}),
		WeatherFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_fetches_total",
			Help:      "Number of weather lookups below the satellite by result.",
		}, []string{"result"}),
		GeocodeLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_lookups_total",
			Help:      "Number of reverse geocoding lookups below the satellite by result.",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{
		collector.Fetches, collector.FetchDuration, collector.Samples,
		collector.UpdatesApplied, collector.WeatherFetches, collector.GeocodeLookups,
	} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				return nil, fmt.Errorf("metrics collector already registered: %w", err)
			}
			return nil, fmt.Errorf("failed to register metrics collector: %w", err)
		}
	}
	return collector, nil
}

func (c *Collector) FetchSucceeded(source string, took time.Duration, count uint64) {
	if c == nil {
		return
	}
	c.Fetches.WithLabelValues(source, "success", "").Inc()
	c.FetchDuration.WithLabelValues(source).Observe(took.Seconds())
	c.Samples.Set(float64(count))
}

func (c *Collector) FetchFailed(source string, kind string, took time.Duration) {
	if c == nil {
		return
	}
	c.Fetches.WithLabelValues(source, "failure", kind).Inc()
	c.FetchDuration.WithLabelValues(source).Observe(took.Seconds())
}

func (c *Collector) UpdateApplied() {
	if c == nil {
		return
	}
	c.UpdatesApplied.Inc()
}

func (c *Collector) WeatherFetched(err error) {
	if c == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	c.WeatherFetches.WithLabelValues(result).Inc()
}

// GeocodeLookedUp counts a reverse geocoding lookup. Results served from the cache are
// counted as "cached", points without an address as "no_address".
func (c *Collector) GeocodeLookedUp(found, cached bool, err error) {
	if c == nil {
		return
	}
	result := "success"
	switch {
	case err != nil:
		result = "failure"
	case cached:
		result = "cached"
	case !found:
		result = "no_address"
	}
	c.GeocodeLookups.WithLabelValues(result).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Serve serves /metrics and /healthz on addr until ctx is canceled.
func (c *Collector) Serve(ctx context.Context, addr string, log *logger.Logger) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return c.serve(ctx, listener, log)
}

func (c *Collector) serve(ctx context.Context, listener net.Listener, log *logger.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: time.Second * 5,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info("serving metrics", slog.String("address", listener.Addr().String()))
		errs <- server.Serve(listener)
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down metrics server: %w", err)
	}
	return nil
}
