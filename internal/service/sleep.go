// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/wneessen/iss-tracker/internal/logger"
)

const (
	logindInterface = "org.freedesktop.login1.Manager"
	logindMember    = "PrepareForSleep"

	resumeDebounce     = time.Second * 2
	signalBufferSize   = 8
	busRetryDelay      = time.Second * 5
	networkWakeupDelay = time.Second * 10
)

// busConn is the part of *dbus.Conn the resume watcher uses.
type busConn interface {
	AddMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
	Close() error
}

// monitorSleepResume watches logind for resume events on the system bus and reconnects
// until ctx is canceled.
func (s *Session) monitorSleepResume(ctx context.Context) {
	var lastResume time.Time
	for ctx.Err() == nil {
		conn, err := dbus.ConnectSystemBus()
		if err != nil {
			s.logger.Debug("system bus not available", logger.Err(err))
			if !wait(ctx, busRetryDelay) {
				return
			}
			continue
		}

		s.watchResume(ctx, conn, &lastResume)
		if err = conn.Close(); err != nil {
			s.logger.Error("failed to close system bus connection", logger.Err(err))
		}
		if !wait(ctx, busRetryDelay) {
			return
		}
	}
}

// watchResume handles PrepareForSleep signals on conn until ctx is canceled or the signal
// channel is closed. Resume signals queued while a refresh is running are dropped.
func (s *Session) watchResume(ctx context.Context, conn busConn, lastResume *time.Time) {
	if err := conn.AddMatchSignal(dbus.WithMatchInterface(logindInterface),
		dbus.WithMatchMember(logindMember),
	); err != nil {
		s.logger.Error("failed to subscribe to dbus signal", slog.String("interface", logindInterface),
			slog.String("member", logindMember), logger.Err(err))
		return
	}

	sigCh := make(chan *dbus.Signal, signalBufferSize)
	conn.Signal(sigCh)
	defer conn.RemoveSignal(sigCh)
	s.logger.Debug("subscribed to dbus signal", slog.String("interface", logindInterface),
		slog.String("member", logindMember))

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}
			if !isResume(sig) || time.Since(*lastResume) < resumeDebounce {
				continue
			}
			s.handleResume(ctx)
			*lastResume = time.Now()
		}
	}
}

// handleResume gives the network time to come back and then refreshes the weather below
// the satellite.
func (s *Session) handleResume(ctx context.Context) {
	if !wait(ctx, networkWakeupDelay) {
		return
	}
	s.logger.Debug("resumed from sleep, refreshing weather data")
	s.fetchWeather(ctx)
	s.owner.Refresh()
}

// isResume reports whether sig is a PrepareForSleep(false) signal.
func isResume(sig *dbus.Signal) bool {
	if sig == nil || len(sig.Body) != 1 {
		return false
	}
	sleeping, ok := sig.Body[0].(bool)
	return ok && !sleeping
}

// wait returns false if ctx is canceled before d has passed.
func wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
