// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

type signalSource interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

type stdLibSignalSource struct{}

func (stdLibSignalSource) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (stdLibSignalSource) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

// HandleSignals cycles the tile source on SIGUSR1 and logs the current position on SIGUSR2.
func (s *Session) HandleSignals(ctx context.Context, sigChan chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			switch sig {
			case syscall.SIGUSR1:
				s.owner.CycleMap()
			case syscall.SIGUSR2:
				snap := s.shared.Snapshot()
				s.logger.Info("current satellite position", slog.Float64("latitude", snap.Latitude),
					slog.Float64("longitude", snap.Longitude), slog.Uint64("count", snap.Count),
					slog.Time("updated_at", snap.UpdatedAt))
			}
		}
	}
}
