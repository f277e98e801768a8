// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package poller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/wneessen/iss-tracker/internal/logger"
	"github.com/wneessen/iss-tracker/internal/position"
)

const testInterval = time.Second * 10

func TestNew(t *testing.T) {
	log := logger.NewLogger(slog.LevelInfo, io.Discard)
	shared := position.NewShared(position.Position{})
	source := &scriptedSource{}
	notify := func() {}

	t.Run("new poller is idle", func(t *testing.T) {
		p, err := New(log, source, shared, nil, notify, testInterval)
		if err != nil {
			t.Fatalf("failed to create poller: %s", err)
		}
		if p.State() != StateIdle {
			t.Errorf("expected poller to be idle, got %s", p.State())
		}
		if p.Interval() != testInterval {
			t.Errorf("expected interval to be %s, got %s", testInterval, p.Interval())
		}
	})
	t.Run("non-positive interval falls back to the default", func(t *testing.T) {
		p, err := New(log, source, shared, nil, notify, 0)
		if err != nil {
			t.Fatalf("failed to create poller: %s", err)
		}
		if p.Interval() != DefaultInterval {
			t.Errorf("expected interval to be %s, got %s", DefaultInterval, p.Interval())
		}
	})
	t.Run("missing dependencies fail", func(t *testing.T) {
		tests := []struct {
			name    string
			create  func() (*Poller, error)
			wantErr string
		}{
			{"logger", func() (*Poller, error) { return New(nil, source, shared, nil, notify, testInterval) },
				"logger is required"},
			{"source", func() (*Poller, error) { return New(log, nil, shared, nil, notify, testInterval) },
				"position source is required"},
			{"shared", func() (*Poller, error) { return New(log, source, nil, nil, notify, testInterval) },
				"shared position is required"},
			{"notify", func() (*Poller, error) { return New(log, source, shared, nil, nil, testInterval) },
				"notify function is required"},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := tc.create()
				if err == nil {
					t.Fatal("expected poller creation to fail")
				}
				if !strings.Contains(err.Error(), tc.wantErr) {
					t.Errorf("expected error to contain %q, got %q", tc.wantErr, err)
				}
			})
		}
	})
}

func TestPoller_Start(t *testing.T) {
	t.Run("fetches at a fixed interval and notifies once per sample", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			source := &scriptedSource{results: []result{
				ok(1, 1), ok(2, 2), fail(position.ErrNetwork), ok(4, 4), ok(5, 5),
			}}
			shared := position.NewShared(position.Position{})
			notified := &counter{}
			recorder := &testRecorder{}
			p, err := New(logger.NewLogger(slog.LevelInfo, io.Discard), source, shared, recorder,
				notified.inc, testInterval)
			if err != nil {
				t.Fatalf("failed to create poller: %s", err)
			}
			if err = p.Start(t.Context()); err != nil {
				t.Fatalf("failed to start poller: %s", err)
			}

			time.Sleep(testInterval*4 + time.Millisecond)
			synctest.Wait()

			snap := shared.Snapshot()
			if snap.Position != (position.Position{Latitude: 5, Longitude: 5}) {
				t.Errorf("expected final position to be 5,5, got %s", snap.Position)
			}
			if snap.Count != 4 {
				t.Errorf("expected sample count to be 4, got %d", snap.Count)
			}
			if notified.get() != 4 {
				t.Errorf("expected 4 notifications, got %d", notified.get())
			}
			if succeeded, failed := recorder.counts("network"); succeeded != 4 || failed != 1 {
				t.Errorf("expected 4 recorded successes and 1 network failure, got %d and %d", succeeded, failed)
			}

			times := source.callTimes()
			if len(times) != 5 {
				t.Fatalf("expected 5 fetches, got %d", len(times))
			}
			for i := 1; i < len(times); i++ {
				if gap := times[i].Sub(times[i-1]); gap != testInterval {
					t.Errorf("expected fetch %d to follow after %s, got %s", i+1, testInterval, gap)
				}
			}

			p.Stop()
			synctest.Wait()
			if p.State() != StateStopped {
				t.Errorf("expected poller to be stopped, got %s", p.State())
			}
		})
	})
	t.Run("failures never stop the loop and never back off", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			source := &scriptedSource{fallback: fail(position.ErrParse)}
			shared := position.NewShared(position.Position{Latitude: 7, Longitude: 8})
			notified := &counter{}
			p, err := New(logger.NewLogger(slog.LevelInfo, io.Discard), source, shared, nil, notified.inc,
				testInterval)
			if err != nil {
				t.Fatalf("failed to create poller: %s", err)
			}
			if err = p.Start(t.Context()); err != nil {
				t.Fatalf("failed to start poller: %s", err)
			}

			time.Sleep(testInterval*99 + time.Millisecond)
			synctest.Wait()
			if calls := len(source.callTimes()); calls != 100 {
				t.Errorf("expected 100 fetch attempts, got %d", calls)
			}
			snap := shared.Snapshot()
			if snap.Count != 0 || snap.Latitude != 7 || snap.Longitude != 8 {
				t.Errorf("expected shared position to stay untouched, got %s (count %d)", snap.Position, snap.Count)
			}
			if notified.get() != 0 {
				t.Errorf("expected no notifications, got %d", notified.get())
			}
			if p.State() != StateRunning {
				t.Errorf("expected poller to keep running, got %s", p.State())
			}
			p.Stop()
			synctest.Wait()
		})
	})
	t.Run("failures are logged", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			buf := &syncBuffer{}
			source := &scriptedSource{fallback: fail(position.ErrNetwork)}
			p, err := New(logger.NewLogger(slog.LevelInfo, buf), source, position.NewShared(position.Position{}),
				nil, func() {}, testInterval)
			if err != nil {
				t.Fatalf("failed to create poller: %s", err)
			}
			if err = p.Start(t.Context()); err != nil {
				t.Fatalf("failed to start poller: %s", err)
			}
			synctest.Wait()
			p.Stop()
			synctest.Wait()

			wantLog := `msg="failed to fetch satellite position"`
			if !strings.Contains(buf.String(), wantLog) {
				t.Errorf("expected log to contain %q, got %q", wantLog, buf.String())
			}
		})
	})
	t.Run("starting twice fails", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			p := testPoller(t, &scriptedSource{fallback: ok(1, 1)})
			if err := p.Start(t.Context()); err != nil {
				t.Fatalf("failed to start poller: %s", err)
			}
			if err := p.Start(t.Context()); !errors.Is(err, ErrNotIdle) {
				t.Errorf("expected error to be %s, got %v", ErrNotIdle, err)
			}
			p.Stop()
			synctest.Wait()
		})
	})
	t.Run("context cancellation ends the loop", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			p := testPoller(t, &scriptedSource{fallback: ok(1, 1)})
			if err := p.Start(ctx); err != nil {
				t.Fatalf("failed to start poller: %s", err)
			}
			synctest.Wait()
			cancel()
			synctest.Wait()
			select {
			case <-p.Done():
			default:
				t.Fatal("expected poller to be done after context cancellation")
			}
			if p.State() != StateStopped {
				t.Errorf("expected poller to be stopped, got %s", p.State())
			}
		})
	})
}

func TestPoller_Stop(t *testing.T) {
	t.Run("stop does not interrupt an in-flight fetch", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			release := make(chan struct{})
			source := &blockingSource{release: release, pos: position.Position{Latitude: 3, Longitude: 4}}
			shared := position.NewShared(position.Position{})
			notified := &counter{}
			p, err := New(logger.NewLogger(slog.LevelInfo, io.Discard), source, shared, nil, notified.inc,
				testInterval)
			if err != nil {
				t.Fatalf("failed to create poller: %s", err)
			}
			if err = p.Start(t.Context()); err != nil {
				t.Fatalf("failed to start poller: %s", err)
			}
			synctest.Wait()

			// Stop returns while the fetch is still blocked
			p.Stop()
			if p.State() != StateStopping {
				t.Errorf("expected poller to be stopping, got %s", p.State())
			}

			close(release)
			synctest.Wait()
			if p.State() != StateStopped {
				t.Errorf("expected poller to be stopped, got %s", p.State())
			}
			if snap := shared.Snapshot(); snap.Count != 1 || snap.Latitude != 3 {
				t.Errorf("expected in-flight fetch to be applied, got %s (count %d)", snap.Position, snap.Count)
			}
			if notified.get() != 1 {
				t.Errorf("expected 1 notification, got %d", notified.get())
			}
			if calls := source.calls.Load(); calls != 1 {
				t.Errorf("expected exactly one fetch, got %d", calls)
			}
		})
	})
	t.Run("stop is idempotent", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			p := testPoller(t, &scriptedSource{fallback: ok(1, 1)})
			if err := p.Start(t.Context()); err != nil {
				t.Fatalf("failed to start poller: %s", err)
			}
			synctest.Wait()
			p.Stop()
			p.Stop()
			synctest.Wait()
			p.Stop()
			if p.State() != StateStopped {
				t.Errorf("expected poller to be stopped, got %s", p.State())
			}
		})
	})
	t.Run("stopping an idle poller", func(t *testing.T) {
		p := testPoller(t, &scriptedSource{fallback: ok(1, 1)})
		p.Stop()
		if p.State() != StateStopped {
			t.Errorf("expected poller to be stopped, got %s", p.State())
		}
		select {
		case <-p.Done():
		default:
			t.Error("expected done channel to be closed")
		}
		if err := p.Start(t.Context()); !errors.Is(err, ErrNotIdle) {
			t.Errorf("expected error to be %s, got %v", ErrNotIdle, err)
		}
	})
}

func TestPoller_SetInterval(t *testing.T) {
	t.Run("new interval applies to the next wait", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			source := &scriptedSource{fallback: ok(1, 1)}
			p := testPoller(t, source)
			if err := p.Start(t.Context()); err != nil {
				t.Fatalf("failed to start poller: %s", err)
			}
			synctest.Wait()
			if err := p.SetInterval(time.Second * 30); err != nil {
				t.Fatalf("failed to set interval: %s", err)
			}

			// the running wait still uses the old interval
			time.Sleep(testInterval + time.Second*30 + time.Millisecond)
			synctest.Wait()
			times := source.callTimes()
			if len(times) != 3 {
				t.Fatalf("expected 3 fetches, got %d", len(times))
			}
			if gap := times[2].Sub(times[1]); gap != time.Second*30 {
				t.Errorf("expected gap of 30s after interval change, got %s", gap)
			}
			p.Stop()
			synctest.Wait()
		})
	})
	t.Run("invalid interval is rejected", func(t *testing.T) {
		p := testPoller(t, &scriptedSource{})
		if err := p.SetInterval(0); err == nil {
			t.Error("expected invalid interval to be rejected")
		}
		if p.Interval() != testInterval {
			t.Errorf("expected interval to stay %s, got %s", testInterval, p.Interval())
		}
	})
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateIdle:     "idle",
		StateRunning:  "running",
		StateStopping: "stopping",
		StateStopped:  "stopped",
		State(42):     "unknown(42)",
	}
	for state, want := range tests {
		if state.String() != want {
			t.Errorf("expected state string to be %q, got %q", want, state.String())
		}
	}
}

func testPoller(t *testing.T, source position.Source) *Poller {
	t.Helper()
	p, err := New(logger.NewLogger(slog.LevelInfo, io.Discard), source, position.NewShared(position.Position{}),
		nil, func() {}, testInterval)
	if err != nil {
		t.Fatalf("failed to create poller: %s", err)
	}
	return p
}

type result struct {
	pos position.Position
	err error
}

func ok(lat, lon float64) result {
	return result{pos: position.Position{Latitude: lat, Longitude: lon}}
}

func fail(kind error) result {
	return result{err: fmt.Errorf("%w: intentionally failing", kind)}
}

// scriptedSource returns the scripted results in order and the fallback afterwards.
type scriptedSource struct {
	mu       sync.Mutex
	results  []result
	fallback result
	calls    []time.Time
}

func (s *scriptedSource) Name() string { return "scripted" }

func (s *scriptedSource) Fetch(context.Context) (position.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, time.Now())
	res := s.fallback
	if len(s.results) > 0 {
		res = s.results[0]
		s.results = s.results[1:]
	}
	return res.pos, res.err
}

func (s *scriptedSource) callTimes() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.calls...)
}

type blockingSource struct {
	release chan struct{}
	pos     position.Position
	calls   atomic.Int32
}

func (b *blockingSource) Name() string { return "blocking" }

func (b *blockingSource) Fetch(context.Context) (position.Position, error) {
	b.calls.Add(1)
	<-b.release
	return b.pos, nil
}

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *counter) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type testRecorder struct {
	mu        sync.Mutex
	succeeded int
	failed    map[string]int
}

func (r *testRecorder) FetchSucceeded(string, time.Duration, uint64) {
	r.mu.Lock()
	r.succeeded++
	r.mu.Unlock()
}

func (r *testRecorder) FetchFailed(_ string, kind string, _ time.Duration) {
	r.mu.Lock()
	if r.failed == nil {
		r.failed = make(map[string]int)
	}
	r.failed[kind]++
	r.mu.Unlock()
}

func (r *testRecorder) counts(kind string) (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.succeeded, r.failed[kind]
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}
