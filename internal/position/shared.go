// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package position

import (
	"sync"
	"time"
)

// Snapshot is a consistent copy of the shared position state.
type Snapshot struct {
	Position
	Count     uint64
	UpdatedAt time.Time
}

// Shared is the single cell shared between the poller and the UI owner. Only the poller
// writes to it, readers always get a copy taken under the lock.
type Shared struct {
	mu        sync.RWMutex
	current   Position
	count     uint64
	updatedAt time.Time
}

// NewShared returns a Shared seeded with initial. The seed is not counted as a sample.
func NewShared(initial Position) *Shared {
	return &Shared{current: initial, updatedAt: time.Now()}
}

// Write replaces the current position and increments the sample count.
func (s *Shared) Write(pos Position) {
	s.mu.Lock()
	s.current = pos
	s.count++
	s.updatedAt = time.Now()
	s.mu.Unlock()
}

// Snapshot returns the current position together with its sample count.
func (s *Shared) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Position: s.current, Count: s.count, UpdatedAt: s.updatedAt}
}
