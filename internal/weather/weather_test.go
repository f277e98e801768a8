// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package weather

import (
	"testing"
	"time"

	"github.com/wneessen/iss-tracker/internal/position"
)

func TestNewData(t *testing.T) {
	pos := position.Position{Latitude: 12.5, Longitude: -45.25}
	data := NewData(pos)
	if data == nil {
		t.Fatal("expected data to be non-nil")
	}
	if data.Position != pos {
		t.Errorf("expected position to be %s, got %s", pos, data.Position)
	}
	if data.GeneratedAt.IsZero() {
		t.Error("expected generation time to be set")
	}
}

func TestData_Age(t *testing.T) {
	data := NewData(position.Position{})
	data.GeneratedAt = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := data.GeneratedAt.Add(time.Minute * 3)
	if age := data.Age(now); age != time.Minute*3 {
		t.Errorf("expected age to be 3m, got %s", age)
	}
}
