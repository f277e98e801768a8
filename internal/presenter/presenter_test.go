// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"strings"
	"testing"
	"time"

	"github.com/vorlif/spreak"

	"github.com/wneessen/iss-tracker/internal/geocode"
	"github.com/wneessen/iss-tracker/internal/i18n"
	"github.com/wneessen/iss-tracker/internal/position"
	"github.com/wneessen/iss-tracker/internal/vartype"
	"github.com/wneessen/iss-tracker/internal/weather"
)

var (
	noon     = time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	midnight = time.Date(2026, 3, 20, 0, 30, 0, 0, time.UTC)
	wthr     = weather.Instant{
		Temperature:      20.0,
		WeatherCode:      3,
		WindDirection:    92,
		WindSpeed:        10.0,
		RelativeHumidity: vartype.NewVariable(87.0),
		PressureMSL:      vartype.NewVariable(1013.2),
		CloudCover:       vartype.NewVariable(100.0),
		IsDay:            vartype.NewVariable(true),
		Units: weather.Units{
			Temperature: "°C",
			WindSpeed:   "km/h",
			Humidity:    "%",
			Pressure:    "hPa",
			CloudCover:  "%",
		},
	}
)

func TestNew(t *testing.T) {
	t.Run("creating a new presenter succeeds", func(t *testing.T) {
		pres, err := New(testLang(t))
		if err != nil {
			t.Fatalf("failed to create presenter: %s", err)
		}
		if pres == nil {
			t.Fatal("expected presenter to be non-nil")
		}
	})
	t.Run("creating a presenter without localizer fails", func(t *testing.T) {
		if _, err := New(nil); err == nil {
			t.Fatal("expected presenter creation to fail")
		}
	})
}

func TestPresenter_Labels(t *testing.T) {
	pres := testPresenter(t)
	snap := position.Snapshot{
		Position:  position.Position{Latitude: 51.50735, Longitude: -0.12776},
		Count:     3,
		UpdatedAt: noon.Add(-time.Second * 5),
	}

	t.Run("position labels", func(t *testing.T) {
		labels := pres.Labels(Input{Snapshot: snap, Interval: time.Second * 10, TileSource: "OpenStreetMap", Now: noon})
		tests := []struct {
			caption string
			want    string
		}{
			{"Latitude", "51.5074"},
			{"Longitude", "-0.1278"},
			{"Count", "3"},
			{"Update interval", "10 seconds"},
			{"Tile server", "OpenStreetMap"},
		}
		for _, tc := range tests {
			t.Run(tc.caption, func(t *testing.T) {
				got, ok := labels.Value(tc.caption)
				if !ok {
					t.Fatalf("expected label %q to be present", tc.caption)
				}
				if got != tc.want {
					t.Errorf("expected label %q to be %q, got %q", tc.caption, tc.want, got)
				}
			})
		}
		if labels.Title != "ISS 51.5074, -0.1278" {
			t.Errorf("unexpected title: %q", labels.Title)
		}
		if _, ok := labels.Value("Temperature"); ok {
			t.Error("expected no weather labels without weather data")
		}
		if got, _ := labels.Value("Last update"); got == "-" || got == "" {
			t.Errorf("expected humanized last update time, got %q", got)
		}
		if got, _ := labels.Value("Moonphase"); got == "" {
			t.Error("expected moon phase label to be set")
		}
	})
	t.Run("initial snapshot has no update time", func(t *testing.T) {
		labels := pres.Labels(Input{Snapshot: position.Snapshot{}, Interval: time.Second * 10, Now: noon})
		if got, _ := labels.Value("Last update"); got != "-" {
			t.Errorf("expected placeholder for missing update time, got %q", got)
		}
		if got, _ := labels.Value("Count"); got != "0" {
			t.Errorf("expected count to be 0, got %q", got)
		}
	})
	t.Run("weather labels", func(t *testing.T) {
		data := weather.NewData(snap.Position)
		data.Current = wthr
		labels := pres.Labels(Input{Snapshot: snap, Interval: time.Second * 10, Weather: data, Now: noon})
		tests := []struct {
			caption string
			want    string
		}{
			{"Condition", "Overcast"},
			{"Temperature", "20.0°C"},
			{"Humidity", "87%"},
			{"Wind speed", "10.0 km/h → E"},
			{"Pressure", "1013.2 hPa"},
			{"Cloud cover", "100%"},
		}
		for _, tc := range tests {
			t.Run(tc.caption, func(t *testing.T) {
				got, ok := labels.Value(tc.caption)
				if !ok {
					t.Fatalf("expected label %q to be present", tc.caption)
				}
				if !strings.Contains(got, tc.want) {
					t.Errorf("expected label %q to contain %q, got %q", tc.caption, tc.want, got)
				}
			})
		}
	})
	t.Run("missing hourly metrics are omitted", func(t *testing.T) {
		data := weather.NewData(snap.Position)
		data.Current = wthr
		data.Current.PressureMSL.Reset()
		data.Current.CloudCover.Reset()
		labels := pres.Labels(Input{Snapshot: snap, Weather: data, Now: noon})
		if _, ok := labels.Value("Pressure"); ok {
			t.Error("expected no pressure label without pressure data")
		}
		if _, ok := labels.Value("Cloud cover"); ok {
			t.Error("expected no cloud cover label without cloud cover data")
		}
		if _, ok := labels.Value("Humidity"); !ok {
			t.Error("expected humidity label to be present")
		}
	})
	t.Run("region below the satellite", func(t *testing.T) {
		tests := []struct {
			name string
			addr geocode.Address
			want string
		}{
			{
				"land", geocode.Address{AddressFound: true, Country: "Germany", CountryCode: "de", State: "Berlin"},
				"🇩🇪 Berlin, Germany",
			},
			{"land without country code", geocode.Address{AddressFound: true, Country: "Antarctica"}, "Antarctica"},
			{"open water", geocode.Address{}, "🌊 Open water"},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				labels := pres.Labels(Input{Snapshot: snap, Location: &tc.addr, Now: noon})
				got, ok := labels.Value("Over")
				if !ok {
					t.Fatal("expected region label to be present")
				}
				if got != tc.want {
					t.Errorf("expected region %q, got %q", tc.want, got)
				}
			})
		}
		if _, ok := pres.Labels(Input{Snapshot: snap, Now: noon}).Value("Over"); ok {
			t.Error("expected no region label without geocoding result")
		}
	})
	t.Run("unknown weather codes", func(t *testing.T) {
		data := weather.NewData(snap.Position)
		data.Current = wthr
		data.Current.WeatherCode = 42
		labels := pres.Labels(Input{Snapshot: snap, Weather: data, Now: noon})
		if got, _ := labels.Value("Condition"); got != "Unknown" {
			t.Errorf("expected unknown condition, got %q", got)
		}
	})
	t.Run("lines are caption value pairs", func(t *testing.T) {
		labels := pres.Labels(Input{Snapshot: snap, Interval: time.Second * 10, TileSource: "OpenStreetMap", Now: noon})
		lines := labels.Lines()
		if len(lines) != len(labels.Entries) {
			t.Fatalf("expected %d lines, got %d", len(labels.Entries), len(lines))
		}
		if lines[0] != "Latitude: 51.5074" {
			t.Errorf("unexpected first line: %q", lines[0])
		}
	})
}

func TestPresenter_Labels_class(t *testing.T) {
	pres := testPresenter(t)
	equator := position.Snapshot{Position: position.Position{}}
	pole := position.Snapshot{Position: position.Position{Latitude: 89.5, Longitude: 0}}
	polarNight := time.Date(2026, 12, 21, 12, 0, 0, 0, time.UTC)

	t.Run("day at noon on the equator", func(t *testing.T) {
		if got := pres.Labels(Input{Snapshot: equator, Now: noon}).Class; got != ClassDay {
			t.Errorf("expected class %q, got %q", ClassDay, got)
		}
	})
	t.Run("night after midnight on the equator", func(t *testing.T) {
		if got := pres.Labels(Input{Snapshot: equator, Now: midnight}).Class; got != ClassNight {
			t.Errorf("expected class %q, got %q", ClassNight, got)
		}
	})
	t.Run("polar night without weather is unknown", func(t *testing.T) {
		if got := pres.Labels(Input{Snapshot: pole, Now: polarNight}).Class; got != ClassUnknown {
			t.Errorf("expected class %q, got %q", ClassUnknown, got)
		}
	})
	t.Run("polar night falls back to weather data", func(t *testing.T) {
		data := weather.NewData(pole.Position)
		data.Current.IsDay.Set(false)
		if got := pres.Labels(Input{Snapshot: pole, Weather: data, Now: polarNight}).Class; got != ClassNight {
			t.Errorf("expected class %q, got %q", ClassNight, got)
		}
	})
	t.Run("polar night with unknown weather daytime is unknown", func(t *testing.T) {
		data := weather.NewData(pole.Position)
		if got := pres.Labels(Input{Snapshot: pole, Weather: data, Now: polarNight}).Class; got != ClassUnknown {
			t.Errorf("expected class %q, got %q", ClassUnknown, got)
		}
	})
}

func TestCountryFlag(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"de", "🇩🇪"},
		{"US", "🇺🇸"},
		{"", ""},
		{"deu", ""},
		{"d1", ""},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			if got := CountryFlag(tc.code); got != tc.want {
				t.Errorf("expected flag %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCompassDirection(t *testing.T) {
	tests := []struct {
		deg  float64
		want string
	}{
		{0, "N"},
		{22, "N"},
		{23, "NE"},
		{90, "E"},
		{180, "S"},
		{225, "SW"},
		{359, "N"},
		{360, "N"},
		{-90, "W"},
		{450, "E"},
	}
	for _, tc := range tests {
		if got := CompassDirection(tc.deg); got != tc.want {
			t.Errorf("expected %v° to be %s, got %s", tc.deg, tc.want, got)
		}
	}
}

func TestFloatFormat(t *testing.T) {
	tests := []struct {
		val       float64
		precision int
		want      string
	}{
		{20.19, 1, "20.1"},
		{87.9, 0, "87"},
		{-3.456, 2, "-3.45"},
	}
	for _, tc := range tests {
		if got := floatFormat(tc.val, tc.precision); got != tc.want {
			t.Errorf("expected %s, got %s", tc.want, got)
		}
	}
}

func testLang(t *testing.T) *spreak.Localizer {
	t.Helper()
	lang, err := i18n.New("en")
	if err != nil {
		t.Fatalf("failed to create i18n provider: %s", err)
	}
	return lang
}

func testPresenter(t *testing.T) *Presenter {
	t.Helper()
	pres, err := New(testLang(t))
	if err != nil {
		t.Fatalf("failed to create presenter: %s", err)
	}
	return pres
}
