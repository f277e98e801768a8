// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nathan-osman/go-sunrise"
	"github.com/vorlif/humanize"
	"github.com/vorlif/humanize/locale/de"
	"github.com/vorlif/spreak"
	"github.com/wneessen/go-moonphase"

	"github.com/wneessen/iss-tracker/internal/geocode"
	"github.com/wneessen/iss-tracker/internal/position"
	"github.com/wneessen/iss-tracker/internal/weather"
)

// Class values describe the light conditions below the satellite.
const (
	ClassDay     = "day"
	ClassNight   = "night"
	ClassUnknown = "unknown"
)

// Input is everything a label render is derived from. It holds copies only, so
// rendering never reaches back into shared state.
type Input struct {
	Snapshot   position.Snapshot
	Interval   time.Duration
	TileSource string
	Weather    *weather.Data
	Location   *geocode.Address
	Now        time.Time
}

// Label is a single caption/value pair as shown next to the map.
type Label struct {
	Caption string
	Value   string
}

// Labels is the rendered text shown by a map surface.
type Labels struct {
	Title   string
	Class   string
	Entries []Label
}

// Value returns the value of the label with the given caption.
func (l Labels) Value(caption string) (string, bool) {
	for _, entry := range l.Entries {
		if entry.Caption == caption {
			return entry.Value, true
		}
	}
	return "", false
}

// Lines returns the labels as "caption: value" lines.
func (l Labels) Lines() []string {
	lines := make([]string, 0, len(l.Entries))
	for _, entry := range l.Entries {
		lines = append(lines, entry.Caption+": "+entry.Value)
	}
	return lines
}

type Presenter struct {
	localizer *spreak.Localizer
	humanizer *humanize.Humanizer
}

func New(localizer *spreak.Localizer) (*Presenter, error) {
	if localizer == nil {
		return nil, errors.New("localizer is required")
	}
	collection, err := humanize.New(humanize.WithLocale(de.New()))
	if err != nil {
		return nil, fmt.Errorf("failed to create humanizer: %w", err)
	}
	return &Presenter{
		localizer: localizer,
		humanizer: collection.CreateHumanizer(localizer.Language()),
	}, nil
}

// Labels renders the label set for the given input.
func (p *Presenter) Labels(in Input) Labels {
	if in.Now.IsZero() {
		in.Now = time.Now()
	}
	pos := in.Snapshot.Position
	isDay, known := p.daytime(pos, in.Weather, in.Now)
	labels := Labels{
		Title: fmt.Sprintf("ISS %.4f, %.4f", pos.Latitude, pos.Longitude),
		Class: ClassUnknown,
	}

	dayNight := p.localizer.Get("Unknown")
	if known {
		labels.Class = ClassNight
		dayNight = p.localizer.Get("Night")
		if isDay {
			labels.Class = ClassDay
			dayNight = p.localizer.Get("Day")
		}
	}

	lastUpdate := "-"
	if !in.Snapshot.UpdatedAt.IsZero() {
		lastUpdate = p.humanizer.NaturalTime(in.Snapshot.UpdatedAt)
	}

	phase := moonphase.New(in.Now).PhaseName()
	labels.Entries = []Label{
		{p.localizer.Get("Latitude"), fmt.Sprintf("%.4f", pos.Latitude)},
		{p.localizer.Get("Longitude"), fmt.Sprintf("%.4f", pos.Longitude)},
		{p.localizer.Get("Count"), strconv.FormatUint(in.Snapshot.Count, 10)},
		{
			p.localizer.Get("Update interval"),
			strconv.Itoa(int(in.Interval.Seconds())) + " " + p.localizer.Get("seconds"),
		},
		{p.localizer.Get("Tile server"), in.TileSource},
		{p.localizer.Get("Last update"), lastUpdate},
		{p.localizer.Get("Day/Night"), dayNight},
		{p.localizer.Get("Moonphase"), strings.TrimSpace(MoonPhaseIcon[phase] + " " + p.moonPhase(phase))},
	}
	if in.Location != nil {
		labels.Entries = append(labels.Entries, Label{p.localizer.Get("Over"), p.region(*in.Location)})
	}
	if in.Weather != nil {
		labels.Entries = append(labels.Entries, p.weatherLabels(in.Weather.Current, isDay)...)
	}
	return labels
}

func (p *Presenter) region(addr geocode.Address) string {
	if !addr.AddressFound || addr.Region() == "" {
		return "🌊 " + p.localizer.Get("Open water")
	}
	if flag := CountryFlag(addr.CountryCode); flag != "" {
		return flag + " " + addr.Region()
	}
	return addr.Region()
}

// CountryFlag returns the flag emoji for a two-letter ISO 3166-1 country code, or an
// empty string for anything else.
func CountryFlag(code string) string {
	if len(code) != 2 {
		return ""
	}
	var flag strings.Builder
	for _, r := range strings.ToUpper(code) {
		if r < 'A' || r > 'Z' {
			return ""
		}
		flag.WriteRune(0x1F1E6 + r - 'A')
	}
	return flag.String()
}

func (p *Presenter) weatherLabels(inst weather.Instant, isDay bool) []Label {
	condition := p.localizer.Get("Unknown")
	if raw, ok := WMOWeatherCodes[inst.WeatherCode]; ok {
		condition = p.localizer.Get(raw)
	}
	if icon, ok := WMOWeatherIcons[inst.WeatherCode][isDay]; ok {
		condition = icon + " " + condition
	}
	compass := CompassDirection(inst.WindDirection)

	labels := []Label{
		{p.localizer.Get("Condition"), condition},
		{p.localizer.Get("Temperature"), floatFormat(inst.Temperature, 1) + inst.Units.Temperature},
		{
			p.localizer.Get("Wind speed"),
			fmt.Sprintf("%s %s %s %s", floatFormat(inst.WindSpeed, 1), inst.Units.WindSpeed,
				windDirIcons[compass], compass),
		},
	}
	if inst.RelativeHumidity.IsSet() {
		labels = append(labels, Label{
			p.localizer.Get("Humidity"),
			floatFormat(inst.RelativeHumidity.Value(), 0) + inst.Units.Humidity,
		})
	}
	if inst.PressureMSL.IsSet() {
		labels = append(labels, Label{
			p.localizer.Get("Pressure"),
			floatFormat(inst.PressureMSL.Value(), 1) + " " + inst.Units.Pressure,
		})
	}
	if inst.CloudCover.IsSet() {
		labels = append(labels, Label{
			p.localizer.Get("Cloud cover"),
			floatFormat(inst.CloudCover.Value(), 0) + inst.Units.CloudCover,
		})
	}
	return labels
}

// daytime reports whether the sun is up at the given position. Polar day and night leave
// sunrise and sunset unset, in which case the weather data decides if it knows.
func (p *Presenter) daytime(pos position.Position, data *weather.Data, now time.Time) (isDay, known bool) {
	utc := now.UTC()
	rise, set := sunrise.SunriseSunset(pos.Latitude, pos.Longitude, utc.Year(), utc.Month(), utc.Day())
	if !rise.IsZero() && !set.IsZero() {
		if set.Before(rise) {
			return utc.After(rise) || utc.Before(set), true
		}
		return utc.After(rise) && utc.Before(set), true
	}
	if data != nil && data.Current.IsDay.IsSet() {
		return data.Current.IsDay.Value(), true
	}
	return false, false
}

func (p *Presenter) moonPhase(phase string) string {
	if raw, ok := moonPhaseNames[phase]; ok {
		return p.localizer.Get(raw)
	}
	return phase
}

// CompassDirection converts a bearing in degrees into one of eight compass points.
func CompassDirection(deg float64) string {
	points := []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return points[int(math.Floor((deg+22.5)/45))%len(points)]
}

func floatFormat(val float64, precision int) string {
	pow := math.Pow(10, float64(precision))
	return fmt.Sprintf("%.*f", precision, math.Trunc(val*pow)/pow)
}
