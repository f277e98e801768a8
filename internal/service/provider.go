// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vorlif/spreak"
	"golang.org/x/text/language"

	"github.com/wneessen/iss-tracker/internal/config"
	"github.com/wneessen/iss-tracker/internal/geocode"
	nominatim "github.com/wneessen/iss-tracker/internal/geocode/provider/osm-nominatim"
	"github.com/wneessen/iss-tracker/internal/http"
	"github.com/wneessen/iss-tracker/internal/logger"
	"github.com/wneessen/iss-tracker/internal/position"
	"github.com/wneessen/iss-tracker/internal/position/provider/opennotify"
	"github.com/wneessen/iss-tracker/internal/position/provider/wheretheiss"
	"github.com/wneessen/iss-tracker/internal/surface/terminal"
	"github.com/wneessen/iss-tracker/internal/surface/waybar"
	"github.com/wneessen/iss-tracker/internal/template"
	"github.com/wneessen/iss-tracker/internal/tracker"
	"github.com/wneessen/iss-tracker/internal/weather"
	openmeteo "github.com/wneessen/iss-tracker/internal/weather/provider/open-meteo"
)

const (
	geocodeCacheTTLHit  = time.Hour * 24
	geocodeCacheTTLMiss = time.Hour
)

func selectPositionSource(conf *config.Config, log *logger.Logger) (source position.Source, err error) {
	switch strings.ToLower(conf.Position.Provider) {
	case "wheretheiss":
		source, err = wheretheiss.New(http.New(log), conf.Position.SatelliteID, conf.Units)
		if err != nil {
			return source, fmt.Errorf("failed to create wheretheiss.at position provider: %w", err)
		}
	case "open-notify":
		source, err = opennotify.New(http.New(log))
		if err != nil {
			return source, fmt.Errorf("failed to create open-notify position provider: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported position provider: %s", conf.Position.Provider)
	}
	return source, nil
}

func selectWeatherProvider(conf *config.Config, log *logger.Logger) (provider weather.Provider, err error) {
	provider, err = openmeteo.New(log, conf.Units)
	if err != nil {
		return provider, fmt.Errorf("failed to create Open-Meteo weather provider: %w", err)
	}
	return provider, nil
}

func selectGeocoder(log *logger.Logger, t *spreak.Localizer) (geocode.Geocoder, error) {
	lang := language.English
	if t != nil {
		lang = t.Language()
	}
	coder, err := nominatim.New(http.New(log), lang)
	if err != nil {
		return nil, fmt.Errorf("failed to create Nominatim geocoder: %w", err)
	}
	return geocode.NewCachedGeocoder(coder, geocodeCacheTTLHit, geocodeCacheTTLMiss), nil
}

func selectSurface(conf *config.Config, t *spreak.Localizer, out io.Writer) (tracker.Surface, error) {
	switch strings.ToLower(conf.Output.Surface) {
	case "terminal":
		return terminal.New(out, terminal.Options{
			Width:  conf.Window.Width,
			Height: conf.Window.Height,
			Zoom:   conf.Map.Zoom,
			Clear:  true,
		}), nil
	case "waybar":
		tpls, err := template.New(conf, t)
		if err != nil {
			return nil, fmt.Errorf("failed to create output templates: %w", err)
		}
		return waybar.New(out, tpls), nil
	default:
		return nil, fmt.Errorf("unsupported output surface: %s", conf.Output.Surface)
	}
}
