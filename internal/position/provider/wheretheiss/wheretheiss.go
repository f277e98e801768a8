// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package wheretheiss

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wneessen/iss-tracker/internal/http"
	"github.com/wneessen/iss-tracker/internal/position"
)

const (
	name        = "wheretheiss"
	apiEndpoint = "https://api.wheretheiss.at/v1/satellites/%d"
	apiTimeout  = time.Second * 10
)

type WhereTheISS struct {
	http     *http.Client
	endpoint string
	units    string
}

type response struct {
	Name       string           `json:"name"`
	ID         int              `json:"id"`
	Latitude   position.Degrees `json:"latitude"`
	Longitude  position.Degrees `json:"longitude"`
	Altitude   float64          `json:"altitude"`
	Velocity   float64          `json:"velocity"`
	Visibility string           `json:"visibility"`
	Timestamp  int64            `json:"timestamp"`
	Units      string           `json:"units"`
}

// New returns a position source for the wheretheiss.at API. The units parameter
// (metric or imperial) selects the unit system the API reports altitude and velocity in.
func New(http *http.Client, satelliteID int, units string) (*WhereTheISS, error) {
	if http == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if satelliteID <= 0 {
		return nil, fmt.Errorf("invalid satellite id: %d", satelliteID)
	}
	apiUnits := "kilometers"
	if strings.EqualFold(units, "imperial") {
		apiUnits = "miles"
	}
	return &WhereTheISS{
		http:     http,
		endpoint: fmt.Sprintf(apiEndpoint, satelliteID),
		units:    apiUnits,
	}, nil
}

func (w *WhereTheISS) Name() string {
	return name
}

func (w *WhereTheISS) Fetch(ctx context.Context) (position.Position, error) {
	res := new(response)
	query := url.Values{}
	query.Set("units", w.units)

	if _, err := w.http.GetWithTimeout(ctx, w.endpoint, res, query, nil, apiTimeout); err != nil {
		if errors.Is(err, http.ErrDecode) {
			return position.Position{}, fmt.Errorf("%w: wheretheiss.at returned an invalid response: %w",
				position.ErrParse, err)
		}
		return position.Position{}, fmt.Errorf("%w: failed to retrieve position from wheretheiss.at: %w",
			position.ErrNetwork, err)
	}

	return position.FromDegrees(res.Latitude, res.Longitude)
}
