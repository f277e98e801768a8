// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package opennotify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/iss-tracker/internal/http"
	"github.com/wneessen/iss-tracker/internal/position"
)

const (
	name        = "open-notify"
	apiEndpoint = "http://api.open-notify.org/iss-now.json"
	apiTimeout  = time.Second * 10
	apiSuccess  = "success"
)

type OpenNotify struct {
	http     *http.Client
	endpoint string
}

// open-notify reports the coordinates as strings
type response struct {
	Message     string `json:"message"`
	Timestamp   int64  `json:"timestamp"`
	ISSPosition struct {
		Latitude  position.Degrees `json:"latitude"`
		Longitude position.Degrees `json:"longitude"`
	} `json:"iss_position"`
}

// New returns a position source for the open-notify.org ISS API. It only knows the ISS.
func New(http *http.Client) (*OpenNotify, error) {
	if http == nil {
		return nil, fmt.Errorf("http client is required")
	}
	return &OpenNotify{http: http, endpoint: apiEndpoint}, nil
}

func (o *OpenNotify) Name() string {
	return name
}

func (o *OpenNotify) Fetch(ctx context.Context) (position.Position, error) {
	res := new(response)
	if _, err := o.http.GetWithTimeout(ctx, o.endpoint, res, nil, nil, apiTimeout); err != nil {
		if errors.Is(err, http.ErrDecode) {
			return position.Position{}, fmt.Errorf("%w: open-notify returned an invalid response: %w",
				position.ErrParse, err)
		}
		return position.Position{}, fmt.Errorf("%w: failed to retrieve position from open-notify: %w",
			position.ErrNetwork, err)
	}
	if res.Message != apiSuccess {
		return position.Position{}, fmt.Errorf("%w: open-notify returned message %q", position.ErrParse,
			res.Message)
	}

	return position.FromDegrees(res.ISSPosition.Latitude, res.ISSPosition.Longitude)
}
