// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/iss-tracker/internal/geocode"
	"github.com/wneessen/iss-tracker/internal/http"
	"github.com/wneessen/iss-tracker/internal/position"
)

const (
	APIReverseEndpoint = "https://nominatim.openstreetmap.org/reverse"
	APITimeout         = time.Second * 10
	name               = "osm-nominatim"

	// zoomState limits reverse results to state level
	zoomState = 5
)

type Nominatim struct {
	http *http.Client
	lang language.Tag
}

type ReverseResult struct {
	Error       string  `json:"error"`
	APILat      string  `json:"lat"`
	APILon      string  `json:"lon"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Address     Address `json:"address"`
}

type Address struct {
	State        string `json:"state"`
	ISO31662Lvl4 string `json:"ISO3166-2-lvl4"`
	Country      string `json:"country"`
	CountryCode  string `json:"country_code"`
}

func New(client *http.Client, lang language.Tag) (*Nominatim, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	return &Nominatim{
		lang: lang,
		http: client,
	}, nil
}

func (n *Nominatim) Name() string {
	return name
}

// Reverse looks up the address at pos. Nominatim answers points without an address, like
// the open sea, with an error message and HTTP 200, which is returned as an address that
// was not found.
func (n *Nominatim) Reverse(ctx context.Context, pos position.Position) (geocode.Address, error) {
	var result ReverseResult
	var err error

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", fmt.Sprintf("%f", pos.Latitude))
	query.Set("lon", fmt.Sprintf("%f", pos.Longitude))
	query.Set("zoom", strconv.Itoa(zoomState))
	query.Set("accept-language", n.lang.String())

	if _, err = n.http.GetWithTimeout(ctx, APIReverseEndpoint, &result, query, nil, APITimeout); err != nil {
		return geocode.Address{}, fmt.Errorf("failed to fetch reverse address details from Nominatim API: %w", err)
	}
	if result.Error != "" {
		return geocode.Address{Latitude: pos.Latitude, Longitude: pos.Longitude}, nil
	}

	address := geocode.Address{
		AddressFound: true,
		DisplayName:  result.DisplayName,
		Country:      result.Address.Country,
		CountryCode:  result.Address.CountryCode,
		State:        result.Address.State,
	}
	address.Latitude, err = strconv.ParseFloat(result.APILat, 64)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to parse latitude from Nominatim API response: %w", err)
	}
	address.Longitude, err = strconv.ParseFloat(result.APILon, 64)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to parse longitude from Nominatim API response: %w", err)
	}

	return address, nil
}
