// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package testhelper provides shared helpers for the package tests.
package testhelper

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

const (
	// TestOnlineAPIURL is a real endpoint used by the integration tests.
	TestOnlineAPIURL = "https://api.wheretheiss.at/v1/satellites/25544"

	// TestCacheTTL is long enough to outlive any single test.
	TestCacheTTL = time.Hour

	integrationEnv = "ISSTRACKER_INTEGRATION_TESTS"
)

// MockRoundTripper is a http.RoundTripper that answers every request with Fn.
type MockRoundTripper struct {
	Fn func(*http.Request) (*http.Response, error)
}

func (m MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Fn(req)
}

// JSONResponder returns a RoundTripper function that answers with the given status code and body.
func JSONResponder(code int, body string) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: code,
			Body:       io.NopCloser(bytes.NewBufferString(body)),
			Header:     http.Header{"Content-Type": []string{"application/json"}},
		}, nil
	}
}

// PerformIntegrationTests skips the calling test unless online integration tests are enabled.
func PerformIntegrationTests(t *testing.T) {
	t.Helper()
	if os.Getenv(integrationEnv) == "" {
		t.Skipf("skipping online integration test, set %s to enable", integrationEnv)
	}
}
