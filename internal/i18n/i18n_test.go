// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestNew(t *testing.T) {
	t.Run("new i18n provider with empty locale string succeeds", func(t *testing.T) {
		provider, err := New("")
		if err != nil {
			t.Fatalf("failed to create i18n provider: %s", err)
		}
		if provider == nil {
			t.Fatal("expected i18n provider to be non-nil")
		}
	})
	t.Run("english source strings are returned unchanged", func(t *testing.T) {
		provider, err := New("en")
		if err != nil {
			t.Fatalf("failed to create i18n provider: %s", err)
		}
		if got := provider.Get("Latitude"); got != "Latitude" {
			t.Errorf("expected %q, got %q", "Latitude", got)
		}
	})
	t.Run("german translations are loaded", func(t *testing.T) {
		provider, err := New("de")
		if err != nil {
			t.Fatalf("failed to create i18n provider: %s", err)
		}
		if provider.Language() != language.German {
			t.Errorf("expected language to be %s, got %s", language.German, provider.Language())
		}
		if got := provider.Get("Latitude"); got != "Breitengrad" {
			t.Errorf("expected %q, got %q", "Breitengrad", got)
		}
	})
}
