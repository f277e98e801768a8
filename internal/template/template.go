// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package template renders the user-configurable text, alt text and tooltip of the
// waybar output.
package template

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/spreak"

	"github.com/wneessen/iss-tracker/internal/config"
	"github.com/wneessen/iss-tracker/internal/presenter"
)

// DisplayData is the data that is available in the templates.
type DisplayData struct {
	Title      string
	Class      string
	Latitude   float64
	Longitude  float64
	TileSource string
	Entries    []presenter.Label
}

// Label returns the value of the entry with the given caption, or an empty string.
// Captions are localized, so templates usually pass them through loc first.
func (d DisplayData) Label(caption string) string {
	for _, entry := range d.Entries {
		if entry.Caption == caption {
			return entry.Value
		}
	}
	return ""
}

type Templates struct {
	Text      *template.Template
	AltText   *template.Template
	Tooltip   *template.Template
	localizer *spreak.Localizer
}

func New(conf *config.Config, loc *spreak.Localizer) (*Templates, error) {
	if conf == nil {
		return nil, errors.New("config is required")
	}
	if loc == nil {
		return nil, errors.New("localizer is required")
	}
	tpls := &Templates{localizer: loc}

	var err error
	if tpls.Text, err = tpls.parse("text", conf.Templates.Text); err != nil {
		return nil, err
	}
	if tpls.AltText, err = tpls.parse("alt_text", conf.Templates.AltText); err != nil {
		return nil, err
	}
	if tpls.Tooltip, err = tpls.parse("tooltip", conf.Templates.Tooltip); err != nil {
		return nil, err
	}
	return tpls, nil
}

// Render executes the text, alt text and tooltip templates with data.
func (t *Templates) Render(data DisplayData) (text, alt, tooltip string, err error) {
	if text, err = execute(t.Text, data); err != nil {
		return "", "", "", err
	}
	if alt, err = execute(t.AltText, data); err != nil {
		return "", "", "", err
	}
	if tooltip, err = execute(t.Tooltip, data); err != nil {
		return "", "", "", err
	}
	return text, alt, tooltip, nil
}

func (t *Templates) parse(name, text string) (*template.Template, error) {
	tpl, err := template.New(name).Funcs(t.templateFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", strings.ReplaceAll(name, "_", " "), err)
	}
	return tpl, nil
}

func execute(tpl *template.Template, data DisplayData) (string, error) {
	buf := bytes.NewBuffer(nil)
	if err := tpl.Execute(buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", tpl.Name(), err)
	}
	return buf.String(), nil
}

func (t *Templates) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"floatFormat": floatFormat,
		"loc":         t.loc,
		"lc":          strings.ToLower,
		"uc":          strings.ToUpper,
		"pad":         EmojiWithSpace,
	}
}

func (t *Templates) loc(val string) string {
	return t.localizer.Get(val)
}

func floatFormat(val float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, val)
}

// EmojiWithSpace pads an emoji so that the following text starts in the same column
// regardless of the emoji's cell width.
func EmojiWithSpace(emoji string) string {
	width := runewidth.StringWidth(emoji)
	return fmt.Sprintf("%s%s", emoji, strings.Repeat(" ", max(2-width, 0)+1))
}
