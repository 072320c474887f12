// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

// Package settings holds the reader's user preferences: a small typed
// bag persisted as a single JSON object. Loading reconciles stored
// values over compiled-in defaults field by field, so keys that no
// longer exist in the schema are dropped on the next save rather than
// carried forward.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/MorningAppLabs/LapBook/internal/store"
)

// Theme names a reader color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeSepia Theme = "sepia"
)

// Settings are the effective reader preferences.
type Settings struct {
	Theme       Theme   `json:"theme"`
	FontSize    int     `json:"font_size"`
	LineSpacing float64 `json:"line_spacing"`
	ReaderWidth int     `json:"reader_width"`
	HideRecent  bool    `json:"hide_recent"`
}

// stored mirrors Settings with pointer fields so that absent keys are
// distinguishable from zero values during reconciliation.
type stored struct {
	Theme       *Theme   `json:"theme"`
	FontSize    *int     `json:"font_size"`
	LineSpacing *float64 `json:"line_spacing"`
	ReaderWidth *int     `json:"reader_width"`
	HideRecent  *bool    `json:"hide_recent"`
}

// Defaults returns the compiled-in preference values.
func Defaults() Settings {
	return Settings{
		Theme:       ThemeLight,
		FontSize:    16,
		LineSpacing: 1.5,
		ReaderWidth: 80,
		HideRecent:  false,
	}
}

// Load reads the persisted settings and reconciles them over the
// defaults: a stored value wins for every field it defines, defaults
// fill the rest. Missing or corrupt data yields the defaults.
func Load(ctx context.Context, st store.Store) Settings {
	eff := Defaults()
	data, err := st.Get(ctx, store.DomainSettings, "")
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("settings: load: %v", err)
		}
		return eff
	}
	var s stored
	if err := json.Unmarshal(data, &s); err != nil {
		log.Printf("settings: parse: %v", err)
		return eff
	}
	if s.Theme != nil {
		eff.Theme = *s.Theme
	}
	if s.FontSize != nil {
		eff.FontSize = *s.FontSize
	}
	if s.LineSpacing != nil {
		eff.LineSpacing = *s.LineSpacing
	}
	if s.ReaderWidth != nil {
		eff.ReaderWidth = *s.ReaderWidth
	}
	if s.HideRecent != nil {
		eff.HideRecent = *s.HideRecent
	}
	return eff
}

// Save persists the full settings object.
func Save(ctx context.Context, st store.Store, s Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return st.Set(ctx, store.DomainSettings, "", data)
}

// Appearance is the derived terminal color pair for a theme.
type Appearance struct {
	Foreground string
	Background string
}

// Appearance maps the theme to concrete colors for the reader surface.
func (s Settings) Appearance() Appearance {
	switch s.Theme {
	case ThemeDark:
		return Appearance{Foreground: "#e0e0e0", Background: "#1a1a2e"}
	case ThemeSepia:
		return Appearance{Foreground: "#5b4636", Background: "#f4ecd8"}
	default:
		return Appearance{Foreground: "#222222", Background: "#fdfdfd"}
	}
}
