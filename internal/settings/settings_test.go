// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package settings

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/MorningAppLabs/LapBook/internal/store"
)

func TestLoadMissingYieldsDefaults(t *testing.T) {
	st := store.NewMemoryStore()
	got := Load(context.Background(), st)
	if got != Defaults() {
		t.Errorf("Load on empty store: got %+v, want defaults", got)
	}
}

func TestLoadStoredWins(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	if err := st.Set(ctx, store.DomainSettings, "", []byte(`{"theme":"dark","font_size":20}`)); err != nil {
		t.Fatal(err)
	}
	got := Load(ctx, st)
	if got.Theme != ThemeDark {
		t.Errorf("Theme: got %q, want dark", got.Theme)
	}
	if got.FontSize != 20 {
		t.Errorf("FontSize: got %d, want 20", got.FontSize)
	}
	// Fields absent from the stored object keep their defaults.
	if got.LineSpacing != Defaults().LineSpacing {
		t.Errorf("LineSpacing: got %v, want default", got.LineSpacing)
	}
}

func TestLoadDropsObsoleteKeys(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	if err := st.Set(ctx, store.DomainSettings, "", []byte(`{"theme":"sepia","legacy_zoom":3}`)); err != nil {
		t.Fatal(err)
	}
	s := Load(ctx, st)
	if err := Save(ctx, st, s); err != nil {
		t.Fatal(err)
	}

	data, err := st.Get(ctx, store.DomainSettings, "")
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["legacy_zoom"]; ok {
		t.Error("obsolete key survived a load/save round trip")
	}
	if raw["theme"] != "sepia" {
		t.Errorf("theme: got %v, want sepia", raw["theme"])
	}
}

func TestLoadCorruptYieldsDefaults(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	if err := st.Set(ctx, store.DomainSettings, "", []byte(`{broken`)); err != nil {
		t.Fatal(err)
	}
	if got := Load(ctx, st); got != Defaults() {
		t.Errorf("corrupt settings: got %+v, want defaults", got)
	}
}

func TestAppearance(t *testing.T) {
	dark := Settings{Theme: ThemeDark}.Appearance()
	light := Settings{Theme: ThemeLight}.Appearance()
	if dark == light {
		t.Error("dark and light appearances should differ")
	}
	unknown := Settings{Theme: Theme("neon")}.Appearance()
	if unknown != light {
		t.Error("unknown theme should fall back to the light appearance")
	}
}
