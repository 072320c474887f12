// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package library

import (
	"strings"
	"testing"
	"time"
)

func TestResolvePrefersIdentifier(t *testing.T) {
	meta := Metadata{Title: "Foo", Author: "Bar", Identifier: "isbn123"}
	if got := Resolve(meta); got != "isbn123" {
		t.Errorf("Resolve: got %q, want %q", got, "isbn123")
	}
}

func TestResolveStable(t *testing.T) {
	meta := Metadata{Title: "A Tale of Two Cities", Author: "Charles Dickens"}
	first := Resolve(meta)
	second := Resolve(meta)
	if first != second {
		t.Errorf("Resolve not stable: %q vs %q", first, second)
	}
	if first != "a-tale-of-two-cities-charles-dickens" {
		t.Errorf("slug: got %q", first)
	}
}

func TestResolveSlugCollapsesRuns(t *testing.T) {
	meta := Metadata{Title: "Hello,  World!! (2nd ed.)", Author: ""}
	if got := Resolve(meta); got != "hello-world-2nd-ed" {
		t.Errorf("slug: got %q", got)
	}
}

func TestResolveEmptyMetadataYieldsNothing(t *testing.T) {
	if got := Resolve(Metadata{}); got != "" {
		t.Errorf("Resolve of empty metadata: got %q, want empty (callers fall back to the entry id)", got)
	}
	if got := Resolve(Metadata{Title: "!!!", Author: "..."}); got != "" {
		t.Errorf("Resolve of unsluggable metadata: got %q, want empty", got)
	}
}

func TestResolveForAddSuffixesSlugs(t *testing.T) {
	meta := Metadata{Title: "Foo", Author: "Bar"}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	got := ResolveForAdd(meta, now)
	if !strings.HasPrefix(got, "foo-bar-") {
		t.Errorf("add identifier: got %q, want foo-bar-<ts>", got)
	}
	if got == Resolve(meta) {
		t.Error("add identifier must differ from the stable identifier for slug fallbacks")
	}

	// Two adds of identically-titled but distinct books must not collide.
	later := now.Add(time.Millisecond)
	if ResolveForAdd(meta, now) == ResolveForAdd(meta, later) {
		t.Error("add identifiers collide across distinct add times")
	}
}

func TestResolveForAddKeepsPublisherIdentifier(t *testing.T) {
	meta := Metadata{Title: "Foo", Identifier: "isbn123"}
	if got := ResolveForAdd(meta, time.Now()); got != "isbn123" {
		t.Errorf("add identifier: got %q, want isbn123", got)
	}
}
