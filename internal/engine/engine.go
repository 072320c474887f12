// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

// Package engine adapts the third-party rendering libraries to a single
// interface the session controller and reader surface can drive. Each
// engine owns its locator scheme: the EPUB engine produces opaque
// content-fragment strings, the PDF engine decimal page numbers. A
// locator is only valid against the engine type that produced it.
package engine

import (
	"context"
	"fmt"

	"github.com/MorningAppLabs/LapBook/internal/library"
)

// Engine is the contract between the core and a rendering engine. A
// document is divided into units (EPUB chapters, PDF pages); the engine
// translates between units and locators and reports fractional position.
type Engine interface {
	// Open parses the document. It must be called before any other
	// method and returns a format error for unreadable content.
	Open(ctx context.Context) error

	// Metadata reports title, author, and publisher identifier. Fields
	// the document does not declare are empty.
	Metadata() library.Metadata

	// Cover returns the cover image bytes, or nil when the document has
	// none the engine could find.
	Cover() []byte

	// Units is the number of content units (chapters or pages).
	Units() int

	// Unit returns the plain text of the 0-based unit.
	Unit(i int) (string, error)

	// LocatorFor encodes a unit and an intra-unit offset as a locator.
	LocatorFor(unit, offset int) library.Locator

	// Resolve decodes a locator back to a unit and offset. It returns an
	// error for locators that are stale or foreign to this engine; the
	// caller falls back to the document start.
	Resolve(loc library.Locator) (unit, offset int, err error)

	// Fraction reports the fractional reading position after unit,
	// in (0, 1].
	Fraction(unit int) float64

	// Destroy releases the engine's resources. Safe to call twice.
	Destroy()
}

// New constructs the engine for the given file type. The document is not
// touched until Open.
func New(path string, ft library.FileType) Engine {
	if ft == library.FileTypePDF {
		return NewPDF(path)
	}
	return NewEPUB(path)
}

// ReadMetadata opens the appropriate engine just long enough to extract
// metadata and a cover image. It satisfies library.MetadataFunc.
func ReadMetadata(ctx context.Context, path string, ft library.FileType) (library.Metadata, []byte, error) {
	eng := New(path, ft)
	if err := eng.Open(ctx); err != nil {
		return library.Metadata{}, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer eng.Destroy()
	return eng.Metadata(), eng.Cover(), nil
}
