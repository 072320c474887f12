// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/MorningAppLabs/LapBook/internal/library"
)

// PDF renders fixed-layout documents via the ledongthuc/pdf reader.
// Units are pages; locators are 1-based decimal page numbers.
type PDF struct {
	path  string
	file  *os.File
	rd    *pdf.Reader
	pages int
	meta  library.Metadata
}

// NewPDF creates an unopened PDF engine for path.
func NewPDF(path string) *PDF {
	return &PDF{path: path}
}

// Open parses the document. The underlying parser panics on some
// malformed files, so the parse is fenced with a recover and reported as
// a format error.
func (p *PDF) Open(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	f, rd, err := pdf.Open(p.path)
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	p.file = f
	p.rd = rd
	p.pages = rd.NumPage()
	p.meta = pdfInfo(rd)
	return nil
}

// pdfInfo pulls title and author from the document information
// dictionary. Many PDFs carry none; the caller falls back to the
// filename. PDFs have no publisher identifier, so the book identity
// always comes from the title/author slug.
func pdfInfo(rd *pdf.Reader) library.Metadata {
	defer func() { recover() }()

	var meta library.Metadata
	info := rd.Trailer().Key("Info")
	if info.IsNull() {
		return meta
	}
	meta.Title = info.Key("Title").Text()
	meta.Author = info.Key("Author").Text()
	return meta
}

func (p *PDF) Metadata() library.Metadata { return p.meta }

// Cover always returns nil: the PDF engine has no cover support.
func (p *PDF) Cover() []byte { return nil }

func (p *PDF) Units() int { return p.pages }

func (p *PDF) Unit(i int) (text string, err error) {
	if i < 0 || i >= p.pages {
		return "", fmt.Errorf("page %d out of range", i+1)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read page %d: %v", i+1, r)
		}
	}()

	page := p.rd.Page(i + 1)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d missing", i+1)
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("read page %d: %w", i+1, err)
	}
	return text, nil
}

func (p *PDF) LocatorFor(unit, offset int) library.Locator {
	// Fixed layout: the page is the position, intra-page offset is
	// not tracked.
	return library.PageLocator(unit + 1)
}

func (p *PDF) Resolve(loc library.Locator) (int, int, error) {
	page, ok := loc.Page()
	if !ok {
		return 0, 0, fmt.Errorf("not a page locator: %q", loc)
	}
	if p.pages > 0 && page > p.pages {
		return 0, 0, fmt.Errorf("page %d beyond document end (%d pages)", page, p.pages)
	}
	return page - 1, 0, nil
}

func (p *PDF) Fraction(unit int) float64 {
	if p.pages == 0 {
		return 0
	}
	return float64(unit+1) / float64(p.pages)
}

func (p *PDF) Destroy() {
	if p.file != nil {
		p.file.Close()
		p.file = nil
	}
	p.rd = nil
	p.pages = 0
}
