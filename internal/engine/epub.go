// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/simp-lee/epub"

	"github.com/MorningAppLabs/LapBook/internal/library"
)

// EPUB renders reflowable EPUB content via the simp-lee/epub parser.
// Locators are content-fragment strings of the form
// "epubpos(<chapter-href>:<line>)": anchored to the chapter href so they
// survive reopening the same file, and treated as opaque everywhere
// outside this adapter.
type EPUB struct {
	path     string
	book     *epub.Book
	chapters []epub.Chapter
	meta     library.Metadata
	cover    []byte
}

// NewEPUB creates an unopened EPUB engine for path.
func NewEPUB(path string) *EPUB {
	return &EPUB{path: path}
}

func (e *EPUB) Open(ctx context.Context) error {
	book, err := epub.Open(e.path)
	if err != nil {
		return err
	}
	e.book = book
	e.chapters = book.ContentChapters()
	e.meta = metadataFromOPF(book.Metadata())

	// Cover failure is not an open failure; the caller treats a nil
	// cover as "no cover".
	if cover, err := book.Cover(); err == nil {
		e.cover = cover.Data
	}
	return nil
}

// metadataFromOPF flattens the parsed Dublin Core metadata. An ISBN
// identifier is preferred over UUIDs and URIs, which vary between
// editions of the same file.
func metadataFromOPF(md epub.Metadata) library.Metadata {
	var out library.Metadata
	if len(md.Titles) > 0 {
		out.Title = md.Titles[0]
	}
	names := make([]string, 0, len(md.Authors))
	for _, a := range md.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	out.Author = strings.Join(names, ", ")

	for _, id := range md.Identifiers {
		if strings.EqualFold(id.Scheme, "isbn") {
			out.Identifier = id.Value
			return out
		}
	}
	if len(md.Identifiers) > 0 {
		out.Identifier = md.Identifiers[0].Value
	}
	return out
}

func (e *EPUB) Metadata() library.Metadata { return e.meta }

func (e *EPUB) Cover() []byte { return e.cover }

func (e *EPUB) Units() int { return len(e.chapters) }

func (e *EPUB) Unit(i int) (string, error) {
	if i < 0 || i >= len(e.chapters) {
		return "", fmt.Errorf("chapter %d out of range", i)
	}
	text, err := e.chapters[i].TextContent()
	if err != nil {
		return "", fmt.Errorf("read chapter %d: %w", i, err)
	}
	return text, nil
}

// Title returns the TOC title for unit i, or empty if the chapter is not
// in the table of contents.
func (e *EPUB) Title(i int) string {
	if i < 0 || i >= len(e.chapters) {
		return ""
	}
	return e.chapters[i].Title
}

func (e *EPUB) LocatorFor(unit, offset int) library.Locator {
	if unit < 0 || unit >= len(e.chapters) {
		return ""
	}
	return library.Locator(fmt.Sprintf("epubpos(%s:%d)", e.chapters[unit].Href, offset))
}

func (e *EPUB) Resolve(loc library.Locator) (int, int, error) {
	s := string(loc)
	if !strings.HasPrefix(s, "epubpos(") || !strings.HasSuffix(s, ")") {
		return 0, 0, fmt.Errorf("not an epub locator: %q", loc)
	}
	inner := s[len("epubpos(") : len(s)-1]
	sep := strings.LastIndex(inner, ":")
	if sep < 0 {
		return 0, 0, fmt.Errorf("malformed epub locator: %q", loc)
	}
	href := inner[:sep]
	offset, err := strconv.Atoi(inner[sep+1:])
	if err != nil || offset < 0 {
		return 0, 0, fmt.Errorf("malformed epub locator: %q", loc)
	}
	for i, ch := range e.chapters {
		if ch.Href == href {
			return i, offset, nil
		}
	}
	// The chapter no longer exists; the file was likely replaced.
	return 0, 0, fmt.Errorf("stale epub locator: %q", loc)
}

func (e *EPUB) Fraction(unit int) float64 {
	if len(e.chapters) == 0 {
		return 0
	}
	return float64(unit+1) / float64(len(e.chapters))
}

func (e *EPUB) Destroy() {
	if e.book != nil {
		e.book.Close()
		e.book = nil
	}
	e.chapters = nil
	e.cover = nil
}
