// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package library

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FileType is the closed set of supported document formats.
type FileType string

const (
	FileTypeEPUB FileType = "epub"
	FileTypePDF  FileType = "pdf"
)

// ClassifyPath maps a file path to a FileType by extension,
// case-insensitively. Anything that is not ".pdf" is classified as EPUB;
// the EPUB engine rejects content it cannot parse, so unknown extensions
// surface a format error there rather than here.
func ClassifyPath(path string) FileType {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return FileTypePDF
	}
	return FileTypeEPUB
}

// Locator is a position within a document, meaningful only to the engine
// that produced it. For EPUB it is an opaque content-fragment string; for
// PDF it is a decimal page number. The library layer never inspects EPUB
// locators.
type Locator string

// PageLocator builds a PDF locator for a 1-based page number.
func PageLocator(page int) Locator {
	return Locator(strconv.Itoa(page))
}

// Page parses the locator as a PDF page number. The second return is
// false when the locator is empty, non-numeric, or not positive.
func (l Locator) Page() (int, bool) {
	n, err := strconv.Atoi(string(l))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Metadata is the document metadata reported by a rendering engine.
type Metadata struct {
	Title      string
	Author     string
	Identifier string // publisher-supplied, e.g. ISBN; may be empty
}

// Entry is one book in the library index. ID is unique within the
// index; BookKey namespaces the entry's highlight set and cover file
// and, unlike ID, carries no add-time suffix, so removing and re-adding
// the same book reattaches both.
type Entry struct {
	ID           string     `json:"id"`
	BookKey      string     `json:"book_key"`
	Path         string     `json:"path"`
	Title        string     `json:"title"`
	Author       string     `json:"author,omitempty"`
	FileType     FileType   `json:"file_type"`
	CoverPath    string     `json:"cover_path,omitempty"`
	AddedAt      time.Time  `json:"added_at"`
	LastOpened   *time.Time `json:"last_opened,omitempty"`
	LastPosition Locator    `json:"last_position,omitempty"`
	Progress     int        `json:"progress"` // 0-100
}

// Color is a highlight color.
type Color string

const (
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorPink   Color = "pink"
	ColorOrange Color = "orange"
)

// Valid reports whether c is one of the known highlight colors.
func (c Color) Valid() bool {
	switch c {
	case ColorYellow, ColorGreen, ColorBlue, ColorPink, ColorOrange:
		return true
	}
	return false
}

// Highlight is a single user annotation on a book. CFIRange is only
// populated for EPUB books; the PDF engine has no range addressing.
type Highlight struct {
	ID        string    `json:"id"`
	CFIRange  string    `json:"cfi_range,omitempty"`
	Text      string    `json:"text"`
	Color     Color     `json:"color"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created"`
}
