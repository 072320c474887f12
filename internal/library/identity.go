// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package library

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Resolve derives the stable book key used to namespace highlight sets
// and cover files. A publisher-supplied identifier wins when present;
// otherwise the key is a slug of title and author. Resolve is
// deterministic: the same metadata always yields the same key, which is
// what keeps highlights attached across sessions and across removing
// and re-adding the same book. It returns "" when the metadata yields
// nothing stable; callers fall back to the entry id, accepting that
// highlights stored under it do not survive a re-add.
func Resolve(meta Metadata) string {
	if id := strings.TrimSpace(meta.Identifier); id != "" {
		return id
	}
	return slugify(meta.Title + " " + meta.Author)
}

// ResolveForAdd derives the index identifier for a new library entry.
// Unlike Resolve, slug-derived identifiers get a timestamp suffix so
// that two differently-identified books with the same title and author
// never collide in the index. Publisher identifiers are used as-is.
func ResolveForAdd(meta Metadata, now time.Time) string {
	if id := strings.TrimSpace(meta.Identifier); id != "" {
		return id
	}
	if slug := slugify(meta.Title + " " + meta.Author); slug != "" {
		return fmt.Sprintf("%s-%d", slug, now.UnixMilli())
	}
	return fmt.Sprintf("book-%d", now.UnixNano())
}

// slugify lowercases s and collapses every run of non-alphanumeric
// characters into a single hyphen.
func slugify(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		} else {
			pending = true
		}
	}
	return b.String()
}
