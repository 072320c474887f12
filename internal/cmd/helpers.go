// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

// Package cmd wires the library, session, and reader surfaces into the
// lapbook CLI.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MorningAppLabs/LapBook/internal/library"
)

// resolveEntry finds a library entry by identifier, by filesystem path,
// or as a last resort by title search. Exactly one match is required for
// the search fallback so a vague query never edits the wrong book.
func resolveEntry(idx *library.Index, ref string) (library.Entry, error) {
	if e, ok := idx.Get(ref); ok {
		return e, nil
	}
	if abs, err := filepath.Abs(expandHome(ref)); err == nil {
		if e, ok := idx.GetByPath(abs); ok {
			return e, nil
		}
	}
	matches := idx.Search(ref)
	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) > 1 {
		return library.Entry{}, fmt.Errorf("%q matches %d books; use an id from 'lapbook list'", ref, len(matches))
	}
	return library.Entry{}, fmt.Errorf("book not found: %s", ref)
}

// expandHome resolves a leading ~ against the user's home directory.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// formatWhen renders an optional timestamp for list output.
func formatWhen(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format("2006-01-02 15:04")
}
