// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/MorningAppLabs/LapBook/internal/store"
)

// DefaultDebounce is the quiet window for coalescing progress writes.
const DefaultDebounce = 2 * time.Second

// recentLimit caps the "recently opened" view.
const recentLimit = 4

// MetadataFunc extracts document metadata and an optional cover image.
// Implemented by the engine adapters; a nil cover means no cover was
// found, which is not an error.
type MetadataFunc func(ctx context.Context, path string, ft FileType) (Metadata, []byte, error)

// coverPather is implemented by stores that back covers with real files.
type coverPather interface {
	Path(domain store.Domain, key string) string
}

// Index owns the library of known books. It is the single in-memory copy
// of the index; all mutations go through it and are persisted either
// immediately (explicit user actions) or through the per-path debounce
// (progress updates).
type Index struct {
	mu       sync.Mutex
	store    store.Store
	readMeta MetadataFunc
	entries  []*Entry
	deb      *debouncer
}

// NewIndex creates an index backed by st. readMeta is consulted when a
// new path is added; window is the progress-write debounce (use
// DefaultDebounce outside tests).
func NewIndex(st store.Store, readMeta MetadataFunc, window time.Duration) *Index {
	ix := &Index{store: st, readMeta: readMeta}
	ix.deb = newDebouncer(window, ix.save)
	return ix
}

// Load reads the persisted index. Any failure (missing file, unreadable
// disk, corrupt JSON) yields an empty library; the error is logged for
// real I/O problems and never surfaced.
func (ix *Index) Load(ctx context.Context) {
	data, err := ix.store.Get(ctx, store.DomainLibrary, "")
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("library: load index: %v", err)
		}
		return
	}
	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("library: parse index: %v", err)
		return
	}
	// Indexes written before book keys existed carry none; fall back to
	// the entry id.
	for _, e := range entries {
		if e.BookKey == "" {
			e.BookKey = e.ID
		}
	}
	ix.mu.Lock()
	ix.entries = entries
	ix.mu.Unlock()
}

// AddOrOpen returns the entry for path, creating one if the path is not
// yet in the library. For a new path it extracts metadata and a cover via
// the engine, resolves the entry identifier, and persists the entry at
// the head of the index. The second return reports whether a new entry
// was created. Hints, when non-nil, override extracted title and author.
func (ix *Index) AddOrOpen(ctx context.Context, path string, hints *Metadata) (Entry, bool, error) {
	ix.mu.Lock()
	if e := ix.findByPath(path); e != nil {
		out := *e
		ix.mu.Unlock()
		return out, false, nil
	}
	ix.mu.Unlock()

	ft := ClassifyPath(path)

	// Blocking engine-delegated read, outside the lock.
	meta, cover, err := ix.readMeta(ctx, path, ft)
	if err != nil {
		return Entry{}, false, fmt.Errorf("read metadata: %w", err)
	}
	if hints != nil {
		if hints.Title != "" {
			meta.Title = hints.Title
		}
		if hints.Author != "" {
			meta.Author = hints.Author
		}
	}
	if meta.Title == "" {
		meta.Title = titleFromPath(path)
	}

	now := time.Now()
	e := &Entry{
		ID:       ResolveForAdd(meta, now),
		BookKey:  Resolve(meta),
		Path:     path,
		Title:    meta.Title,
		Author:   meta.Author,
		FileType: ft,
		AddedAt:  now,
	}
	if e.BookKey == "" {
		// Nothing stable to key on; highlights and cover will not
		// survive removing and re-adding this book.
		e.BookKey = e.ID
	}

	// Cover extraction failure is non-fatal; the entry just has no cover.
	if len(cover) > 0 {
		if err := ix.store.Set(ctx, store.DomainCovers, e.BookKey, cover); err != nil {
			log.Printf("library: save cover for %s: %v", e.BookKey, err)
		} else if p, ok := ix.store.(coverPather); ok {
			e.CoverPath = p.Path(store.DomainCovers, e.BookKey)
		}
	}

	ix.mu.Lock()
	// Re-check: another add for the same path may have won the race while
	// the engine read was in flight.
	if existing := ix.findByPath(path); existing != nil {
		out := *existing
		ix.mu.Unlock()
		return out, false, nil
	}
	ix.entries = append([]*Entry{e}, ix.entries...)
	out := *e
	ix.mu.Unlock()

	ix.save()
	return out, true, nil
}

// RecordProgress updates the entry's last position and progress and
// schedules a debounced write. frac is the fractional position in
// [0, 1]; it is clamped and rounded to an integer percentage. Progress
// events for unknown paths are dropped.
func (ix *Index) RecordProgress(path string, loc Locator, frac float64) {
	pct := int(math.Round(frac * 100))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	ix.mu.Lock()
	e := ix.findByPath(path)
	if e == nil {
		ix.mu.Unlock()
		return
	}
	e.LastPosition = loc
	e.Progress = pct
	ix.mu.Unlock()

	ix.deb.Schedule(path)
}

// MarkOpened stamps the entry's last-opened time and persists
// immediately.
func (ix *Index) MarkOpened(path string) {
	now := time.Now()
	ix.mu.Lock()
	e := ix.findByPath(path)
	if e == nil {
		ix.mu.Unlock()
		return
	}
	e.LastOpened = &now
	ix.mu.Unlock()

	ix.save()
}

// EditMetadata overwrites title and author and persists immediately.
func (ix *Index) EditMetadata(id, title, author string) error {
	ix.mu.Lock()
	e := ix.findByID(id)
	if e == nil {
		ix.mu.Unlock()
		return fmt.Errorf("book not found: %s", id)
	}
	e.Title = title
	e.Author = author
	ix.mu.Unlock()

	ix.save()
	return nil
}

// Remove deletes the entry and persists immediately. The entry's cover
// file and highlight set are left on disk untouched.
func (ix *Index) Remove(id string) error {
	ix.mu.Lock()
	kept := make([]*Entry, 0, len(ix.entries))
	found := false
	for _, e := range ix.entries {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		ix.mu.Unlock()
		return fmt.Errorf("book not found: %s", id)
	}
	ix.entries = kept
	ix.mu.Unlock()

	ix.save()
	return nil
}

// Get returns the entry with the given identifier.
func (ix *Index) Get(id string) (Entry, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if e := ix.findByID(id); e != nil {
		return *e, true
	}
	return Entry{}, false
}

// GetByPath returns the entry for the given filesystem path.
func (ix *Index) GetByPath(path string) (Entry, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if e := ix.findByPath(path); e != nil {
		return *e, true
	}
	return Entry{}, false
}

// All returns the full index in index order, most recently added first.
// Opening a book does not reorder this view.
func (ix *Index) All() []Entry {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	out := make([]Entry, len(ix.entries))
	for i, e := range ix.entries {
		out[i] = *e
	}
	return out
}

// Recent returns the entries that have been opened, most recent first,
// capped at four.
func (ix *Index) Recent() []Entry {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	var opened []*Entry
	for _, e := range ix.entries {
		if e.LastOpened != nil {
			opened = append(opened, e)
		}
	}
	// Insertion sort by last-opened descending; the list is tiny.
	for i := 1; i < len(opened); i++ {
		j := i
		for j > 0 && opened[j-1].LastOpened.Before(*opened[j].LastOpened) {
			opened[j-1], opened[j] = opened[j], opened[j-1]
			j--
		}
	}
	if len(opened) > recentLimit {
		opened = opened[:recentLimit]
	}
	out := make([]Entry, len(opened))
	for i, e := range opened {
		out[i] = *e
	}
	return out
}

// Search returns entries whose title or author contains the query,
// case-insensitively, in index order.
func (ix *Index) Search(query string) []Entry {
	q := strings.ToLower(query)
	ix.mu.Lock()
	defer ix.mu.Unlock()
	var out []Entry
	for _, e := range ix.entries {
		if strings.Contains(strings.ToLower(e.Title), q) ||
			strings.Contains(strings.ToLower(e.Author), q) {
			out = append(out, *e)
		}
	}
	return out
}

// Flush cancels any pending debounced write and persists the current
// state if one was pending. Callers invoke it on shutdown so the trailing
// progress update is never lost.
func (ix *Index) Flush() {
	ix.deb.Flush()
}

// save persists the whole index. Failures are logged; the in-memory
// state stays authoritative and the next mutation retries naturally.
func (ix *Index) save() {
	ix.mu.Lock()
	data, err := json.Marshal(ix.entries)
	ix.mu.Unlock()
	if err != nil {
		log.Printf("library: marshal index: %v", err)
		return
	}
	if err := ix.store.Set(context.Background(), store.DomainLibrary, "", data); err != nil {
		log.Printf("library: save index: %v", err)
	}
}

func (ix *Index) findByPath(path string) *Entry {
	for _, e := range ix.entries {
		if e.Path == path {
			return e
		}
	}
	return nil
}

func (ix *Index) findByID(id string) *Entry {
	for _, e := range ix.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
