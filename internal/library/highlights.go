// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package library

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MorningAppLabs/LapBook/internal/store"
)

// Highlights owns the highlight set for one open book, keyed by the book
// identifier rather than the file path so the set survives moves and
// renames. The whole set is written on every mutation; sets are small,
// user-authored data and the simplicity is deliberate.
type Highlights struct {
	mu     sync.Mutex
	store  store.Store
	bookID string
	items  []*Highlight
}

// OpenHighlights loads the persisted set for bookID. A missing or
// unparseable set yields an empty one; load failures are never surfaced.
func OpenHighlights(ctx context.Context, st store.Store, bookID string) *Highlights {
	h := &Highlights{store: st, bookID: bookID}
	data, err := st.Get(ctx, store.DomainHighlights, bookID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("highlights: load %s: %v", bookID, err)
		}
		return h
	}
	if err := json.Unmarshal(data, &h.items); err != nil {
		log.Printf("highlights: parse %s: %v", bookID, err)
		h.items = nil
	}
	return h
}

// BookID returns the identifier this set is stored under.
func (h *Highlights) BookID() string { return h.bookID }

// Create appends a new highlight and persists the set. The returned
// record carries the generated id and timestamp so the caller can render
// it immediately.
func (h *Highlights) Create(cfiRange, text string, color Color, note string) Highlight {
	hl := &Highlight{
		ID:        uuid.New().String(),
		CFIRange:  cfiRange,
		Text:      text,
		Color:     color,
		Note:      note,
		CreatedAt: time.Now(),
	}
	h.mu.Lock()
	h.items = append(h.items, hl)
	h.mu.Unlock()

	h.save()
	return *hl
}

// Delete removes the highlight with the given id and persists the set.
// Deleting an absent id is a no-op for the data but still persists, so
// the call is idempotent from the caller's point of view.
func (h *Highlights) Delete(id string) {
	h.mu.Lock()
	kept := make([]*Highlight, 0, len(h.items))
	for _, hl := range h.items {
		if hl.ID != id {
			kept = append(kept, hl)
		}
	}
	h.items = kept
	h.mu.Unlock()

	h.save()
}

// List returns a snapshot of the current set in creation order. Display
// ordering is the caller's choice.
func (h *Highlights) List() []Highlight {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Highlight, len(h.items))
	for i, hl := range h.items {
		out[i] = *hl
	}
	return out
}

// save serializes the full set. Failures are logged; in-memory state
// stays authoritative and the next mutation retries.
func (h *Highlights) save() {
	h.mu.Lock()
	items := h.items
	if items == nil {
		items = []*Highlight{}
	}
	data, err := json.Marshal(items)
	h.mu.Unlock()
	if err != nil {
		log.Printf("highlights: marshal %s: %v", h.bookID, err)
		return
	}
	if err := h.store.Set(context.Background(), store.DomainHighlights, h.bookID, data); err != nil {
		log.Printf("highlights: save %s: %v", h.bookID, err)
	}
}
