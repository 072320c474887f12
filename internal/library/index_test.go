// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package library

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MorningAppLabs/LapBook/internal/store"
)

// countingStore wraps a MemoryStore and counts writes per domain.
type countingStore struct {
	*store.MemoryStore
	mu     sync.Mutex
	writes map[store.Domain]int
}

func newCountingStore() *countingStore {
	return &countingStore{
		MemoryStore: store.NewMemoryStore(),
		writes:      make(map[store.Domain]int),
	}
}

func (s *countingStore) Set(ctx context.Context, domain store.Domain, key string, data []byte) error {
	s.mu.Lock()
	s.writes[domain]++
	s.mu.Unlock()
	return s.MemoryStore.Set(ctx, domain, key, data)
}

func (s *countingStore) writeCount(domain store.Domain) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes[domain]
}

func staticMeta(meta Metadata, cover []byte) MetadataFunc {
	return func(ctx context.Context, path string, ft FileType) (Metadata, []byte, error) {
		return meta, cover, nil
	}
}

func TestAddOrOpenNewEntry(t *testing.T) {
	st := newCountingStore()
	ix := NewIndex(st, staticMeta(Metadata{Title: "Foo", Author: "Bar", Identifier: "isbn123"}, nil), DefaultDebounce)
	ix.Load(context.Background())

	e, added, err := ix.AddOrOpen(context.Background(), "/books/a.epub", nil)
	if err != nil {
		t.Fatalf("AddOrOpen: %v", err)
	}
	if !added {
		t.Fatal("expected new entry")
	}
	if e.ID != "isbn123" {
		t.Errorf("ID: got %q, want %q", e.ID, "isbn123")
	}
	if e.Progress != 0 {
		t.Errorf("Progress: got %d, want 0", e.Progress)
	}
	if e.LastPosition != "" {
		t.Errorf("LastPosition: got %q, want empty", e.LastPosition)
	}
	if e.FileType != FileTypeEPUB {
		t.Errorf("FileType: got %q, want epub", e.FileType)
	}
	if got := len(ix.All()); got != 1 {
		t.Errorf("index length: got %d, want 1", got)
	}
}

func TestAddOrOpenIdempotent(t *testing.T) {
	st := newCountingStore()
	ix := NewIndex(st, staticMeta(Metadata{Title: "Foo", Identifier: "isbn123"}, nil), DefaultDebounce)

	first, added, err := ix.AddOrOpen(context.Background(), "/books/a.epub", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Fatal("first add should create an entry")
	}
	second, added, err := ix.AddOrOpen(context.Background(), "/books/a.epub", nil)
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Fatal("second add should return the existing entry")
	}
	if first.ID != second.ID {
		t.Errorf("IDs differ across re-open: %q vs %q", first.ID, second.ID)
	}
	if got := len(ix.All()); got != 1 {
		t.Errorf("index duplicated: length %d, want 1", got)
	}
}

func TestAddOrOpenMetadataError(t *testing.T) {
	st := newCountingStore()
	wantErr := errors.New("not an epub")
	ix := NewIndex(st, func(ctx context.Context, path string, ft FileType) (Metadata, []byte, error) {
		return Metadata{}, nil, wantErr
	}, DefaultDebounce)

	_, _, err := ix.AddOrOpen(context.Background(), "/books/bad.epub", nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("AddOrOpen: got %v, want wrapped %v", err, wantErr)
	}
	if got := len(ix.All()); got != 0 {
		t.Errorf("failed add left %d entries in index", got)
	}
}

func TestAddOrOpenCoverFailureNonFatal(t *testing.T) {
	st := newCountingStore()
	ix := NewIndex(st, staticMeta(Metadata{Title: "Foo", Identifier: "isbn123"}, nil), DefaultDebounce)

	e, _, err := ix.AddOrOpen(context.Background(), "/books/a.epub", nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.CoverPath != "" {
		t.Errorf("CoverPath: got %q, want empty when no cover extracted", e.CoverPath)
	}
}

func TestAddOrOpenFallbackTitle(t *testing.T) {
	st := newCountingStore()
	ix := NewIndex(st, staticMeta(Metadata{}, nil), DefaultDebounce)

	e, _, err := ix.AddOrOpen(context.Background(), "/books/strange-book.pdf", nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.Title != "strange-book" {
		t.Errorf("Title: got %q, want filename-derived %q", e.Title, "strange-book")
	}
	if e.FileType != FileTypePDF {
		t.Errorf("FileType: got %q, want pdf", e.FileType)
	}
}

func TestRecordProgressDebounce(t *testing.T) {
	st := newCountingStore()
	ix := NewIndex(st, staticMeta(Metadata{Title: "Foo", Identifier: "isbn123"}, nil), 30*time.Millisecond)

	if _, _, err := ix.AddOrOpen(context.Background(), "/books/a.epub", nil); err != nil {
		t.Fatal(err)
	}
	before := st.writeCount(store.DomainLibrary)

	// A burst of progress events within the quiet window.
	ix.RecordProgress("/books/a.epub", "epubcfi(/6/2!/4/2,/1:0,/1:5)", 0.10)
	ix.RecordProgress("/books/a.epub", "epubcfi(/6/4!/4/2,/1:0,/1:8)", 0.25)
	ix.RecordProgress("/books/a.epub", "epubcfi(/6/4!/4/2,/1:0,/1:10)", 0.42)

	time.Sleep(120 * time.Millisecond)

	if got := st.writeCount(store.DomainLibrary) - before; got != 1 {
		t.Errorf("debounced writes: got %d, want exactly 1", got)
	}

	data, err := st.Get(context.Background(), store.DomainLibrary, "")
	if err != nil {
		t.Fatal(err)
	}
	var persisted []Entry
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatal(err)
	}
	if persisted[0].Progress != 42 {
		t.Errorf("persisted progress: got %d, want 42 (last event wins)", persisted[0].Progress)
	}
	if persisted[0].LastPosition != "epubcfi(/6/4!/4/2,/1:0,/1:10)" {
		t.Errorf("persisted position: got %q", persisted[0].LastPosition)
	}
}

func TestFlushWritesPendingState(t *testing.T) {
	st := newCountingStore()
	ix := NewIndex(st, staticMeta(Metadata{Title: "Foo", Identifier: "isbn123"}, nil), time.Hour)

	if _, _, err := ix.AddOrOpen(context.Background(), "/books/a.epub", nil); err != nil {
		t.Fatal(err)
	}
	before := st.writeCount(store.DomainLibrary)

	ix.RecordProgress("/books/a.epub", "epubcfi(/6/4!/4/2)", 0.5)
	ix.Flush()

	if got := st.writeCount(store.DomainLibrary) - before; got != 1 {
		t.Errorf("flush writes: got %d, want 1", got)
	}

	// Flushing again with nothing pending must not write.
	ix.Flush()
	if got := st.writeCount(store.DomainLibrary) - before; got != 1 {
		t.Errorf("idle flush wrote: got %d writes, want 1", got)
	}
}

func TestRecordProgressClamps(t *testing.T) {
	st := newCountingStore()
	ix := NewIndex(st, staticMeta(Metadata{Title: "Foo", Identifier: "isbn123"}, nil), time.Hour)

	if _, _, err := ix.AddOrOpen(context.Background(), "/books/a.epub", nil); err != nil {
		t.Fatal(err)
	}

	ix.RecordProgress("/books/a.epub", "loc", 1.7)
	e, _ := ix.GetByPath("/books/a.epub")
	if e.Progress != 100 {
		t.Errorf("clamp high: got %d, want 100", e.Progress)
	}

	ix.RecordProgress("/books/a.epub", "loc", -0.3)
	e, _ = ix.GetByPath("/books/a.epub")
	if e.Progress != 0 {
		t.Errorf("clamp low: got %d, want 0", e.Progress)
	}

	ix.RecordProgress("/books/a.epub", "loc", 0.425)
	e, _ = ix.GetByPath("/books/a.epub")
	if e.Progress != 43 {
		t.Errorf("round: got %d, want 43", e.Progress)
	}
	ix.Flush()
}

func TestRecordProgressUnknownPath(t *testing.T) {
	st := newCountingStore()
	ix := NewIndex(st, staticMeta(Metadata{}, nil), time.Hour)

	ix.RecordProgress("/books/unknown.epub", "loc", 0.5)
	ix.Flush()
	if got := st.writeCount(store.DomainLibrary); got != 0 {
		t.Errorf("progress for unknown path wrote %d times", got)
	}
}

func TestEditMetadataPersistsImmediately(t *testing.T) {
	st := newCountingStore()
	ix := NewIndex(st, staticMeta(Metadata{Title: "Foo", Identifier: "isbn123"}, nil), time.Hour)

	if _, _, err := ix.AddOrOpen(context.Background(), "/books/a.epub", nil); err != nil {
		t.Fatal(err)
	}
	before := st.writeCount(store.DomainLibrary)

	if err := ix.EditMetadata("isbn123", "New Title", "New Author"); err != nil {
		t.Fatal(err)
	}
	if got := st.writeCount(store.DomainLibrary) - before; got != 1 {
		t.Errorf("edit writes: got %d, want 1 immediate write", got)
	}
	e, ok := ix.Get("isbn123")
	if !ok || e.Title != "New Title" || e.Author != "New Author" {
		t.Errorf("edit not applied: %+v", e)
	}

	if err := ix.EditMetadata("missing", "X", "Y"); err == nil {
		t.Error("EditMetadata on missing id should error")
	}
}

func TestRemove(t *testing.T) {
	st := newCountingStore()
	ix := NewIndex(st, staticMeta(Metadata{Title: "Foo", Identifier: "isbn123"}, nil), time.Hour)

	if _, _, err := ix.AddOrOpen(context.Background(), "/books/a.epub", nil); err != nil {
		t.Fatal(err)
	}
	if err := ix.Remove("isbn123"); err != nil {
		t.Fatal(err)
	}
	if got := len(ix.All()); got != 0 {
		t.Errorf("index length after remove: got %d, want 0", got)
	}
	if err := ix.Remove("isbn123"); err == nil {
		t.Error("Remove on missing id should error")
	}
}

func TestBookKeyStableAcrossReAdd(t *testing.T) {
	st := newCountingStore()
	// No publisher identifier, the common case for PDFs.
	ix := NewIndex(st, staticMeta(Metadata{Title: "Lab Notes", Author: "Me"}, nil), time.Hour)

	first, _, err := ix.AddOrOpen(context.Background(), "/books/notes.pdf", nil)
	if err != nil {
		t.Fatal(err)
	}
	if first.BookKey != "lab-notes-me" {
		t.Errorf("BookKey: got %q, want metadata slug %q", first.BookKey, "lab-notes-me")
	}
	if first.ID == first.BookKey {
		t.Error("index id should carry an add-time suffix the book key does not")
	}

	if err := ix.Remove(first.ID); err != nil {
		t.Fatal(err)
	}
	second, _, err := ix.AddOrOpen(context.Background(), "/books/notes.pdf", nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.BookKey != first.BookKey {
		t.Errorf("BookKey after re-add: got %q, want %q", second.BookKey, first.BookKey)
	}
}

func TestBookKeyFallsBackToEntryID(t *testing.T) {
	st := newCountingStore()
	ix := NewIndex(st, staticMeta(Metadata{Title: "!!!"}, nil), time.Hour)

	// An unsluggable title yields no stable key; the entry id fills in.
	e, _, err := ix.AddOrOpen(context.Background(), "/books/a.epub", nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.BookKey == "" {
		t.Error("BookKey must never be empty")
	}
	if e.BookKey != e.ID {
		t.Errorf("BookKey: got %q, want entry id %q", e.BookKey, e.ID)
	}
}

func TestLoadBackfillsMissingBookKey(t *testing.T) {
	st := newCountingStore()
	data := []byte(`[{"id":"isbn123","path":"/books/a.epub","title":"Foo","file_type":"epub","added_at":"2025-01-02T03:04:05Z","progress":0}]`)
	if err := st.Set(context.Background(), store.DomainLibrary, "", data); err != nil {
		t.Fatal(err)
	}

	ix := NewIndex(st, staticMeta(Metadata{}, nil), time.Hour)
	ix.Load(context.Background())
	e, ok := ix.Get("isbn123")
	if !ok {
		t.Fatal("entry missing after load")
	}
	if e.BookKey != "isbn123" {
		t.Errorf("BookKey backfill: got %q, want entry id", e.BookKey)
	}
}

func TestAddOrderMostRecentFirst(t *testing.T) {
	st := newCountingStore()
	n := 0
	ix := NewIndex(st, func(ctx context.Context, path string, ft FileType) (Metadata, []byte, error) {
		n++
		return Metadata{Title: path, Identifier: path}, nil, nil
	}, time.Hour)

	paths := []string{"/books/a.epub", "/books/b.epub", "/books/c.epub"}
	for _, p := range paths {
		if _, _, err := ix.AddOrOpen(context.Background(), p, nil); err != nil {
			t.Fatal(err)
		}
	}
	all := ix.All()
	if all[0].Path != "/books/c.epub" || all[2].Path != "/books/a.epub" {
		t.Errorf("index order: got %q first, want most-recently-added first", all[0].Path)
	}
}

func TestRecentCapAndOrder(t *testing.T) {
	st := newCountingStore()
	ix := NewIndex(st, func(ctx context.Context, path string, ft FileType) (Metadata, []byte, error) {
		return Metadata{Title: path, Identifier: path}, nil, nil
	}, time.Hour)

	paths := []string{"/a.epub", "/b.epub", "/c.epub", "/d.epub", "/e.epub", "/f.epub"}
	for _, p := range paths {
		if _, _, err := ix.AddOrOpen(context.Background(), p, nil); err != nil {
			t.Fatal(err)
		}
	}

	if got := len(ix.Recent()); got != 0 {
		t.Fatalf("Recent before any open: got %d entries, want 0", got)
	}

	for _, p := range paths[:5] {
		ix.MarkOpened(p)
		time.Sleep(2 * time.Millisecond)
	}

	recent := ix.Recent()
	if len(recent) != 4 {
		t.Fatalf("Recent length: got %d, want 4", len(recent))
	}
	if recent[0].Path != "/e.epub" {
		t.Errorf("Recent[0]: got %q, want most recently opened /e.epub", recent[0].Path)
	}

	// Opening must not reorder the all-books view.
	if all := ix.All(); all[0].Path != "/f.epub" {
		t.Errorf("All[0] after opens: got %q, want /f.epub", all[0].Path)
	}
}

func TestLoadCorruptIndex(t *testing.T) {
	st := newCountingStore()
	if err := st.Set(context.Background(), store.DomainLibrary, "", []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	ix := NewIndex(st, staticMeta(Metadata{}, nil), time.Hour)
	ix.Load(context.Background())
	if got := len(ix.All()); got != 0 {
		t.Errorf("corrupt index loaded %d entries, want empty library", got)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	st := newCountingStore()
	ix := NewIndex(st, staticMeta(Metadata{Title: "Foo", Author: "Bar", Identifier: "isbn123"}, nil), time.Hour)
	if _, _, err := ix.AddOrOpen(context.Background(), "/books/a.epub", nil); err != nil {
		t.Fatal(err)
	}
	ix.RecordProgress("/books/a.epub", "epubcfi(/6/4)", 0.42)
	ix.Flush()

	reopened := NewIndex(st, staticMeta(Metadata{}, nil), time.Hour)
	reopened.Load(context.Background())
	e, ok := reopened.GetByPath("/books/a.epub")
	if !ok {
		t.Fatal("entry missing after reload")
	}
	if e.ID != "isbn123" || e.Progress != 42 || e.LastPosition != "epubcfi(/6/4)" {
		t.Errorf("reloaded entry mismatch: %+v", e)
	}
}

func TestSearch(t *testing.T) {
	st := newCountingStore()
	ix := NewIndex(st, func(ctx context.Context, path string, ft FileType) (Metadata, []byte, error) {
		switch path {
		case "/a.epub":
			return Metadata{Title: "The Go Programming Language", Author: "Donovan", Identifier: "a"}, nil, nil
		default:
			return Metadata{Title: "Moby Dick", Author: "Melville", Identifier: "b"}, nil, nil
		}
	}, time.Hour)
	for _, p := range []string{"/a.epub", "/b.epub"} {
		if _, _, err := ix.AddOrOpen(context.Background(), p, nil); err != nil {
			t.Fatal(err)
		}
	}

	if got := ix.Search("go program"); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("Search by title: got %v", got)
	}
	if got := ix.Search("MELVILLE"); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("Search by author, case-insensitive: got %v", got)
	}
	if got := ix.Search("zzz"); len(got) != 0 {
		t.Errorf("Search miss: got %v", got)
	}
}
