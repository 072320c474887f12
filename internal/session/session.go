// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

// Package session owns the lifecycle of the currently open document: it
// is the only holder of a live engine handle. A document moves through
// Closed → Opening → Ready and back; at most one document is ever
// Opening or Ready at a time.
package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/MorningAppLabs/LapBook/internal/engine"
	"github.com/MorningAppLabs/LapBook/internal/library"
)

// State is the lifecycle state of the controller's document slot.
type State int

const (
	StateClosed State = iota
	StateOpening
	StateReady
)

// ErrSuperseded is returned from Open when another Open request replaced
// this one while the engine was still parsing.
var ErrSuperseded = errors.New("session: open superseded by a newer request")

// Factory builds an engine for a path. Defaults to engine.New.
type Factory func(path string, ft library.FileType) engine.Engine

// Position is a resolved start position within an open document.
type Position struct {
	Unit   int
	Offset int
}

// Controller opens documents, resumes the last reading position, and
// forwards normalized location events to the library index.
type Controller struct {
	index   *library.Index
	factory Factory

	mu    sync.Mutex
	state State
	gen   uint64
	eng   engine.Engine
	entry library.Entry
}

// NewController creates a controller bound to the library index. A nil
// factory uses the real engines.
func NewController(index *library.Index, factory Factory) *Controller {
	if factory == nil {
		factory = engine.New
	}
	return &Controller{index: index, factory: factory}
}

// Open opens the entry's document and resolves its resume position.
// Any previously open document is torn down first. If a newer Open
// request arrives while this one's engine is still parsing, this one is
// discarded and returns ErrSuperseded; the generation counter guarantees
// a late completion can never displace the current session.
//
// On success the document is Ready and positioned at the returned
// Position: the entry's last recorded position when it is still valid,
// or the document start when the locator is stale or absent.
func (c *Controller) Open(ctx context.Context, entry library.Entry) (engine.Engine, Position, error) {
	c.mu.Lock()
	c.gen++
	myGen := c.gen
	if c.eng != nil {
		c.eng.Destroy()
		c.eng = nil
	}
	c.state = StateOpening
	c.mu.Unlock()

	eng := c.factory(entry.Path, entry.FileType)
	err := eng.Open(ctx)

	c.mu.Lock()
	if c.gen != myGen {
		c.mu.Unlock()
		eng.Destroy()
		return nil, Position{}, ErrSuperseded
	}
	if err != nil {
		c.state = StateClosed
		c.mu.Unlock()
		eng.Destroy()
		return nil, Position{}, err
	}
	c.eng = eng
	c.entry = entry
	c.state = StateReady
	c.mu.Unlock()

	pos := c.resume(eng, entry)
	c.index.MarkOpened(entry.Path)
	return eng, pos, nil
}

// resume resolves the entry's last position against the now-ready
// engine. A stale or foreign locator falls back to the document start
// without surfacing an error.
func (c *Controller) resume(eng engine.Engine, entry library.Entry) Position {
	if entry.LastPosition == "" {
		return Position{}
	}
	unit, offset, err := eng.Resolve(entry.LastPosition)
	if err != nil {
		log.Printf("session: resume %s: %v (starting from the beginning)", entry.Path, err)
		return Position{}
	}
	return Position{Unit: unit, Offset: offset}
}

// ReportLocation records that the reading surface is now at the given
// unit and offset. The event is normalized to a locator and fraction by
// the active engine and forwarded to the index's debounced progress
// recorder. Events arriving while no document is Ready are dropped.
func (c *Controller) ReportLocation(unit, offset int) {
	c.mu.Lock()
	if c.state != StateReady {
		c.mu.Unlock()
		return
	}
	loc := c.eng.LocatorFor(unit, offset)
	frac := c.eng.Fraction(unit)
	path := c.entry.Path
	c.mu.Unlock()

	if loc == "" {
		return
	}
	c.index.RecordProgress(path, loc, frac)
}

// Close tears down the active engine and flushes any pending progress
// write. Closing an already-closed controller is a no-op.
func (c *Controller) Close() {
	c.mu.Lock()
	c.gen++
	if c.eng != nil {
		c.eng.Destroy()
		c.eng = nil
	}
	c.state = StateClosed
	c.mu.Unlock()

	c.index.Flush()
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
