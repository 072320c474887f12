// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package library

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of events into a single trailing call to fn.
// Each key has its own quiet window; scheduling a key again before its
// window elapses restarts the window. Flush fires fn immediately for any
// keys still pending and is safe to call at shutdown.
type debouncer struct {
	mu     sync.Mutex
	window time.Duration
	fn     func()
	timers map[string]*time.Timer
}

func newDebouncer(window time.Duration, fn func()) *debouncer {
	return &debouncer{
		window: window,
		fn:     fn,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arms (or re-arms) the quiet window for key.
func (d *debouncer) Schedule(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Reset(d.window)
		return
	}
	d.timers[key] = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
		d.fn()
	})
}

// Flush cancels all pending timers and, if any were pending, invokes fn
// exactly once with the current state.
func (d *debouncer) Flush() {
	d.mu.Lock()
	pending := false
	for key, t := range d.timers {
		if t.Stop() {
			pending = true
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()
	if pending {
		d.fn()
	}
}
