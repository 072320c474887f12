// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MorningAppLabs/LapBook/internal/cmd"
	"github.com/MorningAppLabs/LapBook/internal/config"
	"github.com/MorningAppLabs/LapBook/internal/engine"
	"github.com/MorningAppLabs/LapBook/internal/library"
	"github.com/MorningAppLabs/LapBook/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lapbook: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// If the data directory cannot back a file store, fall back to an
	// in-memory store so the tool remains operational (statelessly)
	// without persistence.
	var st store.Store
	fs, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: cannot open data directory %s: %v\n", cfg.DataDir, err)
		fmt.Fprintln(os.Stderr, "         falling back to in-memory store (no persistence)")
		st = store.NewMemoryStore()
	} else {
		st = fs
	}

	idx := library.NewIndex(st, engine.ReadMetadata, cfg.Debounce())
	idx.Load(context.Background())
	defer idx.Flush()

	root := cmd.NewRootCmd(cfg, st, idx)
	if err := root.Execute(); err != nil {
		idx.Flush()
		os.Exit(1)
	}
}
