// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/MorningAppLabs/LapBook/internal/config"
	"github.com/MorningAppLabs/LapBook/internal/library"
)

func newWatchCmd(cfg *config.Config, idx *library.Index) *cobra.Command {
	var (
		recursive  bool
		debounceMs int
		oneShot    bool
	)

	cmd := &cobra.Command{
		Use:   "watch [directory]",
		Short: "Watch a folder for new books and auto-add them",
		Long: `Monitor a directory for new EPUB and PDF files and add them to the
library as they appear. The default directory comes from the
watch_dir config key.

Examples:
  lapbook watch ~/Downloads/books
  lapbook watch ~/Dropbox --recursive
  lapbook watch ~/books --one-shot`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := cfg.WatchDir
			if len(args) > 0 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("no directory given and watch_dir is not configured")
			}
			dir = expandHome(dir)

			info, err := os.Stat(dir)
			if err != nil {
				return fmt.Errorf("cannot access directory %s: %w", dir, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}

			if oneShot {
				return addExistingFiles(cmd.Context(), dir, recursive, idx)
			}
			return watchDirectory(cmd.Context(), dir, recursive, idx, debounceMs)
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Watch subdirectories recursively")
	cmd.Flags().IntVar(&debounceMs, "debounce", 1000, "Debounce milliseconds for file events")
	cmd.Flags().BoolVar(&oneShot, "one-shot", false, "Add existing files and exit (don't watch)")

	return cmd
}

func isBookFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".epub", ".pdf":
		return true
	}
	return false
}

func watchDirectory(ctx context.Context, dir string, recursive bool, idx *library.Index, debounceMs int) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Pending adds, debounced so partially copied files settle first.
	pending := make(map[string]*time.Timer)
	var pendingMu sync.Mutex

	if recursive {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if err := watcher.Add(path); err != nil {
					log.Printf("Warning: cannot watch %s: %v", path, err)
				} else {
					log.Printf("Watching: %s", path)
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("walk directories: %w", err)
		}
	} else {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch directory: %w", err)
		}
		log.Printf("Watching: %s", dir)
	}

	log.Println("Press Ctrl+C to stop watching")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isBookFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			pendingMu.Lock()
			if timer, exists := pending[event.Name]; exists {
				timer.Stop()
			}
			name := event.Name
			pending[name] = time.AfterFunc(time.Duration(debounceMs)*time.Millisecond, func() {
				pendingMu.Lock()
				delete(pending, name)
				pendingMu.Unlock()

				path, err := filepath.Abs(name)
				if err != nil {
					log.Printf("Failed to resolve %s: %v", name, err)
					return
				}
				entry, created, err := idx.AddOrOpen(context.Background(), path, nil)
				if err != nil {
					log.Printf("Failed to add %s: %v", name, err)
					return
				}
				if created {
					log.Printf("Added: %s (ID: %s)", entry.Title, entry.ID)
				}
			})
			pendingMu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

func addExistingFiles(ctx context.Context, dir string, recursive bool, idx *library.Index) error {
	var files []string

	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && isBookFile(path) {
			files = append(files, path)
		}
		if info.IsDir() && !recursive && path != dir {
			return filepath.SkipDir
		}
		return nil
	}

	if err := filepath.Walk(dir, walkFn); err != nil {
		return fmt.Errorf("walk directory: %w", err)
	}

	if len(files) == 0 {
		fmt.Println("No book files found")
		return nil
	}

	fmt.Printf("Found %d book file(s), adding...\n", len(files))

	added := 0
	failed := 0
	for _, f := range files {
		path, err := filepath.Abs(f)
		if err != nil {
			failed++
			continue
		}
		entry, created, err := idx.AddOrOpen(ctx, path, nil)
		if err != nil {
			log.Printf("Failed: %s - %v", f, err)
			failed++
			continue
		}
		if created {
			fmt.Printf("Added: %s\n", truncate(entry.Title, 50))
			added++
		}
	}

	fmt.Printf("\nAdded: %d, Failed: %d\n", added, failed)
	return nil
}
