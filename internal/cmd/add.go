// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MorningAppLabs/LapBook/internal/config"
	"github.com/MorningAppLabs/LapBook/internal/library"
)

func newAddCmd(cfg *config.Config, idx *library.Index) *cobra.Command {
	var (
		titleFlag  string
		authorFlag string
	)

	cmd := &cobra.Command{
		Use:   "add <path>...",
		Short: "Add books to the library",
		Long: `Add EPUB or PDF files to the library.

Metadata is extracted from the file; use --title and --author to
override it. Adding a path that is already in the library is a no-op.

Examples:
  lapbook add ~/books/dune.epub
  lapbook add ~/scans/notes.pdf --title "Lab Notes" --author "Me"
  lapbook add ~/books/*.epub`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var hints *library.Metadata
			if titleFlag != "" || authorFlag != "" {
				if len(args) > 1 {
					return fmt.Errorf("--title and --author apply to a single file")
				}
				hints = &library.Metadata{Title: titleFlag, Author: authorFlag}
			}

			added := 0
			skipped := 0
			for _, arg := range args {
				path, err := filepath.Abs(expandHome(arg))
				if err != nil {
					return err
				}
				info, err := os.Stat(path)
				if err != nil {
					return fmt.Errorf("path not found: %s", arg)
				}
				if info.IsDir() {
					return fmt.Errorf("%s is a directory; use 'lapbook watch %s --one-shot' to import it", arg, arg)
				}

				entry, created, err := idx.AddOrOpen(cmd.Context(), path, hints)
				if err != nil {
					fmt.Printf("  Warning: could not add %s: %v\n", arg, err)
					continue
				}
				if !created {
					skipped++
					continue
				}
				fmt.Printf("Added: %s - %s (%s)\n", entry.ID, truncate(entry.Title, 50), strings.ToUpper(string(entry.FileType)))
				added++
			}

			fmt.Printf("\nAdded %d book(s), skipped %d already in library.\n", added, skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&titleFlag, "title", "", "Title override (default: extracted from the file)")
	cmd.Flags().StringVar(&authorFlag, "author", "", "Author override")

	return cmd
}
