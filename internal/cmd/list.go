// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MorningAppLabs/LapBook/internal/config"
	"github.com/MorningAppLabs/LapBook/internal/library"
	"github.com/MorningAppLabs/LapBook/internal/settings"
	"github.com/MorningAppLabs/LapBook/internal/store"
)

func newListCmd(cfg *config.Config, st store.Store, idx *library.Index) *cobra.Command {
	var (
		fileType string
		limit    int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books in the library",
		Long: `List all books in the library, most recently added first.

Examples:
  lapbook list                 # All books, with the recently-opened shelf
  lapbook list --type epub     # Only EPUBs
  lapbook list --limit 20      # Limit results
  lapbook list --json          # Machine-readable output`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := idx.All()

			if fileType != "" {
				ft := library.FileType(fileType)
				if ft != library.FileTypeEPUB && ft != library.FileTypePDF {
					return fmt.Errorf("unknown type %q (choose epub or pdf)", fileType)
				}
				var filtered []library.Entry
				for _, e := range entries {
					if e.FileType == ft {
						filtered = append(filtered, e)
					}
				}
				entries = filtered
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			if asJSON {
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			if len(entries) == 0 {
				fmt.Println("No books in library.")
				fmt.Println("Use 'lapbook add <path>' to add books.")
				return nil
			}

			prefs := settings.Load(cmd.Context(), st)
			if recent := idx.Recent(); len(recent) > 0 && !prefs.HideRecent {
				fmt.Println("Recently opened:")
				for _, e := range recent {
					fmt.Printf("  %3d%%  %-40s  %s\n", e.Progress, truncate(e.Title, 40), formatWhen(e.LastOpened))
				}
				fmt.Println()
			}

			fmt.Printf("%-24s %-5s %-42s %-24s %s\n", "ID", "Type", "Title", "Author", "Progress")
			for _, e := range entries {
				fmt.Printf("%-24s %-5s %-42s %-24s %d%%\n",
					truncate(e.ID, 24), e.FileType, truncate(e.Title, 42), truncate(e.Author, 24), e.Progress)
			}

			fmt.Printf("\nTotal: %d book(s)\n", len(entries))
			return nil
		},
	}

	cmd.Flags().StringVarP(&fileType, "type", "t", "", "Filter by file type (epub, pdf)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit number of results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
