// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MorningAppLabs/LapBook/internal/config"
	"github.com/MorningAppLabs/LapBook/internal/library"
)

func newEditCmd(cfg *config.Config, idx *library.Index) *cobra.Command {
	var (
		titleFlag  string
		authorFlag string
	)

	cmd := &cobra.Command{
		Use:   "edit <book>",
		Short: "Edit a book's title or author",
		Long: `Override the stored title or author of a book. Fields not given
keep their current value. The book's identifier never changes.

Examples:
  lapbook edit dune-frank-herbert --title "Dune (1965)"
  lapbook edit dune-frank-herbert --author "Frank Herbert"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := resolveEntry(idx, args[0])
			if err != nil {
				return err
			}
			if titleFlag == "" && authorFlag == "" {
				return fmt.Errorf("nothing to change; pass --title or --author")
			}

			title := entry.Title
			author := entry.Author
			if cmd.Flags().Changed("title") {
				title = titleFlag
			}
			if cmd.Flags().Changed("author") {
				author = authorFlag
			}

			if err := idx.EditMetadata(entry.ID, title, author); err != nil {
				return err
			}
			fmt.Printf("Updated: %s - %s\n", entry.ID, truncate(title, 50))
			return nil
		},
	}

	cmd.Flags().StringVar(&titleFlag, "title", "", "New title")
	cmd.Flags().StringVar(&authorFlag, "author", "", "New author")

	return cmd
}
