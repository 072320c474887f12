// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MorningAppLabs/LapBook/internal/config"
	"github.com/MorningAppLabs/LapBook/internal/library"
)

func newSearchCmd(cfg *config.Config, idx *library.Index) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search books by title or author",
		Long: `Search the library. Matching is case-insensitive on title and author.

Examples:
  lapbook search dune
  lapbook search "le guin"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			matches := idx.Search(query)
			if len(matches) == 0 {
				fmt.Printf("No books match %q.\n", query)
				return nil
			}

			for _, e := range matches {
				fmt.Printf("%-24s %-42s %s\n", truncate(e.ID, 24), truncate(e.Title, 42), truncate(e.Author, 24))
			}
			fmt.Printf("\nFound %d book(s)\n", len(matches))
			return nil
		},
	}
}
