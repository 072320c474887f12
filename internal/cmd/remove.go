// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MorningAppLabs/LapBook/internal/config"
	"github.com/MorningAppLabs/LapBook/internal/library"
)

func newRemoveCmd(cfg *config.Config, idx *library.Index) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <book>",
		Aliases: []string{"rm"},
		Short:   "Remove a book from the library",
		Long: `Remove a book from the library index. The file on disk, its cover,
and its highlights are left untouched; re-adding the same file restores
access to them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := resolveEntry(idx, args[0])
			if err != nil {
				return err
			}
			if err := idx.Remove(entry.ID); err != nil {
				return err
			}
			fmt.Printf("Removed: %s - %s\n", entry.ID, truncate(entry.Title, 50))
			return nil
		},
	}
}
