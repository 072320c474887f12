// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/MorningAppLabs/LapBook/internal/config"
	"github.com/MorningAppLabs/LapBook/internal/library"
	"github.com/MorningAppLabs/LapBook/internal/store"
)

// NewRootCmd creates the root command for lapbook.
func NewRootCmd(cfg *config.Config, st store.Store, idx *library.Index) *cobra.Command {

	root := &cobra.Command{
		Use:   "lapbook",
		Short: "Manage and read your e-book library",
		Long: `A terminal e-book library and reader for EPUB and PDF files.

lapbook provides tools to:
- Add books to your library from local files
- Read books in the terminal, resuming where you left off
- Highlight passages and attach notes
- Search and organize your collection
- Export highlights for use in other tools`,
	}

	root.AddCommand(newAddCmd(cfg, idx))
	root.AddCommand(newOpenCmd(cfg, st, idx))
	root.AddCommand(newListCmd(cfg, st, idx))
	root.AddCommand(newSearchCmd(cfg, idx))
	root.AddCommand(newEditCmd(cfg, idx))
	root.AddCommand(newRemoveCmd(cfg, idx))
	root.AddCommand(newHighlightCmd(cfg, st, idx))
	root.AddCommand(newSettingsCmd(cfg, st))
	root.AddCommand(newExportCmd(cfg, st, idx))
	root.AddCommand(newWatchCmd(cfg, idx))
	root.AddCommand(newStatsCmd(cfg, st, idx))

	return root
}
