// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MorningAppLabs/LapBook/internal/config"
	"github.com/MorningAppLabs/LapBook/internal/library"
	"github.com/MorningAppLabs/LapBook/internal/session"
	"github.com/MorningAppLabs/LapBook/internal/settings"
	"github.com/MorningAppLabs/LapBook/internal/store"
	"github.com/MorningAppLabs/LapBook/internal/tui"
)

func newOpenCmd(cfg *config.Config, st store.Store, idx *library.Index) *cobra.Command {
	var fromStart bool

	cmd := &cobra.Command{
		Use:   "open <book-or-path>",
		Short: "Open a book in the terminal reader",
		Long: `Open a book and resume reading where you left off.

The argument is a library id, a title, or a file path. A path that is
not yet in the library is added first.

Examples:
  lapbook open dune-frank-herbert
  lapbook open ~/books/new-arrival.epub
  lapbook open dune --from-start`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			entry, err := resolveEntry(idx, args[0])
			if err != nil {
				// Not in the library yet: a readable path gets added on open.
				path, absErr := filepath.Abs(expandHome(args[0]))
				if absErr != nil {
					return err
				}
				if _, statErr := os.Stat(path); statErr != nil {
					return err
				}
				entry, _, err = idx.AddOrOpen(ctx, path, nil)
				if err != nil {
					return err
				}
			}

			if fromStart {
				entry.LastPosition = ""
			}

			prefs := settings.Load(ctx, st)
			hl := library.OpenHighlights(ctx, st, entry.BookKey)

			ctrl := session.NewController(idx, nil)
			eng, pos, err := ctrl.Open(ctx, entry)
			if err != nil {
				if errors.Is(err, session.ErrSuperseded) {
					return nil
				}
				return fmt.Errorf("open %s: %w", entry.Path, err)
			}
			defer ctrl.Close()

			return tui.Run(ctrl, eng, hl, entry, prefs, pos)
		},
	}

	cmd.Flags().BoolVar(&fromStart, "from-start", false, "Ignore the saved position and start from the beginning")

	return cmd
}
