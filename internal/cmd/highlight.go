// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MorningAppLabs/LapBook/internal/config"
	"github.com/MorningAppLabs/LapBook/internal/library"
	"github.com/MorningAppLabs/LapBook/internal/store"
)

func newHighlightCmd(cfg *config.Config, st store.Store, idx *library.Index) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "highlight",
		Aliases: []string{"hl"},
		Short:   "Manage book highlights",
		Long:    `Add, list, and remove highlights on books.`,
	}

	cmd.AddCommand(newHighlightAddCmd(st, idx))
	cmd.AddCommand(newHighlightListCmd(st, idx))
	cmd.AddCommand(newHighlightDeleteCmd(st, idx))

	return cmd
}

func newHighlightAddCmd(st store.Store, idx *library.Index) *cobra.Command {
	var (
		colorFlag string
		noteFlag  string
		rangeFlag string
	)

	cmd := &cobra.Command{
		Use:   "add <book> <text>",
		Short: "Add a highlight to a book",
		Long: `Record a highlighted passage on a book.

Examples:
  lapbook highlight add dune "Fear is the mind-killer"
  lapbook highlight add dune "The spice must flow" --color blue --note "theme"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := resolveEntry(idx, args[0])
			if err != nil {
				return err
			}

			color := library.Color(colorFlag)
			if !color.Valid() {
				return fmt.Errorf("unknown color %q (choose yellow, green, blue, pink, orange)", colorFlag)
			}

			hl := library.OpenHighlights(cmd.Context(), st, entry.BookKey)
			rec := hl.Create(rangeFlag, args[1], color, noteFlag)

			fmt.Printf("Added %s highlight to %s (%s)\n", rec.Color, truncate(entry.Title, 40), rec.ID[:8])
			return nil
		},
	}

	cmd.Flags().StringVarP(&colorFlag, "color", "c", string(library.ColorYellow), "Color: yellow, green, blue, pink, orange")
	cmd.Flags().StringVarP(&noteFlag, "note", "n", "", "Note attached to the highlight")
	cmd.Flags().StringVar(&rangeFlag, "range", "", "Location range within the book (EPUB only)")

	return cmd
}

func newHighlightListCmd(st store.Store, idx *library.Index) *cobra.Command {
	return &cobra.Command{
		Use:   "list <book>",
		Short: "List highlights for a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := resolveEntry(idx, args[0])
			if err != nil {
				return err
			}

			items := library.OpenHighlights(cmd.Context(), st, entry.BookKey).List()
			if len(items) == 0 {
				fmt.Printf("No highlights for %s\n", truncate(entry.Title, 50))
				return nil
			}

			fmt.Printf("Highlights for: %s\n\n", truncate(entry.Title, 50))
			for _, h := range items {
				fmt.Printf("%s  [%s]  %s\n", h.ID[:8], h.Color, truncate(h.Text, 60))
				if h.Note != "" {
					fmt.Printf("          note: %s\n", truncate(h.Note, 60))
				}
			}
			fmt.Printf("\nTotal: %d highlight(s)\n", len(items))
			return nil
		},
	}
}

func newHighlightDeleteCmd(st store.Store, idx *library.Index) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <book> <highlight-id>",
		Short: "Delete a highlight",
		Long: `Delete a highlight by id. A short id prefix from 'highlight list'
is enough when it is unambiguous.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := resolveEntry(idx, args[0])
			if err != nil {
				return err
			}

			hl := library.OpenHighlights(cmd.Context(), st, entry.BookKey)
			id := args[1]

			// Expand a short prefix against the current set.
			var full string
			for _, h := range hl.List() {
				if h.ID == id || (len(id) >= 4 && len(h.ID) > len(id) && h.ID[:len(id)] == id) {
					if full != "" {
						return fmt.Errorf("highlight id %q is ambiguous", id)
					}
					full = h.ID
				}
			}
			if full == "" {
				full = id
			}

			hl.Delete(full)
			fmt.Println("Highlight deleted.")
			return nil
		},
	}
}
