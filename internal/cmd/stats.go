// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MorningAppLabs/LapBook/internal/config"
	"github.com/MorningAppLabs/LapBook/internal/library"
	"github.com/MorningAppLabs/LapBook/internal/store"
)

func newStatsCmd(cfg *config.Config, st store.Store, idx *library.Index) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show library statistics",
		Long:  `Display statistics about your library: book counts, reading progress, highlights.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := idx.All()

			typeCounts := make(map[library.FileType]int)
			started := 0
			finished := 0
			progressSum := 0
			for _, e := range entries {
				typeCounts[e.FileType]++
				if e.LastOpened != nil {
					started++
				}
				if e.Progress == 100 {
					finished++
				}
				progressSum += e.Progress
			}

			totalHighlights := 0
			for _, e := range entries {
				totalHighlights += len(library.OpenHighlights(cmd.Context(), st, e.BookKey).List())
			}

			avgProgress := 0
			if len(entries) > 0 {
				avgProgress = progressSum / len(entries)
			}

			if asJSON {
				stats := map[string]any{
					"books":        len(entries),
					"by_type":      typeCounts,
					"started":      started,
					"finished":     finished,
					"avg_progress": avgProgress,
					"highlights":   totalHighlights,
				}
				data, err := json.MarshalIndent(stats, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("Library Statistics\n")
			fmt.Printf("==================\n\n")
			fmt.Printf("Books:         %d\n", len(entries))
			fmt.Println("By type:")
			for t, c := range typeCounts {
				fmt.Printf("  %s: %d\n", t, c)
			}
			fmt.Printf("Started:       %d\n", started)
			fmt.Printf("Finished:      %d\n", finished)
			fmt.Printf("Avg progress:  %d%%\n", avgProgress)
			fmt.Printf("Highlights:    %d\n", totalHighlights)

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
