// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MorningAppLabs/LapBook/internal/config"
	"github.com/MorningAppLabs/LapBook/internal/library"
	"github.com/MorningAppLabs/LapBook/internal/store"
)

// bookExport is the serialized shape shared by the YAML and JSON formats.
type bookExport struct {
	ID         string              `json:"id" yaml:"id"`
	Title      string              `json:"title" yaml:"title"`
	Author     string              `json:"author,omitempty" yaml:"author,omitempty"`
	Progress   int                 `json:"progress" yaml:"progress"`
	Highlights []library.Highlight `json:"highlights" yaml:"highlights"`
}

func newExportCmd(cfg *config.Config, st store.Store, idx *library.Index) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export [book]",
		Short: "Export highlights to Markdown, YAML, or JSON",
		Long: `Export a book's highlights, or the whole library's, for use in
other tools.

Examples:
  lapbook export dune                       # One book, Markdown to stdout
  lapbook export --format yaml -o notes.yml # Everything, YAML to a file
  lapbook export --format json              # Everything, JSON to stdout`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []library.Entry
			if len(args) > 0 {
				entry, err := resolveEntry(idx, args[0])
				if err != nil {
					return err
				}
				entries = []library.Entry{entry}
			} else {
				entries = idx.All()
			}

			books := make([]bookExport, 0, len(entries))
			for _, e := range entries {
				hls := library.OpenHighlights(cmd.Context(), st, e.BookKey).List()
				if len(args) == 0 && len(hls) == 0 {
					continue
				}
				books = append(books, bookExport{
					ID:         e.ID,
					Title:      e.Title,
					Author:     e.Author,
					Progress:   e.Progress,
					Highlights: hls,
				})
			}

			var outBytes []byte
			var err error
			switch format {
			case "markdown":
				outBytes = exportMarkdown(books)
			case "yaml":
				outBytes, err = yaml.Marshal(books)
			case "json":
				outBytes, err = json.MarshalIndent(books, "", "  ")
			default:
				return fmt.Errorf("unsupported format: %s (choose markdown, yaml, json)", format)
			}
			if err != nil {
				return fmt.Errorf("export %s: %w", format, err)
			}

			if output == "-" || output == "" {
				fmt.Println(string(outBytes))
				return nil
			}
			if err := os.WriteFile(expandHome(output), outBytes, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Printf("Exported %d book(s) to %s\n", len(books), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Export format: markdown, yaml, json")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file (default: stdout)")

	return cmd
}

// exportMarkdown renders books and their highlights as a notes document.
func exportMarkdown(books []bookExport) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Highlights\n\n")
	buf.WriteString(fmt.Sprintf("Generated: %s\n\n---\n\n", time.Now().Format(time.RFC3339)))

	for _, b := range books {
		buf.WriteString(fmt.Sprintf("## %s\n\n", b.Title))
		if b.Author != "" {
			buf.WriteString("**Author:** " + b.Author + "\n\n")
		}
		buf.WriteString(fmt.Sprintf("**Progress:** %d%%\n\n", b.Progress))

		if len(b.Highlights) == 0 {
			buf.WriteString("_No highlights._\n\n")
		}
		for _, h := range b.Highlights {
			buf.WriteString(fmt.Sprintf("> %s\n\n", h.Text))
			if h.Note != "" {
				buf.WriteString(fmt.Sprintf("Note: %s\n\n", h.Note))
			}
			buf.WriteString(fmt.Sprintf("<sup>%s, %s</sup>\n\n", h.Color, h.CreatedAt.Format("2006-01-02")))
		}

		buf.WriteString("---\n\n")
	}

	return buf.Bytes()
}
