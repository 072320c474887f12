// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MorningAppLabs/LapBook/internal/config"
	"github.com/MorningAppLabs/LapBook/internal/settings"
	"github.com/MorningAppLabs/LapBook/internal/store"
)

func newSettingsCmd(cfg *config.Config, st store.Store) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change reader preferences",
		Long:  `Reader preferences persist across sessions and apply to every book.`,
	}

	cmd.AddCommand(newSettingsListCmd(st))
	cmd.AddCommand(newSettingsGetCmd(st))
	cmd.AddCommand(newSettingsSetCmd(st))
	cmd.AddCommand(newSettingsResetCmd(st))

	return cmd
}

func newSettingsListCmd(st store.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the effective preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := settings.Load(cmd.Context(), st)
			fmt.Printf("theme         %s\n", s.Theme)
			fmt.Printf("font-size     %d\n", s.FontSize)
			fmt.Printf("line-spacing  %g\n", s.LineSpacing)
			fmt.Printf("reader-width  %d\n", s.ReaderWidth)
			fmt.Printf("hide-recent   %t\n", s.HideRecent)
			return nil
		},
	}
}

func newSettingsGetCmd(st store.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Show one preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := settings.Load(cmd.Context(), st)
			switch args[0] {
			case "theme":
				fmt.Println(s.Theme)
			case "font-size":
				fmt.Println(s.FontSize)
			case "line-spacing":
				fmt.Println(s.LineSpacing)
			case "reader-width":
				fmt.Println(s.ReaderWidth)
			case "hide-recent":
				fmt.Println(s.HideRecent)
			default:
				return fmt.Errorf("unknown setting %q (see 'lapbook settings list')", args[0])
			}
			return nil
		},
	}
}

func newSettingsSetCmd(st store.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a preference",
		Long: `Change a single preference and persist the full set.

Examples:
  lapbook settings set theme sepia
  lapbook settings set font-size 18
  lapbook settings set hide-recent true`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := settings.Load(cmd.Context(), st)
			key, value := args[0], args[1]

			switch key {
			case "theme":
				t := settings.Theme(value)
				if t != settings.ThemeLight && t != settings.ThemeDark && t != settings.ThemeSepia {
					return fmt.Errorf("unknown theme %q (choose light, dark, sepia)", value)
				}
				s.Theme = t
			case "font-size":
				n, err := strconv.Atoi(value)
				if err != nil || n < 8 || n > 72 {
					return fmt.Errorf("font-size must be a number between 8 and 72")
				}
				s.FontSize = n
			case "line-spacing":
				f, err := strconv.ParseFloat(value, 64)
				if err != nil || f < 1.0 || f > 3.0 {
					return fmt.Errorf("line-spacing must be a number between 1.0 and 3.0")
				}
				s.LineSpacing = f
			case "reader-width":
				n, err := strconv.Atoi(value)
				if err != nil || n < 20 {
					return fmt.Errorf("reader-width must be a number of at least 20")
				}
				s.ReaderWidth = n
			case "hide-recent":
				b, err := strconv.ParseBool(value)
				if err != nil {
					return fmt.Errorf("hide-recent must be true or false")
				}
				s.HideRecent = b
			default:
				return fmt.Errorf("unknown setting %q (see 'lapbook settings list')", key)
			}

			if err := settings.Save(cmd.Context(), st, s); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			fmt.Printf("Set %s = %s\n", key, value)
			return nil
		},
	}
}

func newSettingsResetCmd(st store.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := settings.Save(cmd.Context(), st, settings.Defaults()); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			fmt.Println("Preferences reset to defaults.")
			return nil
		},
	}
}
