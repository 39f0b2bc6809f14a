package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/obsidian-open/obsidian-open/internal/apperr"
	"github.com/obsidian-open/obsidian-open/internal/config"
	"github.com/obsidian-open/obsidian-open/internal/locate"
	"github.com/obsidian-open/obsidian-open/internal/settings"
)

func newLocateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locate",
		Short: "Show where Obsidian is looked for, in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths := config.Resolve()
			store := settings.NewStore(paths.SettingsFile, logger)
			resolver := locate.NewDefault(store, nil, logger)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"#", "Tier", "Path", "Exists"})

			found := false
			n := 0
			for c := range resolver.Resolve() {
				n++
				exists := locate.FileExists(c.Path)
				mark := "no"
				if exists {
					mark = "yes"
					if !found {
						mark = "yes (selected)"
					}
					found = true
				}
				t.AppendRow(table.Row{n, c.Tier, truncateLeft(c.Path, getTerminalWidth()/2, "..."), mark})
			}
			t.Render()

			fmt.Fprintf(cmd.OutOrStdout(), "Cache: %s\n", store.Path())
			if !found {
				cmd.SilenceUsage = true
				return fmt.Errorf("%w: Obsidian executable (%v) not found on %s", apperr.ErrNotFound, locate.ExecutableNames(runtime.GOOS), runtime.GOOS)
			}
			return nil
		},
	}
}

func newSetPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-path <dir>",
		Short: "Remember the Obsidian installation directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			exe, err := executableIn(normalizeFolderArg(args[0]))
			if err != nil {
				return err
			}

			store := settings.NewStore(config.Resolve().SettingsFile, logger)
			if !store.Save(filepath.Dir(exe)) {
				return fmt.Errorf("%w: could not write %s", apperr.ErrIO, store.Path())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", exe)
			return nil
		},
	}
}

// executableIn returns the absolute path of the Obsidian binary inside dir.
func executableIn(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", apperr.ErrValidation, dir, err)
	}
	dir = abs
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: not a directory: %s", apperr.ErrValidation, dir)
	}
	seq := locate.DirCandidates(dir, locate.ExecutableNames(runtime.GOOS), locate.TierPrompt)
	c, err := locate.FindFirstExisting(seq, locate.FileExists)
	if err != nil {
		return "", fmt.Errorf("%w: no Obsidian executable in %s", apperr.ErrValidation, dir)
	}
	return c.Path, nil
}
