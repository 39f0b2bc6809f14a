package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/obsidian-open/obsidian-open/internal/config"
	"github.com/obsidian-open/obsidian-open/internal/locate"
	"github.com/obsidian-open/obsidian-open/internal/settings"
	"github.com/obsidian-open/obsidian-open/internal/shellmenu"
)

func newInstallCmd() *cobra.Command {
	var (
		launcher    string
		obsidianDir string
		outDir      string
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Write registry files for the Explorer \"Open with Obsidian\" menu",
		Long: `Write registry files that add (and remove) an "Open with Obsidian" entry to
the Windows Explorer folder context menu. The files are not imported; double-click
the generated install file to apply it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			if launcher == "" {
				exe, err := os.Executable()
				if err != nil {
					return fmt.Errorf("failed to determine launcher path: %w", err)
				}
				launcher = exe
			}
			launcherPath, err := filepath.Abs(launcher)
			if err != nil {
				return fmt.Errorf("failed to resolve launcher path: %w", err)
			}

			store := settings.NewStore(config.Resolve().SettingsFile, logger)

			var obsidianExe string
			if obsidianDir != "" {
				obsidianExe, err = executableIn(normalizeFolderArg(obsidianDir))
				if err != nil {
					return err
				}
			} else {
				var prompt locate.Strategy
				if stdinIsTerminal() {
					prompt = locate.NewPrompt(cmd.InOrStdin(), cmd.ErrOrStderr())
				}
				c, err := locate.NewDefault(store, prompt, logger).FindFirstExisting()
				if err != nil {
					return err
				}
				obsidianExe = c.Path
			}
			if !store.Save(filepath.Dir(obsidianExe)) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not remember %s\n", filepath.Dir(obsidianExe))
			}

			dir := outDir
			if dir == "" {
				dir = filepath.Dir(launcherPath)
			}
			installPath, uninstallPath, err := shellmenu.WriteScripts(dir, launcherPath, obsidianExe)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Obsidian:  %s\n", obsidianExe)
			fmt.Fprintf(out, "Launcher:  %s\n", launcherPath)
			fmt.Fprintf(out, "Install:   %s\n", installPath)
			fmt.Fprintf(out, "Uninstall: %s\n", uninstallPath)
			fmt.Fprintln(out, "Double-click the install file to add the context menu entry.")
			return nil
		},
	}

	cmd.Flags().StringVar(&launcher, "launcher", "", "Launcher executable the menu runs (default: this program)")
	cmd.Flags().StringVar(&obsidianDir, "obsidian-dir", "", "Obsidian installation directory (default: auto-detect)")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory for the generated files (default: launcher directory)")

	return cmd
}
