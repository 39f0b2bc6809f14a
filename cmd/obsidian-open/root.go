package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/obsidian-open/obsidian-open/internal/apperr"
	"github.com/obsidian-open/obsidian-open/internal/config"
	"github.com/obsidian-open/obsidian-open/internal/launch"
	"github.com/obsidian-open/obsidian-open/internal/locate"
	"github.com/obsidian-open/obsidian-open/internal/obsidian"
	"github.com/obsidian-open/obsidian-open/internal/settings"
)

var (
	verbose bool

	logger = zap.NewNop()
)

func newRootCmd() *cobra.Command {
	var (
		noLaunch bool
		noPrompt bool
	)

	cmd := &cobra.Command{
		Use:     "obsidian-open <folder>",
		Short:   "Open a folder as an Obsidian vault",
		Long:    "obsidian-open registers a folder as a vault in Obsidian's configuration, marks it as the vault to open, and starts Obsidian.",
		Version: version,
		Args:    cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := zap.NewProductionConfig()
			cfg.Encoding = "console"
			cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			l, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runOpen(cmd, args[0], noLaunch, !noPrompt && stdinIsTerminal())
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().BoolVar(&noLaunch, "no-launch", false, "Register the vault without starting Obsidian")
	cmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "Never ask for the Obsidian location")

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newLocateCmd())
	cmd.AddCommand(newSetPathCmd())
	cmd.AddCommand(newInstallCmd())

	return cmd
}

func runOpen(cmd *cobra.Command, arg string, noLaunch, prompt bool) error {
	folder := normalizeFolderArg(arg)
	if err := validateFolder(folder); err != nil {
		return err
	}

	paths := config.Resolve()
	store := settings.NewStore(paths.SettingsFile, logger)

	var promptStrategy locate.Strategy
	if prompt {
		promptStrategy = locate.NewPrompt(cmd.InOrStdin(), cmd.ErrOrStderr())
	}

	orch := &launch.Orchestrator{
		Registry:   obsidian.NewRegistry(paths.VaultConfig, paths.LockFile, logger),
		Finder:     locate.NewDefault(store, promptStrategy, logger),
		Cache:      store,
		Starter:    launch.DetachedStarter{Logger: logger},
		Logger:     logger,
		SkipLaunch: noLaunch,
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Opening %s with Obsidian\n", folder)

	res := orch.Run(cmd.Context(), folder)
	printResult(out, res)

	switch res.Outcome() {
	case launch.OutcomeSuccess:
		return nil
	case launch.OutcomeConfigured:
		return fmt.Errorf("vault saved but Obsidian was not started: %w", res.Err)
	default:
		return res.Err
	}
}

func printResult(out io.Writer, res launch.Result) {
	if res.Configured {
		fmt.Fprintf(out, "Vault %s is registered and marked open\n", res.VaultID)
	}
	if res.Executable != "" {
		fmt.Fprintf(out, "Obsidian: %s (%s)\n", res.Executable, res.Tier)
	}
	if res.Launched {
		fmt.Fprintln(out, "Obsidian started")
	}
	if errors.Is(res.Err, apperr.ErrNotFound) && res.Stage == launch.StageResolveExecutable {
		fmt.Fprintln(out, "Obsidian could not be found; run `obsidian-open set-path <dir>` to record its location")
	}
}

// normalizeFolderArg strips whitespace and the quotes shell integrations may
// leave around the path.
func normalizeFolderArg(arg string) string {
	return strings.Trim(strings.TrimSpace(arg), `"`)
}

func validateFolder(folder string) error {
	if folder == "" {
		return fmt.Errorf("%w: no folder given", apperr.ErrValidation)
	}
	info, err := os.Stat(folder)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: folder does not exist: %s", apperr.ErrValidation, folder)
		}
		return fmt.Errorf("%w: %s: %w", apperr.ErrValidation, folder, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: not a folder: %s", apperr.ErrValidation, folder)
	}
	return nil
}
