package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/obsidian-open/obsidian-open/internal/config"
	"github.com/obsidian-open/obsidian-open/internal/obsidian"
)

func newListCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List vaults known to Obsidian",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}

			paths := config.Resolve()
			registry := obsidian.NewRegistry(paths.VaultConfig, paths.LockFile, logger)
			doc, err := registry.Load()
			if err != nil {
				return err
			}

			vaults := doc.Vaults()
			if format == "json" {
				return outputVaultsJSON(cmd, vaults)
			}
			outputVaultsTable(cmd, vaults, getTerminalWidth())
			fmt.Fprintf(cmd.OutOrStdout(), "Config: %s\n", registry.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

type vaultOutputEntry struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	LastOpened string `json:"last_opened,omitempty"`
	Open       bool   `json:"open"`
}

func outputVaultsJSON(cmd *cobra.Command, vaults []obsidian.Vault) error {
	output := make([]vaultOutputEntry, 0, len(vaults))
	for _, v := range vaults {
		output = append(output, vaultOutputEntry{
			ID:         v.ID,
			Path:       v.Path,
			LastOpened: formatTimestamp(v.Timestamp, time.RFC3339),
			Open:       v.Open,
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func outputVaultsTable(cmd *cobra.Command, vaults []obsidian.Vault, termWidth int) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)

	// open marker, 16-char id, timestamp, borders
	pathWidth := termWidth - 1 - 16 - 19 - 4*3
	if pathWidth < 20 {
		pathWidth = 20
	}

	t.AppendHeader(table.Row{"", "ID", "Path", "Last Opened"})
	for _, v := range vaults {
		marker := ""
		if v.Open {
			marker = "*"
		}
		t.AppendRow(table.Row{
			marker,
			v.ID,
			truncateLeft(v.Path, pathWidth, "..."),
			formatTimestamp(v.Timestamp, "2006-01-02 15:04:05"),
		})
	}

	t.Render()
}

func formatTimestamp(ms int64, layout string) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).Local().Format(layout)
}

// truncateLeft keeps the tail of s, which is the informative end of a path.
func truncateLeft(s string, maxWidth int, prefix string) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}

	budget := maxWidth - runewidth.StringWidth(prefix)
	runes := []rune(s)
	width := 0
	i := len(runes)
	for i > 0 {
		w := runewidth.RuneWidth(runes[i-1])
		if width+w > budget {
			break
		}
		width += w
		i--
	}
	return prefix + string(runes[i:])
}
