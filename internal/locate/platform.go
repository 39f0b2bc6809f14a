package locate

import (
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
)

// ExecutableNames lists the file names the Obsidian binary ships under on goos.
func ExecutableNames(goos string) []string {
	switch goos {
	case "windows":
		return []string{"Obsidian.exe"}
	case "darwin":
		return []string{"Obsidian"}
	default:
		return []string{"obsidian", "md.obsidian.Obsidian", "Obsidian.AppImage"}
	}
}

// WellKnownPaths lists the conventional install locations for goos. getenv and
// home are injected so the list can be computed for any platform.
func WellKnownPaths(goos string, getenv func(string) string, home string) []string {
	var paths []string
	add := func(base string, elem ...string) {
		if base == "" {
			return
		}
		paths = append(paths, filepath.Join(append([]string{base}, elem...)...))
	}

	switch goos {
	case "windows":
		localAppData := getenv("LOCALAPPDATA")
		if localAppData == "" && home != "" {
			localAppData = filepath.Join(home, "AppData", "Local")
		}
		add(localAppData, "Programs", "Obsidian", "Obsidian.exe")
		add(localAppData, "Obsidian", "Obsidian.exe")
		add(getenv("ProgramFiles"), "Obsidian", "Obsidian.exe")
		add(getenv("ProgramFiles(x86)"), "Obsidian", "Obsidian.exe")
	case "darwin":
		paths = append(paths, "/Applications/Obsidian.app/Contents/MacOS/Obsidian")
		add(home, "Applications", "Obsidian.app", "Contents", "MacOS", "Obsidian")
	default:
		paths = append(paths,
			"/usr/bin/obsidian",
			"/usr/local/bin/obsidian",
			"/opt/Obsidian/obsidian",
			"/snap/bin/obsidian",
			"/var/lib/flatpak/exports/bin/md.obsidian.Obsidian",
		)
		add(home, ".local", "share", "flatpak", "exports", "bin", "md.obsidian.Obsidian")
		add(home, ".local", "bin", "obsidian")
		add(home, "Applications", "Obsidian.AppImage")
	}
	return paths
}

// NewDefault builds the standard resolver for this machine: cache, install
// records, well-known paths, then prompt when one is given.
func NewDefault(cache DirSource, prompt Strategy, logger *zap.Logger) *Resolver {
	names := ExecutableNames(runtime.GOOS)
	home, _ := os.UserHomeDir()

	strategies := []Strategy{
		CacheStrategy{Cache: cache, ExeNames: names, Exists: FileExists},
		InstallRecordStrategy{Lookup: InstallDirs, ExeNames: names, Exists: FileExists},
		WellKnownStrategy{Paths: WellKnownPaths(runtime.GOOS, os.Getenv, home)},
	}
	if prompt != nil {
		strategies = append(strategies, prompt)
	}

	return &Resolver{Strategies: strategies, Exists: FileExists, Logger: logger}
}
