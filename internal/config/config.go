// Package config resolves the fixed per-user file locations used by obsidian-open.
// Locations are computed once per invocation and handed to the stores that need them.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
)

const (
	vaultConfigFile = "obsidian.json"
	settingsFile    = "config.json"
	lockFile        = "obsidian.lock"
)

// Paths bundles every location the tool reads or writes.
type Paths struct {
	// ObsidianDir is Obsidian's own per-user configuration directory.
	ObsidianDir string
	// VaultConfig is the obsidian.json document listing known vaults.
	VaultConfig string
	// SettingsDir holds files owned by obsidian-open.
	SettingsDir string
	// SettingsFile is the cached installation path record.
	SettingsFile string
	// LockFile guards read-modify-write cycles on VaultConfig between tool instances.
	LockFile string
}

// Resolve computes all locations for the current user and OS.
func Resolve() Paths {
	obsidianDir := GetObsidianDir()
	settingsDir := GetSettingsDir()
	return Paths{
		ObsidianDir:  obsidianDir,
		VaultConfig:  filepath.Join(obsidianDir, vaultConfigFile),
		SettingsDir:  settingsDir,
		SettingsFile: filepath.Join(settingsDir, settingsFile),
		LockFile:     filepath.Join(settingsDir, lockFile),
	}
}

// GetObsidianDir resolves the directory holding obsidian.json. OBSIDIAN_CONFIG_DIR
// wins, then the platform location Obsidian itself uses.
func GetObsidianDir() string {
	if explicit := os.Getenv("OBSIDIAN_CONFIG_DIR"); explicit != "" {
		return explicit
	}
	return filepath.Join(userConfigBase(runtime.GOOS), "obsidian")
}

// GetSettingsDir resolves the directory for obsidian-open's own settings.
func GetSettingsDir() string {
	if explicit := os.Getenv("OBSIDIAN_OPEN_CONFIG_DIR"); explicit != "" {
		return explicit
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(userConfigBase(runtime.GOOS), "ObsidianFolderOpener")
	}
	return filepath.Join(userConfigBase(runtime.GOOS), "obsidian-open")
}

// userConfigBase mirrors where Electron apps keep per-user data: the roaming
// AppData folder on Windows, and the XDG config home elsewhere (which xdg maps
// to ~/Library/Application Support on macOS).
func userConfigBase(goos string) string {
	xdg.Reload()

	if goos == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return appData
		}
		return filepath.Join(homeDir(), "AppData", "Roaming")
	}

	if xdg.ConfigHome != "" {
		return xdg.ConfigHome
	}
	return filepath.Join(homeDir(), ".config")
}

func homeDir() string {
	if xdg.Home != "" {
		return xdg.Home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return home
}
