// Package shellmenu renders the Windows registry files that add and remove
// the "Open with Obsidian" folder context-menu entries. The files are written
// for the user to import; this package never touches the registry itself.
package shellmenu

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

const (
	// InstallFile is the name of the generated install script.
	InstallFile = "add_obsidian_context_menu.reg"
	// UninstallFile is the name of the generated removal script.
	UninstallFile = "remove_obsidian_context_menu.reg"

	header  = "Windows Registry Editor Version 5.00"
	keyName = "OpenWithObsidian"
)

// InstallScript returns the .reg content registering launcher for folders and
// folder backgrounds, using obsidianExe as the menu icon.
func InstallScript(launcher, obsidianExe string) string {
	launcherEsc := escape(launcher)
	iconEsc := escape(obsidianExe)

	lines := []string{
		header,
		"",
		`; Add "Open with Obsidian" to folder context menu`,
		`[HKEY_CLASSES_ROOT\Directory\shell\` + keyName + `]`,
		`@="Open with Obsidian"`,
		`"Icon"="` + iconEsc + `"`,
		"",
		`[HKEY_CLASSES_ROOT\Directory\shell\` + keyName + `\command]`,
		`@="\"` + launcherEsc + `\" \"%1\""`,
		"",
		"; Add to folder background context menu",
		`[HKEY_CLASSES_ROOT\Directory\Background\shell\` + keyName + `]`,
		`@="Open this folder in Obsidian"`,
		`"Icon"="` + iconEsc + `"`,
		"",
		`[HKEY_CLASSES_ROOT\Directory\Background\shell\` + keyName + `\command]`,
		`@="\"` + launcherEsc + `\" \"%V\""`,
		"",
	}
	return strings.Join(lines, "\r\n")
}

// UninstallScript returns the .reg content removing both menu entries.
func UninstallScript() string {
	lines := []string{
		header,
		"",
		`; Remove "Open with Obsidian" from folder context menu`,
		`[-HKEY_CLASSES_ROOT\Directory\shell\` + keyName + `]`,
		"",
		"; Remove from folder background context menu",
		`[-HKEY_CLASSES_ROOT\Directory\Background\shell\` + keyName + `]`,
		"",
	}
	return strings.Join(lines, "\r\n")
}

// WriteScripts renders both scripts into dir as UTF-16LE with a byte order
// mark, the encoding regedit expects for version 5.00 files.
func WriteScripts(dir, launcher, obsidianExe string) (installPath, uninstallPath string, err error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", "", fmt.Errorf("create %s: %w", dir, err)
	}

	installPath = filepath.Join(dir, InstallFile)
	if err := writeUTF16(installPath, InstallScript(launcher, obsidianExe)); err != nil {
		return "", "", err
	}

	uninstallPath = filepath.Join(dir, UninstallFile)
	if err := writeUTF16(uninstallPath, UninstallScript()); err != nil {
		return "", "", err
	}
	return installPath, uninstallPath, nil
}

func writeUTF16(path, content string) error {
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(content)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// escape doubles backslashes and quotes for a .reg string value.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
