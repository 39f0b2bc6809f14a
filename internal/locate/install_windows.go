//go:build windows

package locate

import (
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

var uninstallRoots = []struct {
	key  registry.Key
	path string
}{
	{registry.CURRENT_USER, `Software\Microsoft\Windows\CurrentVersion\Uninstall`},
	{registry.LOCAL_MACHINE, `Software\Microsoft\Windows\CurrentVersion\Uninstall`},
	{registry.LOCAL_MACHINE, `Software\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`},
}

// InstallDirs returns Obsidian installation directories recorded in the
// per-user and per-machine uninstall keys and the obsidian:// URL handler.
func InstallDirs() []string {
	var dirs []string
	for _, root := range uninstallRoots {
		dirs = append(dirs, uninstallLocations(root.key, root.path)...)
	}
	if exe := protocolHandler(); exe != "" {
		dirs = append(dirs, filepath.Dir(exe))
	}
	return dedupeDirs(dirs)
}

func uninstallLocations(root registry.Key, path string) []string {
	k, err := registry.OpenKey(root, path, registry.ENUMERATE_SUB_KEYS|registry.QUERY_VALUE)
	if err != nil {
		return nil
	}
	defer k.Close()

	names, err := k.ReadSubKeyNames(-1)
	if err != nil {
		return nil
	}

	var dirs []string
	for _, name := range names {
		sub, err := registry.OpenKey(k, name, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		displayName, _, err := sub.GetStringValue("DisplayName")
		if err == nil && isObsidianEntry(displayName) {
			if location, _, err := sub.GetStringValue("InstallLocation"); err == nil {
				dirs = append(dirs, location)
			}
			if icon, _, err := sub.GetStringValue("DisplayIcon"); err == nil {
				if exe := iconExecutable(icon); exe != "" {
					dirs = append(dirs, filepath.Dir(exe))
				}
			}
		}
		sub.Close()
	}
	return dirs
}

func protocolHandler() string {
	k, err := registry.OpenKey(registry.CLASSES_ROOT, `obsidian\shell\open\command`, registry.QUERY_VALUE)
	if err != nil {
		return ""
	}
	defer k.Close()

	command, _, err := k.GetStringValue("")
	if err != nil {
		return ""
	}
	return commandExecutable(command)
}
