package locate

import (
	"path/filepath"
	"strings"
)

// isObsidianEntry reports whether an uninstall record's display name belongs
// to Obsidian itself rather than a plugin or unrelated tool.
func isObsidianEntry(displayName string) bool {
	name := strings.TrimSpace(displayName)
	return name == "Obsidian" || strings.HasPrefix(name, "Obsidian ")
}

// commandExecutable extracts the program path from a shell command line such
// as `"C:\Program Files\Obsidian\Obsidian.exe" "%1"`.
func commandExecutable(command string) string {
	command = strings.TrimSpace(command)
	if command == "" {
		return ""
	}
	if command[0] == '"' {
		if end := strings.IndexByte(command[1:], '"'); end >= 0 {
			return command[1 : end+1]
		}
		return ""
	}
	if i := strings.IndexByte(command, ' '); i >= 0 {
		return command[:i]
	}
	return command
}

// dedupeDirs drops empty and repeated directories while keeping order.
func dedupeDirs(dirs []string) []string {
	seen := make(map[string]bool, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		d = strings.Trim(strings.TrimSpace(d), `"`)
		if d == "" {
			continue
		}
		key := strings.ToLower(filepath.Clean(d))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}

// iconExecutable strips the ",<index>" resource suffix from a DisplayIcon value.
func iconExecutable(icon string) string {
	icon = strings.TrimSpace(icon)
	if i := strings.LastIndexByte(icon, ','); i > 0 {
		if strings.Trim(icon[i+1:], "-0123456789") == "" {
			icon = icon[:i]
		}
	}
	return commandExecutable(icon)
}
