package shellmenu

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func TestInstallScriptEscapesPaths(t *testing.T) {
	script := InstallScript(`C:\Program Files\Obsidian\obsidian-open.exe`, `C:\Program Files\Obsidian\Obsidian.exe`)

	require.True(t, strings.HasPrefix(script, "Windows Registry Editor Version 5.00\r\n"))
	require.Contains(t, script, `"Icon"="C:\\Program Files\\Obsidian\\Obsidian.exe"`)
	require.Contains(t, script, `@="\"C:\\Program Files\\Obsidian\\obsidian-open.exe\" \"%1\""`)
	require.Contains(t, script, `\"%V\""`)
	require.Equal(t, 2, strings.Count(script, `\command]`))
}

func TestUninstallScriptRemovesBothKeys(t *testing.T) {
	script := UninstallScript()
	require.Contains(t, script, `[-HKEY_CLASSES_ROOT\Directory\shell\OpenWithObsidian]`)
	require.Contains(t, script, `[-HKEY_CLASSES_ROOT\Directory\Background\shell\OpenWithObsidian]`)
}

func TestWriteScriptsEncodesUTF16(t *testing.T) {
	dir := t.TempDir()

	installPath, uninstallPath, err := WriteScripts(dir, `C:\o\open.exe`, `C:\o\Obsidian.exe`)
	require.NoError(t, err)

	raw, err := os.ReadFile(installPath)
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xFE}, raw[:2])

	decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(raw)
	require.NoError(t, err)
	require.Equal(t, InstallScript(`C:\o\open.exe`, `C:\o\Obsidian.exe`), string(decoded))

	_, err = os.Stat(uninstallPath)
	require.NoError(t, err)
}
