package launch

import (
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetachedStarterStartsProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no portable no-op binary on Windows")
	}
	bin, err := exec.LookPath("true")
	if err != nil {
		t.Skipf("true not available: %v", err)
	}

	require.NoError(t, DetachedStarter{}.Start(bin))
}

func TestDetachedStarterMissingBinary(t *testing.T) {
	err := DetachedStarter{}.Start(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
