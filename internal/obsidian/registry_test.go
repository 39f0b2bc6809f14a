package obsidian

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/require"

	"github.com/obsidian-open/obsidian-open/internal/apperr"
)

func jsonString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

func replaceSlashes(s string) string {
	return strings.ReplaceAll(s, "/", `\`)
}

func setupRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "obsidian", "obsidian.json")
	return NewRegistry(path, filepath.Join(tmp, "state", "obsidian.lock"), nil), path
}

func TestLoadMissingDocument(t *testing.T) {
	reg, _ := setupRegistry(t)

	_, err := reg.Load()
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLoadInvalidDocument(t *testing.T) {
	reg, path := setupRegistry(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := reg.Load()
	require.ErrorIs(t, err, apperr.ErrParse)
}

func TestSaveCreatesParentAndRoundTrips(t *testing.T) {
	reg, path := setupRegistry(t)
	doc := NewDocument()
	id, err := doc.Merge(t.TempDir(), time.UnixMilli(42))
	require.NoError(t, err)

	require.NoError(t, reg.Save(doc))

	loaded, err := reg.Load()
	require.NoError(t, err)
	require.Equal(t, string(doc.Bytes()), string(loaded.Bytes()))
	active, ok := loaded.Active()
	require.True(t, ok)
	require.Equal(t, id, active.ID)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestRoundTripKeepsUnknownFieldsByteForByte(t *testing.T) {
	reg, path := setupRegistry(t)
	original := `{"vaults":{"x":{"path":"/x","ts":1,"sync":{"remote":"r"}}},"cli":{"enabled":true}}`
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(original), 0o600))

	doc, err := reg.Load()
	require.NoError(t, err)
	require.NoError(t, reg.Save(doc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, original, string(data))
}

func TestFailedMergeLeavesFileUntouched(t *testing.T) {
	reg, path := setupRegistry(t)
	original := `{"vaults":{"x":{"path":"/x","ts":1,"open":true}}}`
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(original), 0o600))

	doc, err := reg.Load()
	require.NoError(t, err)
	_, err = doc.Merge(filepath.Join(t.TempDir(), "nope"), time.Now())
	require.ErrorIs(t, err, apperr.ErrNotFound)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, original, string(data))
}

func TestSaveFailureReportsIOError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	reg := NewRegistry(filepath.Join(blocker, "obsidian.json"), "", nil)
	err := reg.Save(NewDocument())
	require.ErrorIs(t, err, apperr.ErrIO)
}

func TestLockIsReleased(t *testing.T) {
	reg, _ := setupRegistry(t)
	reg.lockTimeout = 200 * time.Millisecond
	ctx := context.Background()

	unlock, err := reg.Lock(ctx)
	require.NoError(t, err)
	unlock()

	unlock, err = reg.Lock(ctx)
	require.NoError(t, err)
	unlock()
}

func TestLockTimesOutWhileHeldElsewhere(t *testing.T) {
	tmp := t.TempDir()
	lockPath := filepath.Join(tmp, "state", "obsidian.lock")
	require.NoError(t, os.MkdirAll(filepath.Dir(lockPath), 0o750))

	other := flock.New(lockPath)
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	t.Cleanup(func() { _ = other.Unlock() })

	reg := NewRegistry(filepath.Join(tmp, "obsidian.json"), lockPath, nil).WithLockTimeout(100 * time.Millisecond)

	start := time.Now()
	_, err = reg.Lock(context.Background())
	require.ErrorIs(t, err, apperr.ErrIO)
	require.Less(t, time.Since(start), 2*time.Second)
}
