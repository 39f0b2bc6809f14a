package launch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/obsidian-open/obsidian-open/internal/apperr"
	"github.com/obsidian-open/obsidian-open/internal/locate"
	"github.com/obsidian-open/obsidian-open/internal/obsidian"
)

type fakeFinder struct {
	candidate locate.Candidate
	err       error
	calls     int
}

func (f *fakeFinder) FindFirstExisting() (locate.Candidate, error) {
	f.calls++
	return f.candidate, f.err
}

type fakeCache struct {
	saved []string
	ok    bool
}

func (c *fakeCache) Save(dir string) bool {
	c.saved = append(c.saved, dir)
	return c.ok
}

type fakeStarter struct {
	started []string
	err     error
}

func (s *fakeStarter) Start(path string, _ ...string) error {
	if s.err != nil {
		return s.err
	}
	s.started = append(s.started, path)
	return nil
}

type fixture struct {
	orch     *Orchestrator
	registry *obsidian.Registry
	path     string
	lockPath string
	finder   *fakeFinder
	cache    *fakeCache
	starter  *fakeStarter
}

func setupFixture(t *testing.T, initial string) *fixture {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "obsidian", "obsidian.json")
	if initial != "" {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(initial), 0o600))
	}

	lockPath := filepath.Join(tmp, "state", "obsidian.lock")
	f := &fixture{
		registry: obsidian.NewRegistry(path, lockPath, nil).WithLockTimeout(100 * time.Millisecond),
		path:     path,
		lockPath: lockPath,
		finder:   &fakeFinder{candidate: locate.Candidate{Path: "/opt/Obsidian/obsidian", Tier: locate.TierWellKnown}},
		cache:    &fakeCache{ok: true},
		starter:  &fakeStarter{},
	}
	f.orch = &Orchestrator{
		Registry: f.registry,
		Finder:   f.finder,
		Cache:    f.cache,
		Starter:  f.starter,
		Logger:   zap.NewNop(),
		Now:      func() time.Time { return time.UnixMilli(1234) },
	}
	return f
}

func TestRunSuccess(t *testing.T) {
	f := setupFixture(t, `{"vaults":{}}`)
	folder := t.TempDir()

	res := f.orch.Run(context.Background(), folder)
	require.NoError(t, res.Err)
	require.Equal(t, OutcomeSuccess, res.Outcome())
	require.Equal(t, StageLaunch, res.Stage)
	require.True(t, res.Launched)
	require.Equal(t, obsidian.VaultID(folder), res.VaultID)
	require.Equal(t, []string{"/opt/Obsidian/obsidian"}, f.starter.started)
	require.Equal(t, []string{filepath.Dir("/opt/Obsidian/obsidian")}, f.cache.saved)

	doc, err := f.registry.Load()
	require.NoError(t, err)
	active, ok := doc.Active()
	require.True(t, ok)
	require.Equal(t, folder, active.Path)
	require.Equal(t, int64(1234), active.Timestamp)
}

func TestRunDoesNotRewriteCacheOnCacheHit(t *testing.T) {
	f := setupFixture(t, `{"vaults":{}}`)
	f.finder.candidate.Tier = locate.TierCache

	res := f.orch.Run(context.Background(), t.TempDir())
	require.Equal(t, OutcomeSuccess, res.Outcome())
	require.Empty(t, f.cache.saved)
}

func TestRunCacheWriteFailureIsNotFatal(t *testing.T) {
	f := setupFixture(t, `{"vaults":{}}`)
	f.cache.ok = false

	res := f.orch.Run(context.Background(), t.TempDir())
	require.Equal(t, OutcomeSuccess, res.Outcome())
	require.Len(t, f.starter.started, 1)
}

func TestRunMissingDocumentFails(t *testing.T) {
	f := setupFixture(t, "")

	res := f.orch.Run(context.Background(), t.TempDir())
	require.Equal(t, OutcomeFailed, res.Outcome())
	require.Equal(t, StageLoadConfig, res.Stage)
	require.ErrorIs(t, res.Err, apperr.ErrNotFound)
	require.Zero(t, f.finder.calls)
	require.Empty(t, f.starter.started)
}

func TestRunCorruptDocumentFails(t *testing.T) {
	f := setupFixture(t, `{"vaults": nope}`)

	res := f.orch.Run(context.Background(), t.TempDir())
	require.Equal(t, OutcomeFailed, res.Outcome())
	require.ErrorIs(t, res.Err, apperr.ErrParse)
}

func TestRunMissingFolderLeavesDocumentUntouched(t *testing.T) {
	original := `{"vaults":{"a":{"path":"/a","ts":1,"open":true}}}`
	f := setupFixture(t, original)

	res := f.orch.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Equal(t, OutcomeFailed, res.Outcome())
	require.Equal(t, StageMergeVault, res.Stage)
	require.ErrorIs(t, res.Err, apperr.ErrNotFound)

	data, err := os.ReadFile(f.path)
	require.NoError(t, err)
	require.Equal(t, original, string(data))
}

func TestRunUnresolvedExecutableIsConfiguredOnly(t *testing.T) {
	f := setupFixture(t, `{"vaults":{}}`)
	f.finder.err = apperr.ErrNotFound
	folder := t.TempDir()

	res := f.orch.Run(context.Background(), folder)
	require.Equal(t, OutcomeConfigured, res.Outcome())
	require.Equal(t, StageResolveExecutable, res.Stage)
	require.True(t, res.Configured)
	require.False(t, res.Launched)
	require.ErrorIs(t, res.Err, apperr.ErrNotFound)

	doc, err := f.registry.Load()
	require.NoError(t, err)
	active, ok := doc.Active()
	require.True(t, ok)
	require.Equal(t, folder, active.Path)
}

func TestRunStartFailureIsConfiguredOnly(t *testing.T) {
	f := setupFixture(t, `{"vaults":{}}`)
	f.starter.err = errors.New("exec format error")

	res := f.orch.Run(context.Background(), t.TempDir())
	require.Equal(t, OutcomeConfigured, res.Outcome())
	require.Equal(t, StageLaunch, res.Stage)
}

func TestRunSkipLaunch(t *testing.T) {
	f := setupFixture(t, `{"vaults":{}}`)
	f.orch.SkipLaunch = true

	res := f.orch.Run(context.Background(), t.TempDir())
	require.Equal(t, OutcomeSuccess, res.Outcome())
	require.Equal(t, StageSaveConfig, res.Stage)
	require.Zero(t, f.finder.calls)
	require.False(t, res.Launched)
}

func TestRunProceedsWhenLockIsHeld(t *testing.T) {
	f := setupFixture(t, `{"vaults":{}}`)
	require.NoError(t, os.MkdirAll(filepath.Dir(f.lockPath), 0o750))
	other := flock.New(f.lockPath)
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	t.Cleanup(func() { _ = other.Unlock() })

	_, err = f.registry.Lock(context.Background())
	require.ErrorIs(t, err, apperr.ErrIO)

	folder := t.TempDir()
	res := f.orch.Run(context.Background(), folder)
	require.NoError(t, res.Err)
	require.Equal(t, OutcomeSuccess, res.Outcome())

	doc, err := f.registry.Load()
	require.NoError(t, err)
	active, ok := doc.Active()
	require.True(t, ok)
	require.Equal(t, folder, active.Path)
}

func TestStageAndOutcomeStrings(t *testing.T) {
	require.Equal(t, "merge vault", StageMergeVault.String())
	require.Equal(t, "configured, launch failed", OutcomeConfigured.String())
}
