package obsidian

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/obsidian-open/obsidian-open/internal/apperr"
)

const (
	defaultLockTimeout = 5 * time.Second
	lockRetryDelay     = 50 * time.Millisecond
)

// Registry loads and saves obsidian.json at a fixed location.
type Registry struct {
	path        string
	lockPath    string
	lockTimeout time.Duration
	logger      *zap.Logger
}

// NewRegistry returns a registry for the document at path. lockPath names an
// advisory lock file shared by concurrent obsidian-open processes; an empty
// lockPath disables locking.
func NewRegistry(path, lockPath string, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		path:        path,
		lockPath:    lockPath,
		lockTimeout: defaultLockTimeout,
		logger:      logger,
	}
}

// WithLockTimeout sets how long Lock waits for another holder to let go.
func (r *Registry) WithLockTimeout(d time.Duration) *Registry {
	r.lockTimeout = d
	return r
}

// Path returns the location of obsidian.json.
func (r *Registry) Path() string {
	return r.path
}

// Load reads and parses obsidian.json. A missing file means Obsidian has not
// been installed or started yet and is reported as apperr.ErrNotFound.
func (r *Registry) Load() (*Document, error) {
	//nolint:gosec // G304: path comes from config.Resolve
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (has Obsidian been started at least once?)", apperr.ErrNotFound, r.path)
		}
		return nil, fmt.Errorf("%w: read %s: %w", apperr.ErrIO, r.path, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.path, err)
	}
	r.logger.Debug("loaded obsidian config", zap.String("path", r.path), zap.Int("vaults", len(doc.Vaults())))
	return doc, nil
}

// Lock takes the advisory lock guarding a load/merge/save cycle. The returned
// function releases it.
func (r *Registry) Lock(ctx context.Context) (func(), error) {
	if r.lockPath == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(r.lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("%w: create lock directory: %w", apperr.ErrIO, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.lockTimeout)
	defer cancel()

	lock := flock.New(r.lockPath)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%w: lock %s: %w", apperr.ErrIO, r.lockPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: lock %s is held by another process", apperr.ErrIO, r.lockPath)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("release lock", zap.String("path", r.lockPath), zap.Error(err))
		}
	}, nil
}

// Save writes doc to a temporary file beside obsidian.json and renames it
// into place, so readers see either the old or the new document.
func (r *Registry) Save(doc *Document) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("%w: create %s: %w", apperr.ErrIO, dir, err)
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(r.path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, ".obsidian-*.json.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", apperr.ErrIO, err)
	}
	tmpPath := tmp.Name()

	fail := func(op string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %s %s: %w", apperr.ErrIO, op, tmpPath, err)
	}

	if _, err := tmp.Write(doc.Bytes()); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		r.logger.Debug("chmod temp file", zap.String("path", tmpPath), zap.Error(err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: close %s: %w", apperr.ErrIO, tmpPath, err)
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: replace %s: %w", apperr.ErrIO, r.path, err)
	}

	r.logger.Debug("saved obsidian config", zap.String("path", r.path))
	return nil
}
