// Package settings persists the cached Obsidian installation directory.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Entry is the on-disk cache record. Nil fields are written as null.
type Entry struct {
	ObsidianPath *string `json:"obsidian_path"`
	LastUpdated  *int64  `json:"last_updated"`
}

// Store reads and writes the cache record at a fixed path.
type Store struct {
	path   string
	now    func() time.Time
	logger *zap.Logger
}

// NewStore returns a store backed by the file at path.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, now: time.Now, logger: logger}
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted entry, or a zero Entry when the file is missing
// or unreadable. It never fails.
func (s *Store) Load() Entry {
	//nolint:gosec // G304: path comes from config.Resolve
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("read settings", zap.String("path", s.path), zap.Error(err))
		}
		return Entry{}
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn("parse settings", zap.String("path", s.path), zap.Error(err))
		return Entry{}
	}
	return entry
}

// Directory returns the cached installation directory if one is recorded and
// still exists on disk.
func (s *Store) Directory() (string, bool) {
	entry := s.Load()
	if entry.ObsidianPath == nil || *entry.ObsidianPath == "" {
		return "", false
	}

	dir := *entry.ObsidianPath
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		s.logger.Debug("cached obsidian directory is stale", zap.String("dir", dir))
		return "", false
	}
	return dir, true
}

// Save records dir as the installation directory, made absolute so the entry
// is usable from any working directory. Failures are logged and reported as
// false.
func (s *Store) Save(dir string) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		s.logger.Warn("resolve obsidian directory", zap.String("dir", dir), zap.Error(err))
		return false
	}
	dir = abs
	ts := s.now().Unix()
	entry := Entry{ObsidianPath: &dir, LastUpdated: &ts}

	if err := s.write(entry); err != nil {
		s.logger.Warn("save settings", zap.String("path", s.path), zap.Error(err))
		return false
	}
	s.logger.Debug("saved obsidian directory", zap.String("dir", dir), zap.String("path", s.path))
	return true
}

func (s *Store) write(entry Entry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp settings file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp settings file: %w", err)
	}
	return nil
}
