// Package locate finds the Obsidian executable by walking an ordered list of
// resolution strategies, most trusted first.
package locate

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/obsidian-open/obsidian-open/internal/apperr"
)

// Tier identifies which strategy produced a candidate.
type Tier int

const (
	TierCache Tier = iota + 1
	TierInstallRecord
	TierWellKnown
	TierPrompt
)

func (t Tier) String() string {
	switch t {
	case TierCache:
		return "cache"
	case TierInstallRecord:
		return "install-record"
	case TierWellKnown:
		return "well-known"
	case TierPrompt:
		return "prompt"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Candidate is one possible location of the Obsidian executable.
type Candidate struct {
	Path string
	Tier Tier
}

// Dir returns the installation directory a candidate implies.
func (c Candidate) Dir() string {
	return filepath.Dir(c.Path)
}

// Strategy yields candidates for one resolution tier. Candidates must be
// produced lazily so later tiers do no work once an earlier one succeeds.
type Strategy interface {
	Candidates() iter.Seq[Candidate]
}

// Resolver concatenates strategies in order.
type Resolver struct {
	Strategies []Strategy
	// Exists reports whether a candidate path is usable. Defaults to FileExists.
	Exists func(path string) bool
	Logger *zap.Logger
}

// Resolve returns the candidate sequence. Each call starts a fresh walk.
func (r *Resolver) Resolve() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for _, s := range r.Strategies {
			for c := range s.Candidates() {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// FindFirstExisting walks Resolve and returns the first candidate on disk.
func (r *Resolver) FindFirstExisting() (Candidate, error) {
	exists := r.Exists
	if exists == nil {
		exists = FileExists
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	i := 0
	return FindFirstExisting(r.Resolve(), func(path string) bool {
		i++
		ok := exists(path)
		logger.Debug("probe candidate", zap.Int("n", i), zap.String("path", path), zap.Bool("exists", ok))
		return ok
	})
}

// FindFirstExisting returns the first candidate in seq for which exists is true,
// or apperr.ErrNotFound when the sequence is exhausted.
func FindFirstExisting(seq iter.Seq[Candidate], exists func(string) bool) (Candidate, error) {
	for c := range seq {
		if exists(c.Path) {
			return c, nil
		}
	}
	return Candidate{}, fmt.Errorf("%w: no Obsidian executable in any known location", apperr.ErrNotFound)
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
