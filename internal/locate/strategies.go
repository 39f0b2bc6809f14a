package locate

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"runtime"
	"strings"
)

// DirSource supplies a previously confirmed installation directory.
type DirSource interface {
	Directory() (string, bool)
}

// CacheStrategy yields the executable inside the cached installation directory.
type CacheStrategy struct {
	Cache    DirSource
	ExeNames []string
	Exists   func(string) bool
}

func (s CacheStrategy) Candidates() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		if s.Cache == nil {
			return
		}
		dir, ok := s.Cache.Directory()
		if !ok {
			return
		}
		yieldExisting(dir, s.ExeNames, s.Exists, TierCache, yield)
	}
}

// InstallRecordStrategy yields executables inside directories reported by the
// operating system's installation records.
type InstallRecordStrategy struct {
	Lookup   func() []string
	ExeNames []string
	Exists   func(string) bool
}

func (s InstallRecordStrategy) Candidates() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		if s.Lookup == nil {
			return
		}
		for _, dir := range s.Lookup() {
			if !yieldExisting(dir, s.ExeNames, s.Exists, TierInstallRecord, yield) {
				return
			}
		}
	}
}

// WellKnownStrategy yields a fixed list of conventional install locations.
// Existence is left to the caller.
type WellKnownStrategy struct {
	Paths []string
}

func (s WellKnownStrategy) Candidates() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for _, p := range s.Paths {
			if !yield(Candidate{Path: p, Tier: TierWellKnown}) {
				return
			}
		}
	}
}

// PromptStrategy asks the user for the installation directory. It is consulted
// only when every other tier came up empty.
type PromptStrategy struct {
	In       io.Reader
	Out      io.Writer
	ExeNames []string
}

// NewPrompt returns a prompt strategy for the current OS.
func NewPrompt(in io.Reader, out io.Writer) PromptStrategy {
	return PromptStrategy{In: in, Out: out, ExeNames: ExecutableNames(runtime.GOOS)}
}

func (s PromptStrategy) Candidates() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		fmt.Fprint(s.Out, "Obsidian was not found. Enter its installation directory (empty to skip): ")
		line, err := bufio.NewReader(s.In).ReadString('\n')
		if err != nil && line == "" {
			return
		}

		answer := strings.Trim(strings.TrimSpace(line), `"`)
		if answer == "" {
			return
		}

		if abs, err := filepath.Abs(answer); err == nil {
			answer = abs
		}
		if dirExists(answer) {
			for c := range DirCandidates(answer, s.ExeNames, TierPrompt) {
				if !yield(c) {
					return
				}
			}
			return
		}
		yield(Candidate{Path: answer, Tier: TierPrompt})
	}
}

// DirCandidates yields dir joined with each executable name, unchecked.
func DirCandidates(dir string, names []string, tier Tier) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for _, name := range names {
			if !yield(Candidate{Path: filepath.Join(dir, name), Tier: tier}) {
				return
			}
		}
	}
}

func yieldExisting(dir string, names []string, exists func(string) bool, tier Tier, yield func(Candidate) bool) bool {
	if exists == nil {
		exists = FileExists
	}
	for _, name := range names {
		p := filepath.Join(dir, name)
		if !exists(p) {
			continue
		}
		if !yield(Candidate{Path: p, Tier: tier}) {
			return false
		}
	}
	return true
}
