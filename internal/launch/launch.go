// Package launch sequences registering a folder as the open Obsidian vault
// and starting Obsidian.
package launch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/obsidian-open/obsidian-open/internal/locate"
	"github.com/obsidian-open/obsidian-open/internal/obsidian"
)

// Stage is one step of a run, in execution order.
type Stage int

const (
	StageLoadConfig Stage = iota + 1
	StageClearActiveFlags
	StageMergeVault
	StageSaveConfig
	StageResolveExecutable
	StageLaunch
)

func (s Stage) String() string {
	switch s {
	case StageLoadConfig:
		return "load config"
	case StageClearActiveFlags:
		return "clear active flags"
	case StageMergeVault:
		return "merge vault"
	case StageSaveConfig:
		return "save config"
	case StageResolveExecutable:
		return "resolve executable"
	case StageLaunch:
		return "launch"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Outcome summarizes a run.
type Outcome int

const (
	// OutcomeFailed means the vault configuration was not written.
	OutcomeFailed Outcome = iota
	// OutcomeConfigured means the vault was saved but Obsidian was not started.
	OutcomeConfigured
	// OutcomeSuccess means the vault was saved and Obsidian was started
	// (or launching was skipped on request).
	OutcomeSuccess
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeConfigured:
		return "configured, launch failed"
	default:
		return "failed"
	}
}

// Result reports how far a run got.
type Result struct {
	// Stage is the last stage attempted.
	Stage      Stage
	VaultID    string
	Executable string
	Tier       locate.Tier
	Configured bool
	Launched   bool
	Err        error
}

// Outcome classifies the result.
func (r Result) Outcome() Outcome {
	switch {
	case r.Configured && r.Err == nil:
		return OutcomeSuccess
	case r.Configured:
		return OutcomeConfigured
	default:
		return OutcomeFailed
	}
}

// Registry is the obsidian.json store.
type Registry interface {
	Load() (*obsidian.Document, error)
	Save(doc *obsidian.Document) error
	Lock(ctx context.Context) (func(), error)
}

// Finder resolves the Obsidian executable.
type Finder interface {
	FindFirstExisting() (locate.Candidate, error)
}

// PathCache remembers the installation directory between runs.
type PathCache interface {
	Save(dir string) bool
}

// Starter starts a process without waiting for it.
type Starter interface {
	Start(path string, args ...string) error
}

// Orchestrator runs the stages against injected collaborators.
type Orchestrator struct {
	Registry Registry
	Finder   Finder
	Cache    PathCache
	Starter  Starter
	Logger   *zap.Logger
	Now      func() time.Time
	// SkipLaunch stops after the configuration is saved.
	SkipLaunch bool
}

// Run registers folder as the open vault, then resolves and starts Obsidian.
// Any stage failure stops the run; nothing is retried.
func (o *Orchestrator) Run(ctx context.Context, folder string) Result {
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := o.Now
	if now == nil {
		now = time.Now
	}

	var res Result
	fail := func(stage Stage, err error) Result {
		res.Stage = stage
		res.Err = fmt.Errorf("%s: %w", stage, err)
		logger.Debug("stage failed", zap.Stringer("stage", stage), zap.Error(err))
		return res
	}

	unlock, err := o.Registry.Lock(ctx)
	if err != nil {
		logger.Warn("continuing without config lock", zap.Error(err))
		unlock = func() {}
	}
	cfgErr := func() error {
		defer unlock()

		res.Stage = StageLoadConfig
		doc, err := o.Registry.Load()
		if err != nil {
			return err
		}

		res.Stage = StageClearActiveFlags
		if err := doc.ClearActive(); err != nil {
			return err
		}

		res.Stage = StageMergeVault
		id, err := doc.Merge(folder, now())
		if err != nil {
			return err
		}
		res.VaultID = id
		logger.Info("vault merged", zap.String("id", id), zap.String("folder", folder))

		res.Stage = StageSaveConfig
		return o.Registry.Save(doc)
	}()
	if cfgErr != nil {
		return fail(res.Stage, cfgErr)
	}
	res.Configured = true

	if o.SkipLaunch {
		return res
	}

	res.Stage = StageResolveExecutable
	candidate, err := o.Finder.FindFirstExisting()
	if err != nil {
		return fail(StageResolveExecutable, err)
	}
	res.Executable = candidate.Path
	res.Tier = candidate.Tier
	logger.Info("obsidian resolved", zap.String("path", candidate.Path), zap.Stringer("tier", candidate.Tier))

	if candidate.Tier != locate.TierCache && o.Cache != nil {
		if !o.Cache.Save(candidate.Dir()) {
			logger.Warn("could not cache obsidian directory", zap.String("dir", candidate.Dir()))
		}
	}

	res.Stage = StageLaunch
	if err := o.Starter.Start(candidate.Path); err != nil {
		return fail(StageLaunch, err)
	}
	res.Launched = true
	return res
}
