package launch

import (
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// DetachedStarter starts a process in its own session with no standard
// streams attached and releases it immediately.
type DetachedStarter struct {
	Logger *zap.Logger
}

func (s DetachedStarter) Start(path string, args ...string) error {
	cmd := exec.Command(path, args...)
	cmd.SysProcAttr = detachedAttr()
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", path, err)
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return fmt.Errorf("release %s: %w", path, err)
	}

	if s.Logger != nil {
		s.Logger.Debug("started process", zap.String("path", path), zap.Int("pid", pid))
	}
	return nil
}
