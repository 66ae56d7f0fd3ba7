package command

import (
	"fmt"
	"log/slog"
	"os/exec"
)

// Spawner starts a detached argv process without waiting for it to finish.
type Spawner interface {
	Start(argv []string) error
}

// NewSpawner returns the process-backed spawner used in production.
func NewSpawner(logger *slog.Logger) Spawner {
	return processSpawner{logger: logger}
}

type processSpawner struct {
	logger *slog.Logger
}

// Start launches argv as an explicit argument vector. Only failures to start
// the process are reported; the exit status is reaped and discarded.
func (s processSpawner) Start(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", argv[0], err)
	}

	go func() {
		err := cmd.Wait()
		if err != nil && s.logger != nil {
			s.logger.Debug("spawned command exited with error", "command", argv[0], "error", err.Error())
		}
	}()
	return nil
}
