package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/hectorgimenez/questengine/internal/utils"
)

var ErrNotStarted = errors.New("host process did not start")

// Process finds the host by executable name. It never holds a handle between
// calls, so a restarted host is picked up transparently.
type Process struct {
	logger *slog.Logger
	name   string
}

func New(logger *slog.Logger, name string) *Process {
	return &Process{logger: logger, name: name}
}

func (p *Process) Name() string {
	return p.name
}

// IsRunning reports false only when the process table was read and the host
// was not in it. A failed lookup counts as running.
func (p *Process) IsRunning() bool {
	pids, err := findProcesses(p.name)
	if err != nil {
		p.logger.Warn("Could not list processes", slog.String("process", p.name), slog.Any("error", err))
		return true
	}
	return len(pids) > 0
}

// Kill terminates every instance of the host. It succeeds when none is
// running.
func (p *Process) Kill() error {
	pids, err := findProcesses(p.name)
	if err != nil {
		return fmt.Errorf("listing processes: %w", err)
	}

	var errs []error
	for _, pid := range pids {
		if err = terminate(pid); err != nil {
			errs = append(errs, fmt.Errorf("terminating pid %d: %w", pid, err))
			continue
		}
		p.logger.Info("Host process terminated", slog.String("process", p.name), slog.Uint64("pid", uint64(pid)))
	}

	return errors.Join(errs...)
}

// Launch starts the host executable and waits until it shows up in the
// process table.
func (p *Process) Launch(ctx context.Context, executable string, args []string, timeout time.Duration) error {
	cmd := exec.Command(executable, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", executable, err)
	}
	// The host outlives us, only reap it if it exits first
	go func() { _ = cmd.Wait() }()

	p.logger.Info("Host process launched", slog.String("executable", executable), slog.Int("pid", cmd.Process.Pid))

	return p.WaitRunning(ctx, timeout)
}

func (p *Process) WaitRunning(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		if pids, err := findProcesses(p.name); err == nil && len(pids) > 0 {
			return nil
		}
		if !utils.Wait(ctx, 250*time.Millisecond) {
			return fmt.Errorf("%w: %s", ErrNotStarted, p.name)
		}
	}
}

// matches compares process names case insensitively and ignores a trailing
// .exe on either side.
func matches(name, candidate string) bool {
	trim := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		return strings.TrimSuffix(s, ".exe")
	}
	return trim(name) == trim(candidate)
}
