//go:build !windows

package host

import (
	"errors"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
)

// findProcesses shells out to pgrep. Exit status 1 means no match.
func findProcesses(name string) ([]uint32, error) {
	out, err := exec.Command("pgrep", "-i", "-x", strings.TrimSuffix(name, ".exe")).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, err
	}

	var pids []uint32
	for _, field := range strings.Fields(string(out)) {
		pid, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			continue
		}
		pids = append(pids, uint32(pid))
	}
	return pids, nil
}

func terminate(pid uint32) error {
	p, err := os.FindProcess(int(pid))
	if err != nil {
		return err
	}
	return p.Signal(syscall.SIGKILL)
}
