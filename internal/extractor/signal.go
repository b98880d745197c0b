package extractor

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// signalGroup delivers sig to the process group led by proc, falling back to
// the process alone when the group cannot be resolved.
func signalGroup(proc *os.Process, sig syscall.Signal) {
	if proc == nil {
		return
	}
	if pgid, err := syscall.Getpgid(proc.Pid); err == nil {
		_ = syscall.Kill(-pgid, sig)
		return
	}
	_ = proc.Signal(sig)
}

func signalOf(exitErr *exec.ExitError) (string, bool) {
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok || !status.Signaled() {
		return "", false
	}
	return status.Signal().String(), true
}

func isSignaled(err error) bool {
	var ee *ExitError
	return errors.As(err, &ee) && ee.Signal != ""
}
