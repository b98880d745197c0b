package extractor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSpawn matches any *SpawnError via errors.Is.
	ErrSpawn = errors.New("failed to spawn producer")

	// ErrNoResult indicates a lookup that produced no identifier.
	ErrNoResult = errors.New("no matching video found")
)

// SpawnError reports that the producer binary could not be started at all
// (missing binary, permission denied, rejected arguments).
type SpawnError struct {
	Binary string
	Err    error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Binary, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSpawn) hold for every SpawnError.
func (e *SpawnError) Is(target error) bool { return target == ErrSpawn }

// ExitError reports a producer that started but did not exit cleanly.
type ExitError struct {
	Code   int    // -1 when the process was killed by a signal
	Signal string // set when the process was killed by a signal
	Stderr string // tail of the process's standard error
	Err    error
}

func (e *ExitError) Error() string {
	var b strings.Builder
	if e.Signal != "" {
		fmt.Fprintf(&b, "producer killed by %s", e.Signal)
	} else {
		fmt.Fprintf(&b, "producer exited with status %d", e.Code)
	}
	if msg := lastLine(e.Stderr); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	return b.String()
}

func (e *ExitError) Unwrap() error { return e.Err }

// lastLine returns the last non-empty line of s, trimmed.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
