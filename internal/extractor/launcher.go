package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"audio-relay/internal/logging"
	"audio-relay/internal/metrics"

	"github.com/google/uuid"
)

// DefaultArgs selects audio-only extraction of a single video, converted to
// mp3 and written to standard output. The target URL is appended last.
var DefaultArgs = []string{
	"-x",
	"--audio-format", "mp3",
	"--no-playlist",
	"--quiet",
	"--no-progress",
	"-o", "-",
}

// DefaultTerminateGrace is how long a producer gets between SIGTERM and SIGKILL.
const DefaultTerminateGrace = 2 * time.Second

// Config controls how producers are launched.
type Config struct {
	// Binary is the producer executable, looked up in PATH when not absolute.
	Binary string
	// Args is the fixed argument template; the target is appended after it.
	Args []string
	// CaptureStderr keeps the tail of stderr for error reporting. When false
	// stderr is discarded.
	CaptureStderr bool
	// TerminateGrace is the delay before a terminated producer is killed.
	TerminateGrace time.Duration
	// WaitDelay bounds how long Wait blocks on stdio after the process exits.
	WaitDelay time.Duration
}

// DefaultConfig returns the launcher configuration for yt-dlp.
func DefaultConfig(binary string) Config {
	if binary == "" {
		binary = "yt-dlp"
	}
	return Config{
		Binary:         binary,
		Args:           append([]string(nil), DefaultArgs...),
		CaptureStderr:  true,
		TerminateGrace: DefaultTerminateGrace,
		WaitDelay:      5 * time.Second,
	}
}

// Launcher starts producer processes and tracks the ones still alive.
type Launcher struct {
	config    Config
	processes map[string]*Process
	processMu sync.Mutex
}

// New creates a Launcher.
func New(config Config) *Launcher {
	if config.TerminateGrace <= 0 {
		config.TerminateGrace = DefaultTerminateGrace
	}
	return &Launcher{
		config:    config,
		processes: make(map[string]*Process),
	}
}

// Binary returns the configured producer executable.
func (l *Launcher) Binary() string {
	return l.config.Binary
}

// Launch starts the producer for target with stdout piped. The caller owns
// the returned Process and must eventually call Wait on it.
//
// A failure to start is returned as a *SpawnError. The launcher never reads
// the producer's output itself.
func (l *Launcher) Launch(ctx context.Context, target string) (*Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	args := make([]string, 0, len(l.config.Args)+1)
	args = append(args, l.config.Args...)
	args = append(args, target)

	cmd := exec.Command(l.config.Binary, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.WaitDelay = l.config.WaitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		metrics.ProducerSpawnsTotal.WithLabelValues("error").Inc()
		return nil, &SpawnError{Binary: l.config.Binary, Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	var stderr *tailBuffer
	if l.config.CaptureStderr {
		stderr = newTailBuffer(stderrTailSize)
		cmd.Stderr = stderr
	}

	if err := cmd.Start(); err != nil {
		metrics.ProducerSpawnsTotal.WithLabelValues("error").Inc()
		return nil, &SpawnError{Binary: l.config.Binary, Err: err}
	}
	metrics.ProducerSpawnsTotal.WithLabelValues("success").Inc()

	p := &Process{
		ID:      uuid.NewString(),
		Target:  target,
		Started: time.Now(),
		cmd:     cmd,
		stdout:  stdout,
		stderr:  stderr,
		grace:   l.config.TerminateGrace,
		exited:  make(chan struct{}),
	}
	p.release = func() { l.forget(p.ID) }

	l.processMu.Lock()
	l.processes[p.ID] = p
	l.processMu.Unlock()

	logging.Debug("Started producer %s (pid %d) for %s", p.ID, cmd.Process.Pid, target)
	return p, nil
}

func (l *Launcher) forget(id string) {
	l.processMu.Lock()
	delete(l.processes, id)
	l.processMu.Unlock()
}

// Active returns the number of producers that have not been reaped yet.
func (l *Launcher) Active() int {
	l.processMu.Lock()
	defer l.processMu.Unlock()
	return len(l.processes)
}

// Cleanup terminates all live producers. Reaping stays with each owner.
func (l *Launcher) Cleanup() {
	l.processMu.Lock()
	live := make([]*Process, 0, len(l.processes))
	for _, p := range l.processes {
		live = append(live, p)
	}
	l.processMu.Unlock()

	for _, p := range live {
		logging.Info("Terminating producer %s for: %s", p.ID, p.Target)
		p.Terminate()
	}
}

// Process is one running producer. It owns the stdout pipe for its lifetime.
type Process struct {
	ID      string
	Target  string
	Started time.Time

	cmd     *exec.Cmd
	stdout  io.ReadCloser
	stderr  *tailBuffer
	grace   time.Duration
	release func()

	waitOnce sync.Once
	waitErr  error
	exited   chan struct{}

	termOnce  sync.Once
	killTimer *time.Timer
	timerMu   sync.Mutex
}

// Stdout returns the read side of the producer's standard output.
func (p *Process) Stdout() io.ReadCloser {
	return p.stdout
}

// Pid returns the operating system process ID.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// StderrTail returns the last few KiB of standard error, if captured.
func (p *Process) StderrTail() string {
	if p.stderr == nil {
		return ""
	}
	return p.stderr.String()
}

// Exited is closed once the process has been reaped.
func (p *Process) Exited() <-chan struct{} {
	return p.exited
}

// Wait reaps the process. It must only be called once all reads from Stdout
// have finished or Stdout has been closed. Subsequent calls return the same
// result. A non-zero exit is returned as an *ExitError.
func (p *Process) Wait() error {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()
		p.waitErr = p.exitError(err)
		close(p.exited)

		p.timerMu.Lock()
		if p.killTimer != nil {
			p.killTimer.Stop()
		}
		p.timerMu.Unlock()

		if p.release != nil {
			p.release()
		}

		switch {
		case p.waitErr == nil:
			metrics.ProducerExitsTotal.WithLabelValues("ok").Inc()
		case isSignaled(p.waitErr):
			metrics.ProducerExitsTotal.WithLabelValues("signaled").Inc()
		default:
			metrics.ProducerExitsTotal.WithLabelValues("error").Inc()
		}
	})
	return p.waitErr
}

func (p *Process) exitError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		// WaitDelay expiry and similar reap problems after a clean exit.
		if errors.Is(err, exec.ErrWaitDelay) && p.cmd.ProcessState != nil && p.cmd.ProcessState.Success() {
			return nil
		}
		return &ExitError{Code: -1, Stderr: p.StderrTail(), Err: err}
	}

	ee := &ExitError{Code: exitErr.ExitCode(), Stderr: p.StderrTail(), Err: err}
	if sig, ok := signalOf(exitErr); ok {
		ee.Signal = sig
	}
	return ee
}

// Terminate asks the producer's process group to stop with SIGTERM and
// schedules a SIGKILL after the grace period unless it is reaped first.
// It does not block and is safe to call more than once.
func (p *Process) Terminate() {
	p.termOnce.Do(func() {
		select {
		case <-p.exited:
			return
		default:
		}

		metrics.ProducerTerminationsTotal.Inc()
		signalGroup(p.cmd.Process, syscall.SIGTERM)

		p.timerMu.Lock()
		p.killTimer = time.AfterFunc(p.grace, func() {
			select {
			case <-p.exited:
			default:
				logging.Debug("Producer %s ignored SIGTERM, killing", p.ID)
				signalGroup(p.cmd.Process, syscall.SIGKILL)
			}
		})
		p.timerMu.Unlock()
	})
}
