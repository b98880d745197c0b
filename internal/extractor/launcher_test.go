package extractor

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

// shellConfig runs script under /bin/sh; the launch target arrives as $1.
func shellConfig(script string) Config {
	cfg := DefaultConfig("/bin/sh")
	cfg.Args = []string{"-c", script, "producer"}
	cfg.TerminateGrace = 200 * time.Millisecond
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("")

	if cfg.Binary != "yt-dlp" {
		t.Errorf("Expected binary yt-dlp, got %q", cfg.Binary)
	}

	joined := strings.Join(cfg.Args, " ")
	for _, want := range []string{"-x", "--audio-format mp3", "--no-playlist", "-o -"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected args to contain %q, got %q", want, joined)
		}
	}

	if !cfg.CaptureStderr {
		t.Error("Expected stderr capture to be enabled by default")
	}

	if cfg.TerminateGrace != DefaultTerminateGrace {
		t.Errorf("Expected grace %v, got %v", DefaultTerminateGrace, cfg.TerminateGrace)
	}
}

func TestDefaultConfigDoesNotShareArgs(t *testing.T) {
	cfg := DefaultConfig("")
	cfg.Args[0] = "changed"

	if DefaultArgs[0] != "-x" {
		t.Error("Modifying config args must not modify DefaultArgs")
	}
}

func TestLaunchStreamsStdout(t *testing.T) {
	l := New(shellConfig(`printf 'target=%s' "$1"`))

	p, err := l.Launch(context.Background(), "https://example.test/watch?v=abc")
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	out, err := io.ReadAll(p.Stdout())
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if err := p.Wait(); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	if string(out) != "target=https://example.test/watch?v=abc" {
		t.Errorf("Unexpected output %q", out)
	}

	if l.Active() != 0 {
		t.Errorf("Expected no active producers after Wait, got %d", l.Active())
	}
}

func TestLaunchMissingBinary(t *testing.T) {
	cfg := DefaultConfig("/nonexistent/producer-binary")
	l := New(cfg)

	p, err := l.Launch(context.Background(), "x")
	if err == nil {
		_ = p.Wait()
		t.Fatal("Expected spawn error for missing binary")
	}

	if !errors.Is(err, ErrSpawn) {
		t.Errorf("Expected errors.Is(err, ErrSpawn), got %v", err)
	}

	var spawnErr *SpawnError
	if !errors.As(err, &spawnErr) {
		t.Fatalf("Expected *SpawnError, got %T", err)
	}
	if spawnErr.Binary != "/nonexistent/producer-binary" {
		t.Errorf("Expected binary in error, got %q", spawnErr.Binary)
	}

	if l.Active() != 0 {
		t.Errorf("Expected no tracked producers, got %d", l.Active())
	}
}

func TestLaunchCanceledContext(t *testing.T) {
	l := New(shellConfig(`echo hi`))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := l.Launch(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestWaitReportsExitStatus(t *testing.T) {
	l := New(shellConfig(`echo "ERROR: video unavailable" >&2; exit 3`))

	p, err := l.Launch(context.Background(), "x")
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	_, _ = io.Copy(io.Discard, p.Stdout())

	err = p.Wait()
	if errors.Is(err, ErrSpawn) {
		t.Fatal("Exit failure must not be reported as a spawn error")
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Expected *ExitError, got %T (%v)", err, err)
	}
	if exitErr.Code != 3 {
		t.Errorf("Expected exit code 3, got %d", exitErr.Code)
	}
	if !strings.Contains(exitErr.Error(), "video unavailable") {
		t.Errorf("Expected stderr tail in message, got %q", exitErr.Error())
	}

	// Second Wait returns the same result without reaping again.
	if err2 := p.Wait(); err2 != err {
		t.Errorf("Expected identical error from second Wait, got %v", err2)
	}
}

func TestTerminateStopsProducer(t *testing.T) {
	l := New(shellConfig(`while :; do printf x; sleep 0.05; done`))

	p, err := l.Launch(context.Background(), "x")
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	buf := make([]byte, 1)
	if _, err := p.Stdout().Read(buf); err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	p.Terminate()
	p.Terminate() // idempotent

	_ = p.Stdout().Close()

	done := make(chan error, 1)
	go func() { done <- p.Wait() }()

	select {
	case err := <-done:
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || exitErr.Signal == "" {
			t.Errorf("Expected signaled exit, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Producer was not terminated")
	}
}

func TestTerminateEscalatesToKill(t *testing.T) {
	l := New(shellConfig(`trap '' TERM; while :; do sleep 0.05; done`))

	p, err := l.Launch(context.Background(), "x")
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	// Give the shell time to install the trap.
	time.Sleep(100 * time.Millisecond)

	start := time.Now()
	p.Terminate()
	_ = p.Stdout().Close()

	done := make(chan struct{})
	go func() {
		_ = p.Wait()
		close(done)
	}()

	select {
	case <-done:
		if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
			t.Errorf("Expected producer to survive SIGTERM until grace expired, exited after %v", elapsed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Producer was not killed after grace period")
	}
}

func TestCleanupTerminatesAll(t *testing.T) {
	l := New(shellConfig(`sleep 30`))

	var procs []*Process
	for i := 0; i < 3; i++ {
		p, err := l.Launch(context.Background(), "x")
		if err != nil {
			t.Fatalf("Launch failed: %v", err)
		}
		procs = append(procs, p)
	}

	if l.Active() != 3 {
		t.Fatalf("Expected 3 active producers, got %d", l.Active())
	}

	l.Cleanup()

	for _, p := range procs {
		_ = p.Stdout().Close()
		select {
		case <-waitAsync(p):
		case <-time.After(5 * time.Second):
			t.Fatal("Producer survived Cleanup")
		}
	}

	if l.Active() != 0 {
		t.Errorf("Expected no active producers, got %d", l.Active())
	}
}

func waitAsync(p *Process) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		_ = p.Wait()
		close(ch)
	}()
	return ch
}

func TestTailBuffer(t *testing.T) {
	tb := newTailBuffer(8)

	_, _ = tb.Write([]byte("abc"))
	if tb.String() != "abc" {
		t.Errorf("Expected abc, got %q", tb.String())
	}

	_, _ = tb.Write([]byte("defghij"))
	if tb.String() != "cdefghij" {
		t.Errorf("Expected cdefghij, got %q", tb.String())
	}

	_, _ = tb.Write([]byte("0123456789"))
	if tb.String() != "23456789" {
		t.Errorf("Expected 23456789, got %q", tb.String())
	}
}

func TestExitErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{"status only", &ExitError{Code: 1}, "producer exited with status 1"},
		{"with stderr", &ExitError{Code: 2, Stderr: "WARNING: x\nERROR: gone\n\n"}, "producer exited with status 2: ERROR: gone"},
		{"signaled", &ExitError{Code: -1, Signal: "terminated"}, "producer killed by terminated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
