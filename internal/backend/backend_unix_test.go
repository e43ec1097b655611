//go:build !windows

package backend

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

func startSleep(t *testing.T, dir string, seconds string) (int, string) {
	t.Helper()
	logPath := filepath.Join(dir, "out.log")
	out, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer func() { _ = out.Close() }()
	in, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatalf("open stdin: %v", err)
	}
	defer func() { _ = in.Close() }()

	pid, err := New().StartDetached(StartSpec{
		Command: []string{"sleep", seconds},
		Stdin:   in,
		Output:  out,
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return pid, logPath
}

func TestStartDetachedAliveTerminate(t *testing.T) {
	b := New()
	pid, _ := startSleep(t, t.TempDir(), "30")
	defer func() { _ = syscall.Kill(pid, syscall.SIGKILL) }()

	if pid <= 0 {
		t.Fatalf("bad pid %d", pid)
	}
	if !b.Alive(pid) {
		t.Fatalf("expected pid %d alive", pid)
	}
	if err := b.Terminate(pid); err != nil {
		t.Fatalf("terminate: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for b.Alive(pid) && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if b.Alive(pid) {
		t.Fatalf("pid %d still alive after SIGTERM", pid)
	}
}

func TestAliveQuickExit(t *testing.T) {
	b := New()
	pid, _ := startSleep(t, t.TempDir(), "0")
	deadline := time.Now().Add(2 * time.Second)
	for b.Alive(pid) && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if b.Alive(pid) {
		t.Fatalf("exited child still reported alive (zombie not detected)")
	}
}

func TestAliveInvalidPID(t *testing.T) {
	b := New()
	if b.Alive(0) || b.Alive(-1) {
		t.Fatalf("non-positive pid must not be alive")
	}
}

func TestTerminateInvalidPIDIsNoop(t *testing.T) {
	if err := New().Terminate(0); err != nil {
		t.Fatalf("terminate(0): %v", err)
	}
}

func TestStartDetachedWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "echo.log")
	out, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	in, _ := os.Open(os.DevNull)
	defer func() { _ = in.Close() }()

	_, err = New().StartDetached(StartSpec{
		Command: []string{"echo", "hello-from-child"},
		Stdin:   in,
		Output:  out,
	})
	_ = out.Close()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		b, _ := os.ReadFile(logPath)
		if strings.Contains(string(b), "hello-from-child") {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("child output never reached log file")
}
