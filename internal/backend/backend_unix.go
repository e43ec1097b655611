//go:build !windows

package backend

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"syscall"
)

type platformBackend struct{}

// StartDetached starts the child in a new session (setsid) so it is detached
// from the controlling terminal and survives parent exit cleanly.
func (platformBackend) StartDetached(spec StartSpec) (int, error) {
	if len(spec.Command) == 0 {
		return 0, errors.New("empty command")
	}
	// #nosec G204 -- intentional execution of the configured agent command
	cmd := exec.Command(spec.Command[0], spec.Command[1:]...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	cmd.Stdin = spec.Stdin
	cmd.Stdout = spec.Output
	cmd.Stderr = spec.Output
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	// We never Wait on the child; release our handle so the runtime drops it.
	_ = cmd.Process.Release()
	return pid, nil
}

func (platformBackend) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	// A quickly-exiting child of this process can linger as a zombie until
	// reaped; kill(pid, 0) still succeeds for it, so check first.
	if runtime.GOOS == "linux" && isZombieLinux(pid) {
		return false
	}
	return syscall.Kill(pid, 0) == nil
}

func (platformBackend) Terminate(pid int) error {
	if pid <= 0 {
		return nil
	}
	return syscall.Kill(pid, syscall.SIGTERM)
}

// isZombieLinux returns true if /proc/<pid>/status reports state Z.
func isZombieLinux(pid int) bool {
	b, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/status")
	if err != nil {
		return false
	}
	return bytes.Contains(b, []byte("State:\tZ"))
}
