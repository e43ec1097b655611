// Package backend abstracts platform process control behind one capability
// interface so the lifecycle manager is written once, not per platform.
package backend

import "os"

// StartSpec describes a detached process launch. Stdin and Output must be
// real files: the child keeps writing to them after this program exits, so
// they cannot go through a pipe owned by the parent.
type StartSpec struct {
	Command []string // argv; Command[0] must resolve on PATH or be absolute
	Dir     string   // optional working directory
	Env     []string // full environment for the child; nil inherits
	Stdin   *os.File
	Output  *os.File // combined stdout+stderr sink
}

// Backend launches, probes, and terminates detached OS processes.
type Backend interface {
	// StartDetached launches the process in its own session and returns its
	// PID without waiting for completion. The child outlives this program.
	StartDetached(spec StartSpec) (int, error)

	// Alive reports whether the process exists. The probe is non-destructive:
	// it never signals the process in a way that alters its state. A PID
	// recycled by the OS for an unrelated process is reported alive; that is
	// an accepted limitation of PID-based tracking.
	Alive(pid int) bool

	// Terminate asks the process to shut down (SIGTERM or the platform
	// equivalent). It does not wait for the process to exit.
	Terminate(pid int) error
}

// New returns the process backend for the current platform.
func New() Backend { return platformBackend{} }
