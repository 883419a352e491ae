package wmbuspipe

import (
	"context"
	"os"
)

// Handle is the interface every child process handle implements.
// The supervisor and the Coordinator only ever talk to children through it,
// which lets tests drive them with fakes.
type Handle interface {
	// PID returns the OS process id
	PID() int

	// Running reports whether the process has not been reaped yet.
	// It never blocks.
	Running() bool

	// State returns StateRunning or StateExited
	State() ProcessState

	// Done is closed once the process has exited and been reaped
	Done() <-chan struct{}

	// Stdout returns the parent's read end of the captured standard output,
	// or nil when the output is discarded
	Stdout() *os.File

	// ReleaseStdout closes the parent's copy of the captured output.
	// Safe to call more than once.
	ReleaseStdout() error

	// Kill forcibly terminates the process. Killing an exited process is a
	// no-op and returns nil.
	Kill() error

	// Wait blocks until the process has exited and returns its exit status.
	// Every call returns the same status.
	Wait(ctx context.Context) (ExitStatus, error)
}

// Launcher creates child processes
type Launcher interface {
	Launch(spec LaunchSpec) (Handle, error)
}

// LauncherFunc adapts a function to the Launcher interface
type LauncherFunc func(spec LaunchSpec) (Handle, error)

// Launch calls f(spec)
func (f LauncherFunc) Launch(spec LaunchSpec) (Handle, error) {
	return f(spec)
}
