package wmbuspipe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// StreamMode selects how a child's standard stream is connected
type StreamMode int

const (
	// StreamDiscard connects the stream to the null device
	StreamDiscard StreamMode = iota
	// StreamCapture connects the stream to a pipe readable by the parent
	StreamCapture
)

// LaunchSpec describes a child process to start
type LaunchSpec struct {
	// Role is the pipeline participant this process plays
	Role Role
	// Path is the executable, resolved through PATH when it has no separator
	Path string
	// Args are the arguments, not including the program name
	Args []string
	// Stdin is the child's standard input; nil discards it. Pass another
	// handle's Stdout() to chain two processes.
	Stdin *os.File
	// Stdout selects how standard output is connected
	Stdout StreamMode
	// Stderr selects how standard error is connected
	Stderr StreamMode
}

// ExitStatus is the outcome of a reaped child
type ExitStatus struct {
	// Code is the exit code, or -1 when the process was terminated by a signal
	Code int
	// Signaled reports termination by a signal
	Signaled bool
}

// String returns a human-readable exit status
func (s ExitStatus) String() string {
	if s.Signaled {
		return "signaled"
	}
	return fmt.Sprintf("exit %d", s.Code)
}

// Process is a Handle backed by os/exec. A single reaper goroutine owns the
// call to Wait, so liveness checks, kills and waits from other goroutines
// never race on the OS process state.
type Process struct {
	role   Role
	path   string
	cmd    *exec.Cmd
	stdout *os.File
	stderr *os.File
	done   chan struct{}

	// mu protects the fields below
	mu       sync.Mutex
	exit     ExitStatus
	waitErr  error
	released bool
}

// ExecLauncher launches real OS processes
type ExecLauncher struct{}

// Launch implements Launcher
func (ExecLauncher) Launch(spec LaunchSpec) (Handle, error) {
	p, err := Launch(spec)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Launch starts a new OS process as described by spec. The returned process
// is already running; its exit is observed by a background reaper.
func Launch(spec LaunchSpec) (*Process, error) {
	p := &Process{
		role: spec.Role,
		path: spec.Path,
		done: make(chan struct{}),
	}

	cmd := exec.Command(spec.Path, spec.Args...)
	if spec.Stdin != nil {
		cmd.Stdin = spec.Stdin
	}

	// child ends of capture pipes, closed in the parent once the child owns them
	var childEnds []*os.File
	closeChildEnds := func() {
		for _, f := range childEnds {
			_ = f.Close()
		}
	}

	if spec.Stdout == StreamCapture {
		pr, pw, err := os.Pipe()
		if err != nil {
			return nil, &OpError{Op: OpLaunch, Role: spec.Role, Path: spec.Path, Err: err}
		}
		p.stdout = pr
		cmd.Stdout = pw
		childEnds = append(childEnds, pw)
	}

	if spec.Stderr == StreamCapture {
		pr, pw, err := os.Pipe()
		if err != nil {
			closeChildEnds()
			p.closeStreams()
			return nil, &OpError{Op: OpLaunch, Role: spec.Role, Path: spec.Path, Err: err}
		}
		p.stderr = pr
		cmd.Stderr = pw
		childEnds = append(childEnds, pw)
	}

	if err := cmd.Start(); err != nil {
		closeChildEnds()
		p.closeStreams()
		return nil, &OpError{Op: OpLaunch, Role: spec.Role, Path: spec.Path, Err: err}
	}
	closeChildEnds()

	p.cmd = cmd
	go p.reap()

	return p, nil
}

func (p *Process) reap() {
	err := p.cmd.Wait()

	p.mu.Lock()
	p.exit = exitStatusOf(p.cmd.ProcessState)
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		p.waitErr = &OpError{Op: OpWait, Role: p.role, PID: p.PID(), Err: err}
	}
	p.mu.Unlock()

	close(p.done)
}

func exitStatusOf(ps *os.ProcessState) ExitStatus {
	if ps == nil {
		return ExitStatus{Code: -1}
	}
	code := ps.ExitCode()
	return ExitStatus{Code: code, Signaled: code == -1}
}

func (p *Process) closeStreams() {
	if p.stdout != nil {
		_ = p.stdout.Close()
	}
	if p.stderr != nil {
		_ = p.stderr.Close()
	}
}

// Role returns the pipeline role the process was launched for
func (p *Process) Role() Role {
	return p.role
}

// PID returns the OS process id
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Running reports whether the process has not been reaped yet
func (p *Process) Running() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// State returns the current liveness state
func (p *Process) State() ProcessState {
	if p.Running() {
		return StateRunning
	}
	return StateExited
}

// Done is closed once the process has been reaped
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Stdout returns the parent's read end of the captured standard output
func (p *Process) Stdout() *os.File {
	return p.stdout
}

// Stderr returns the parent's read end of the captured standard error
func (p *Process) Stderr() *os.File {
	return p.stderr
}

// ReleaseStdout closes the parent's copy of the captured standard output
func (p *Process) ReleaseStdout() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.released || p.stdout == nil {
		return nil
	}
	p.released = true
	return p.stdout.Close()
}

// Kill sends SIGKILL (TerminateProcess on Windows). It does not wait.
func (p *Process) Kill() error {
	if !p.Running() {
		return nil
	}
	err := p.cmd.Process.Kill()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return &OpError{Op: OpKill, Role: p.role, PID: p.PID(), Err: err}
	}
	return nil
}

// Wait blocks until the process has been reaped or ctx is done
func (p *Process) Wait(ctx context.Context) (ExitStatus, error) {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.exit, p.waitErr
	case <-ctx.Done():
		return ExitStatus{}, ctx.Err()
	}
}

// String returns a description for logs
func (p *Process) String() string {
	return fmt.Sprintf("Process(%s %q pid=%d)", p.role, p.path, p.PID())
}
