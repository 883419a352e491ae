package wmbuspipe

import (
	"errors"
	"fmt"
)

// Common errors returned by pipeline operations
var (
	// ErrLaunch indicates a child process could not be created
	ErrLaunch = errors.New("wmbuspipe: launch failed")

	// ErrElevation indicates a scheduling priority change was refused
	ErrElevation = errors.New("wmbuspipe: priority elevation failed")

	// ErrElevationUnsupported indicates the platform offers no priority elevation
	ErrElevationUnsupported = errors.New("wmbuspipe: priority elevation unsupported")

	// ErrStreamRead indicates the consumer's output became unreadable
	ErrStreamRead = errors.New("wmbuspipe: stream read")

	// ErrUnhandled indicates an unexpected fault during setup or the read loop
	ErrUnhandled = errors.New("wmbuspipe: unhandled failure")

	// ErrInvalidConfig indicates the configuration cannot drive a pipeline
	ErrInvalidConfig = errors.New("wmbuspipe: invalid config")
)

// OpError represents an error from a pipeline operation
type OpError struct {
	// Op is the operation that failed
	Op Operation
	// Role is the pipeline participant the operation targeted
	Role Role
	// Path is the executable involved, if any
	Path string
	// PID is the process the operation targeted (0 if not started)
	PID int
	// Err is the underlying error
	Err error
}

// Error returns a formatted error message
func (e *OpError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("wmbuspipe %s %s %q: %v", e.Op, e.Role, e.Path, e.Err)
	}
	return fmt.Sprintf("wmbuspipe %s %s (pid %d): %v", e.Op, e.Role, e.PID, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *OpError) Unwrap() error {
	return e.Err
}

// Is matches the operation-class sentinels, so errors.Is(err, ErrLaunch)
// holds for any launch failure.
func (e *OpError) Is(target error) bool {
	switch target {
	case ErrLaunch:
		return e.Op == OpLaunch
	case ErrElevation:
		return e.Op == OpElevate
	case ErrStreamRead:
		return e.Op == OpRead
	}
	return false
}

// MultiError aggregates multiple errors from teardown
type MultiError struct {
	// Errors contains all accumulated errors
	Errors []error
}

// Error returns a summary of the accumulated errors
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred", len(m.Errors))
}

// Unwrap exposes the accumulated errors to errors.Is and errors.As
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Add appends an error to the collection if it's not nil
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// Err returns nil if no errors occurred, otherwise returns the MultiError itself
func (m *MultiError) Err() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

// ExitCode maps the result of Supervisor.Run to a process exit status:
// 0 for a clean shutdown, 1 for any failure.
func ExitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}
