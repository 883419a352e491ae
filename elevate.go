package wmbuspipe

import (
	"errors"
	"os"

	"go.uber.org/zap"

	"github.com/axondata/go-wmbuspipe/internal/sched"
)

// Elevator raises the scheduling priority of a process
type Elevator interface {
	// Elevate requests the highest real-time class for pid.
	// SelfPID targets the calling process.
	Elevate(pid int) error
}

// ElevatorFunc adapts a function to the Elevator interface
type ElevatorFunc func(pid int) error

// Elevate calls f(pid)
func (f ElevatorFunc) Elevate(pid int) error {
	return f(pid)
}

// DefaultElevator asks for the real-time class first and falls back to the
// most favourable nice value.
var DefaultElevator Elevator = ElevatorFunc(elevate)

// NopElevator never touches scheduling
var NopElevator Elevator = ElevatorFunc(func(int) error { return nil })

func elevate(pid int) error {
	if pid == SelfPID {
		pid = os.Getpid()
	}

	rtErr := sched.SetRealtime(pid)
	if rtErr == nil {
		return nil
	}

	niceErr := sched.SetNice(pid, sched.HighestNice)
	if niceErr == nil {
		return nil
	}

	if errors.Is(rtErr, sched.ErrUnsupported) && errors.Is(niceErr, sched.ErrUnsupported) {
		return &OpError{Op: OpElevate, PID: pid, Err: ErrElevationUnsupported}
	}
	return &OpError{Op: OpElevate, PID: pid, Err: errors.Join(rtErr, niceErr)}
}

// elevateBestEffort elevates pid and discards any failure.
// Elevation is best-effort and never fatal: the pipeline keeps running at
// standard priority.
func elevateBestEffort(e Elevator, log *zap.Logger, role Role, pid int) {
	if err := e.Elevate(pid); err != nil {
		log.Debug("priority elevation failed",
			zap.Stringer("role", role),
			zap.Int("pid", pid),
			zap.Error(err),
		)
		return
	}
	log.Debug("priority elevated", zap.Stringer("role", role), zap.Int("pid", pid))
}
