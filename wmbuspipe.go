package wmbuspipe

import (
	"time"
)

// Default invocation of the radio sample producer and the demodulator
const (
	// DefaultProducerPath is the default path to the rtl_sdr binary
	DefaultProducerPath = "rtl_sdr"

	// DefaultFrequency is the wM-Bus T1/C1 center frequency passed to rtl_sdr
	DefaultFrequency = "868.95M"

	// DefaultSampleRate is the sample rate passed to rtl_sdr, in samples per second
	DefaultSampleRate = 1600000

	// DefaultConsumerPath is the default path to the rtl_wmbus binary
	DefaultConsumerPath = "rtl_wmbus"

	// DefaultConsumerFlag makes rtl_wmbus print decoded telegrams
	DefaultConsumerFlag = "-v"

	// DefaultRateWindow is the length of the match-rate counting window
	DefaultRateWindow = 10 * time.Second

	// DefaultStopGrace is the grace period given to background goroutines
	// once the read loop has exited
	DefaultStopGrace = 100 * time.Millisecond
)

// FileMode is the mode of the metrics textfile
const FileMode = 0o644

// SelfPID designates the supervisor's own process when passed to an Elevator
const SelfPID = 0

// Role identifies a participant of the pipeline
type Role int

const (
	// RoleUnknown represents an unidentified participant
	RoleUnknown Role = iota
	// RoleProducer is the radio sample producer
	RoleProducer
	// RoleConsumer is the demodulator reading the producer's output
	RoleConsumer
	// RoleSelf is the supervisor process itself
	RoleSelf
)

// Role string constants
const (
	roleUnknownStr  = "unknown"
	roleProducerStr = "producer"
	roleConsumerStr = "consumer"
	roleSelfStr     = "self"
)

// String returns the string representation of a Role
func (r Role) String() string {
	switch r {
	case RoleProducer:
		return roleProducerStr
	case RoleConsumer:
		return roleConsumerStr
	case RoleSelf:
		return roleSelfStr
	default:
		return roleUnknownStr
	}
}

// Operation represents a supervisor operation that can fail
type Operation int

const (
	// OpUnknown represents an unknown operation
	OpUnknown Operation = iota
	// OpLaunch creates a child process
	OpLaunch
	// OpElevate raises a process's scheduling priority
	OpElevate
	// OpKill forcibly terminates a child process
	OpKill
	// OpWait reaps a child process
	OpWait
	// OpRead reads the consumer's output stream
	OpRead
	// OpWrite writes a matching line to the output sink
	OpWrite
)

// Operation string constants
const (
	opUnknownStr = "unknown"
	opLaunchStr  = "launch"
	opElevateStr = "elevate"
	opKillStr    = "kill"
	opWaitStr    = "wait"
	opReadStr    = "read"
	opWriteStr   = "write"
)

// String returns the string representation of an Operation
func (op Operation) String() string {
	switch op {
	case OpLaunch:
		return opLaunchStr
	case OpElevate:
		return opElevateStr
	case OpKill:
		return opKillStr
	case OpWait:
		return opWaitStr
	case OpRead:
		return opReadStr
	case OpWrite:
		return opWriteStr
	default:
		return opUnknownStr
	}
}

// ProcessState represents the liveness of a child process
type ProcessState int

const (
	// StateUnknown indicates the state could not be determined
	StateUnknown ProcessState = iota
	// StateRunning indicates the process has not been reaped yet
	StateRunning
	// StateExited indicates the process exited and has been reaped
	StateExited
)

// ProcessState string constants
const (
	stateUnknownStr = "unknown"
	stateRunningStr = "running"
	stateExitedStr  = "exited"
)

// String returns the string representation of the state
func (s ProcessState) String() string {
	switch s {
	case StateRunning:
		return stateRunningStr
	case StateExited:
		return stateExitedStr
	default:
		return stateUnknownStr
	}
}
