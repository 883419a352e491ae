//go:build linux

package sched

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// PolicyFIFO is the SCHED_FIFO real-time policy.
const PolicyFIFO = 1

type schedParam struct {
	Priority int32
}

// SetRealtime moves pid to SCHED_FIFO at the highest static priority.
func SetRealtime(pid int) error {
	maxPrio, _, errno := unix.Syscall(unix.SYS_SCHED_GET_PRIORITY_MAX, PolicyFIFO, 0, 0)
	if errno != 0 {
		return errno
	}

	param := schedParam{Priority: int32(maxPrio)}
	if _, _, errno := unix.Syscall(
		unix.SYS_SCHED_SETSCHEDULER,
		uintptr(pid),
		PolicyFIFO,
		uintptr(unsafe.Pointer(&param)),
	); errno != 0 {
		return errno
	}

	return nil
}

// SetNice sets the nice value of pid.
func SetNice(pid, nice int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, pid, nice)
}
