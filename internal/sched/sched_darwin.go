//go:build darwin

package sched

import "golang.org/x/sys/unix"

// SetRealtime is not available for other processes on Darwin.
func SetRealtime(_ int) error {
	return ErrUnsupported
}

// SetNice sets the nice value of pid.
func SetNice(pid, nice int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, pid, nice)
}
