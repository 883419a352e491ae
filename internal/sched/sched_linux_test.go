//go:build linux

package sched

import (
	"errors"
	"os"
	"testing"

	"golang.org/x/sys/unix"
)

func TestSetNiceOwnProcess(t *testing.T) {
	// Lowering our own priority never needs privileges.
	if err := SetNice(os.Getpid(), 19); err != nil {
		t.Fatalf("SetNice(19) = %v", err)
	}
}

func TestSetRealtimeUnprivileged(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root")
	}

	err := SetRealtime(os.Getpid())
	if err == nil {
		// RLIMIT_RTPRIO may allow it
		return
	}
	if !errors.Is(err, unix.EPERM) {
		t.Errorf("SetRealtime unprivileged = %v, want EPERM", err)
	}
}
