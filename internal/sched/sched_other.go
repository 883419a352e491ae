//go:build !linux && !darwin && !windows

package sched

// SetRealtime is not supported on this platform.
func SetRealtime(_ int) error {
	return ErrUnsupported
}

// SetNice is not supported on this platform.
func SetNice(_, _ int) error {
	return ErrUnsupported
}
