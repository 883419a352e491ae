//go:build windows

package sched

import "golang.org/x/sys/windows"

// SetRealtime moves pid to REALTIME_PRIORITY_CLASS. Without the
// SeIncreaseBasePriority privilege Windows silently grants HIGH instead.
func SetRealtime(pid int) error {
	return setPriorityClass(pid, windows.REALTIME_PRIORITY_CLASS)
}

// SetNice maps a favourable nice value to HIGH_PRIORITY_CLASS.
func SetNice(pid, nice int) error {
	if nice >= 0 {
		return setPriorityClass(pid, windows.NORMAL_PRIORITY_CLASS)
	}
	return setPriorityClass(pid, windows.HIGH_PRIORITY_CLASS)
}

func setPriorityClass(pid int, class uint32) error {
	h, err := windows.OpenProcess(windows.PROCESS_SET_INFORMATION, false, uint32(pid))
	if err != nil {
		return err
	}
	defer func() { _ = windows.CloseHandle(h) }()

	return windows.SetPriorityClass(h, class)
}
