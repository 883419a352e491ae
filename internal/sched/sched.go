// Package sched provides platform-specific scheduling priority controls.
package sched

import "errors"

// ErrUnsupported is returned where the platform has no matching control.
var ErrUnsupported = errors.New("sched: not supported on this platform")

// HighestNice is the most favourable nice value on Unix systems.
const HighestNice = -20
