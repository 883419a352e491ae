package wmbuspipe

import (
	"time"
)

// RateSample is the match throughput of one completed window
type RateSample struct {
	// Matches is the number of matching lines counted in the window
	Matches int
	// Elapsed is the actual window length, at least the configured one
	Elapsed time.Duration
	// PerSecond is Matches divided by Elapsed in seconds
	PerSecond float64
	// End is when the window was closed
	End time.Time
}

// RateWindow counts matches over a fixed-length window. The count only ever
// goes back to zero when the window rolls over.
type RateWindow struct {
	length time.Duration
	start  time.Time
	count  int
}

// NewRateWindow opens a window of the given length at now
func NewRateWindow(length time.Duration, now time.Time) *RateWindow {
	if length <= 0 {
		length = DefaultRateWindow
	}
	return &RateWindow{length: length, start: now}
}

// Add counts one match
func (w *RateWindow) Add() {
	w.count++
}

// Count returns the matches counted since the window start
func (w *RateWindow) Count() int {
	return w.count
}

// Start returns the current window start
func (w *RateWindow) Start() time.Time {
	return w.start
}

// Length returns the configured window length
func (w *RateWindow) Length() time.Duration {
	return w.length
}

// Observe closes the window if at least its length has elapsed by now.
// On rollover it returns the finished window's sample and restarts the
// window at now with a zero count.
func (w *RateWindow) Observe(now time.Time) (RateSample, bool) {
	elapsed := now.Sub(w.start)
	if elapsed < w.length {
		return RateSample{}, false
	}

	sample := RateSample{
		Matches:   w.count,
		Elapsed:   elapsed,
		PerSecond: float64(w.count) / elapsed.Seconds(),
		End:       now,
	}

	w.start = now
	w.count = 0

	return sample, true
}
