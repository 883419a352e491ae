package wmbuspipe

import (
	"io"
	"time"

	"go.uber.org/zap"
)

// Filter forwards telegram lines to an output sink and meters their rate.
// It is not safe for concurrent use; the read loop is its only caller.
type Filter struct {
	out        io.Writer
	window     *RateWindow
	metrics    *Metrics
	log        *zap.Logger
	onRate     func(RateSample)
	reportRate bool
}

// FilterOption configures a Filter
type FilterOption func(*Filter)

// WithFilterMetrics records every line and rate sample in m
func WithFilterMetrics(m *Metrics) FilterOption {
	return func(f *Filter) {
		f.metrics = m
	}
}

// WithFilterLogger sets the logger for rate diagnostics
func WithFilterLogger(log *zap.Logger) FilterOption {
	return func(f *Filter) {
		f.log = log
	}
}

// WithFilterRateHook calls fn with every completed rate window
func WithFilterRateHook(fn func(RateSample)) FilterOption {
	return func(f *Filter) {
		f.onRate = fn
	}
}

// WithFilterRateReport logs every completed rate window at info level
// instead of debug
func WithFilterRateReport(enabled bool) FilterOption {
	return func(f *Filter) {
		f.reportRate = enabled
	}
}

// NewFilter creates a Filter writing matches to out, with a rate window of
// the given length starting at now
func NewFilter(out io.Writer, window time.Duration, now time.Time, opts ...FilterOption) *Filter {
	f := &Filter{
		out:    out,
		window: NewRateWindow(window, now),
		log:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Window returns the filter's rate window
func (f *Filter) Window() *RateWindow {
	return f.window
}

// Process classifies one raw line read at the given time, emits it when it
// matches and rolls the rate window. The only error is a failed write.
func (f *Filter) Process(raw string, at time.Time) (Line, error) {
	line := NewLine(raw, at)
	f.metrics.ObserveLine(line)

	if line.Match {
		f.window.Add()
		if _, err := io.WriteString(f.out, line.Text+LineTerminator); err != nil {
			return line, &OpError{Op: OpWrite, Err: err}
		}
	}

	if sample, ok := f.window.Observe(at); ok {
		f.report(sample)
	}

	return line, nil
}

func (f *Filter) report(sample RateSample) {
	f.metrics.ObserveRate(sample)

	fields := []zap.Field{
		zap.Int("matches", sample.Matches),
		zap.Duration("elapsed", sample.Elapsed),
		zap.Float64("per_second", sample.PerSecond),
	}
	if f.reportRate {
		f.log.Info("match rate", fields...)
	} else {
		f.log.Debug("match rate", fields...)
	}

	if f.onRate != nil {
		f.onRate(sample)
	}
}
