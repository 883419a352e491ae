// Package wmbuspipe supervises an rtl_sdr | rtl_wmbus pipeline and forwards
// only the telegram lines the demodulator prints.
//
// The core functionality centers around the Supervisor type, which launches
// both programs, connects the producer's output to the consumer's input and
// filters the consumer's output:
//
//	sup := wmbuspipe.New(
//	    wmbuspipe.WithLogger(logger),
//	    wmbuspipe.WithSignals(os.Interrupt),
//	)
//
//	err := sup.Run(context.Background())
//	os.Exit(wmbuspipe.ExitCode(err))
//
// A line is forwarded when it contains one of the markers "T1;1", "C1;1" or
// "S1;1" anywhere. Nothing else about a telegram is interpreted.
//
// # Lifecycle
//
// Run returns once either child exits, an interrupt arrives or the context
// is cancelled. On every path the Coordinator kills the consumer, waits for
// it, then kills the producer and waits for it. Killing an exited child is
// a no-op, so concurrent teardowns are harmless.
//
// Both children and the supervisor itself are moved to the highest
// real-time scheduling class available. This is best-effort: without the
// privilege the pipeline runs at normal priority.
//
// # Rate metering
//
// Matches are counted over a fixed window (10s by default). Completed
// windows are available through WithRateHook, the logger, and the Metrics
// collectors, which can be written to a node_exporter textfile.
package wmbuspipe
