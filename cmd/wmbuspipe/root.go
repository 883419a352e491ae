package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/axondata/go-wmbuspipe"
)

// Execute runs the root command and returns the process exit status.
func Execute() int {
	cfg, err := wmbuspipe.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := newRootCmd(&cfg).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return wmbuspipe.ExitCode(err)
	}
	return 0
}

func newRootCmd(cfg *wmbuspipe.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wmbuspipe",
		Short: "Receive wM-Bus telegrams with rtl_sdr and rtl_wmbus",
		Long: `wmbuspipe runs rtl_sdr piped into rtl_wmbus and prints every line
carrying a T1, C1 or S1 telegram with a valid CRC. Both programs are killed
when either exits or on interrupt.

Settings default to WMBUSPIPE_* environment variables; flags override them.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), *cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.ProducerPath, "producer", cfg.ProducerPath, "path to rtl_sdr")
	flags.StringVarP(&cfg.Frequency, "frequency", "f", cfg.Frequency, "center frequency")
	flags.IntVarP(&cfg.SampleRate, "sample-rate", "s", cfg.SampleRate, "sample rate in samples per second")
	flags.StringVar(&cfg.ConsumerPath, "consumer", cfg.ConsumerPath, "path to rtl_wmbus")
	flags.StringSliceVar(&cfg.ConsumerArgs, "consumer-arg", cfg.ConsumerArgs, "argument passed to rtl_wmbus (repeatable)")
	flags.BoolVar(&cfg.Realtime, "realtime", cfg.Realtime, "raise scheduling priority of both programs and self")
	flags.DurationVar(&cfg.RateWindow, "rate-window", cfg.RateWindow, "match rate window")
	flags.BoolVar(&cfg.ReportRate, "report-rate", cfg.ReportRate, "log the match rate of every window")
	flags.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "write Prometheus text metrics to this file")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.BoolVar(&cfg.LogDevelopment, "log-dev", cfg.LogDevelopment, "human-readable console logs")

	cmd.AddCommand(newVersionCmd())

	return cmd
}

func run(ctx context.Context, cfg wmbuspipe.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := wmbuspipe.NewLogger(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("starting", zap.Any("config", cfg))

	sup := wmbuspipe.NewFromConfig(cfg,
		wmbuspipe.WithLogger(logger),
		wmbuspipe.WithSignals(os.Interrupt, syscall.SIGTERM),
	)
	return sup.Run(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			v := wmbuspipe.GetVersion()
			fmt.Fprintf(cmd.OutOrStdout(), "wmbuspipe %s (%s | %s)\n", v.Version, v.Producer, v.Consumer)
		},
	}
}
