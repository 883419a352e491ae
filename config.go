package wmbuspipe

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read by LoadConfig
const EnvPrefix = "WMBUSPIPE"

// Config holds the pipeline configuration. The defaults reproduce
// `rtl_sdr -f 868.95M -s 1600000 - | rtl_wmbus -v`.
type Config struct {
	// ProducerPath is the rtl_sdr executable
	ProducerPath string `envconfig:"PRODUCER_PATH" default:"rtl_sdr"`
	// Frequency is the center frequency passed with -f
	Frequency string `envconfig:"FREQUENCY" default:"868.95M"`
	// SampleRate is the sample rate passed with -s
	SampleRate int `envconfig:"SAMPLE_RATE" default:"1600000"`

	// ConsumerPath is the rtl_wmbus executable
	ConsumerPath string `envconfig:"CONSUMER_PATH" default:"rtl_wmbus"`
	// ConsumerArgs are passed to rtl_wmbus, comma separated in the environment
	ConsumerArgs []string `envconfig:"CONSUMER_ARGS" default:"-v"`

	// Realtime enables best-effort priority elevation
	Realtime bool `envconfig:"REALTIME" default:"true"`
	// RateWindow is the length of the match-rate window
	RateWindow time.Duration `envconfig:"RATE_WINDOW" default:"10s"`
	// ReportRate logs each window's match rate at info level
	ReportRate bool `envconfig:"REPORT_RATE" default:"false"`
	// MetricsFile, when set, receives the metrics in Prometheus text format
	MetricsFile string `envconfig:"METRICS_FILE"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// LogDevelopment switches to colored console logs
	LogDevelopment bool `envconfig:"LOG_DEV" default:"false"`
}

// LoadConfig reads the configuration from WMBUSPIPE_* environment variables
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// Default returns the default configuration
func Default() Config {
	return Config{
		ProducerPath: DefaultProducerPath,
		Frequency:    DefaultFrequency,
		SampleRate:   DefaultSampleRate,
		ConsumerPath: DefaultConsumerPath,
		ConsumerArgs: []string{DefaultConsumerFlag},
		Realtime:     true,
		RateWindow:   DefaultRateWindow,
		LogLevel:     "info",
	}
}

// Validate reports the first setting that cannot drive a pipeline
func (c Config) Validate() error {
	switch {
	case c.ProducerPath == "":
		return fmt.Errorf("%w: producer path is empty", ErrInvalidConfig)
	case c.ConsumerPath == "":
		return fmt.Errorf("%w: consumer path is empty", ErrInvalidConfig)
	case c.Frequency == "":
		return fmt.Errorf("%w: frequency is empty", ErrInvalidConfig)
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d is not positive", ErrInvalidConfig, c.SampleRate)
	case c.RateWindow <= 0:
		return fmt.Errorf("%w: rate window %s is not positive", ErrInvalidConfig, c.RateWindow)
	}
	return nil
}

// ProducerArgs returns the rtl_sdr arguments: frequency, sample rate and
// "-" for output to stdout
func (c Config) ProducerArgs() []string {
	return []string{"-f", c.Frequency, "-s", strconv.Itoa(c.SampleRate), "-"}
}

// ProducerSpec returns the launch spec of the producer
func (c Config) ProducerSpec() LaunchSpec {
	return LaunchSpec{
		Role:   RoleProducer,
		Path:   c.ProducerPath,
		Args:   c.ProducerArgs(),
		Stdout: StreamCapture,
		Stderr: StreamDiscard,
	}
}

// ConsumerSpec returns the launch spec of the consumer, without its stdin
func (c Config) ConsumerSpec() LaunchSpec {
	return LaunchSpec{
		Role:   RoleConsumer,
		Path:   c.ConsumerPath,
		Args:   append([]string(nil), c.ConsumerArgs...),
		Stdout: StreamCapture,
		Stderr: StreamDiscard,
	}
}
