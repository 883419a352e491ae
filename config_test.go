package wmbuspipe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, []string{"-f", "868.95M", "-s", "1600000", "-"}, cfg.ProducerArgs())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("WMBUSPIPE_PRODUCER_PATH", "/opt/rtl/bin/rtl_sdr")
	t.Setenv("WMBUSPIPE_FREQUENCY", "868.3M")
	t.Setenv("WMBUSPIPE_SAMPLE_RATE", "2048000")
	t.Setenv("WMBUSPIPE_CONSUMER_ARGS", "-v,-s")
	t.Setenv("WMBUSPIPE_REALTIME", "false")
	t.Setenv("WMBUSPIPE_RATE_WINDOW", "1m")
	t.Setenv("WMBUSPIPE_REPORT_RATE", "true")
	t.Setenv("WMBUSPIPE_METRICS_FILE", "/var/lib/node_exporter/wmbuspipe.prom")
	t.Setenv("WMBUSPIPE_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/opt/rtl/bin/rtl_sdr", cfg.ProducerPath)
	assert.Equal(t, []string{"-f", "868.3M", "-s", "2048000", "-"}, cfg.ProducerArgs())
	assert.Equal(t, []string{"-v", "-s"}, cfg.ConsumerArgs)
	assert.False(t, cfg.Realtime)
	assert.Equal(t, time.Minute, cfg.RateWindow)
	assert.True(t, cfg.ReportRate)
	assert.Equal(t, "/var/lib/node_exporter/wmbuspipe.prom", cfg.MetricsFile)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigRejectsMalformedValues(t *testing.T) {
	t.Setenv("WMBUSPIPE_SAMPLE_RATE", "fast")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty producer", func(c *Config) { c.ProducerPath = "" }},
		{"empty consumer", func(c *Config) { c.ConsumerPath = "" }},
		{"empty frequency", func(c *Config) { c.Frequency = "" }},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }},
		{"negative window", func(c *Config) { c.RateWindow = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfigSpecs(t *testing.T) {
	cfg := Default()

	producer := cfg.ProducerSpec()
	assert.Equal(t, RoleProducer, producer.Role)
	assert.Equal(t, DefaultProducerPath, producer.Path)
	assert.Equal(t, StreamCapture, producer.Stdout)
	assert.Equal(t, StreamDiscard, producer.Stderr)

	consumer := cfg.ConsumerSpec()
	assert.Equal(t, RoleConsumer, consumer.Role)
	assert.Equal(t, []string{DefaultConsumerFlag}, consumer.Args)

	// ConsumerSpec copies the argument slice
	consumer.Args[0] = "-x"
	assert.Equal(t, []string{DefaultConsumerFlag}, cfg.ConsumerArgs)
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("debug", false)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = NewLogger("warn", true)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))

	_, err = NewLogger("chatty", false)
	assert.Error(t, err)
}
