package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axondata/go-wmbuspipe"
)

func TestRootFlagsOverrideConfig(t *testing.T) {
	cfg := wmbuspipe.Default()
	cmd := newRootCmd(&cfg)

	require.NoError(t, cmd.ParseFlags([]string{
		"--producer", "/opt/rtl_sdr",
		"-f", "868.3M",
		"-s", "2400000",
		"--consumer-arg", "-v",
		"--consumer-arg", "-s",
		"--realtime=false",
		"--rate-window", "30s",
		"--metrics-file", "/tmp/wmbus.prom",
	}))

	assert.Equal(t, "/opt/rtl_sdr", cfg.ProducerPath)
	assert.Equal(t, "868.3M", cfg.Frequency)
	assert.Equal(t, 2400000, cfg.SampleRate)
	assert.Equal(t, []string{"-v", "-s"}, cfg.ConsumerArgs)
	assert.False(t, cfg.Realtime)
	assert.Equal(t, 30*time.Second, cfg.RateWindow)
	assert.Equal(t, "/tmp/wmbus.prom", cfg.MetricsFile)
}

func TestRootRejectsInvalidConfig(t *testing.T) {
	cfg := wmbuspipe.Default()
	cmd := newRootCmd(&cfg)
	cmd.SetArgs([]string{"--sample-rate", "0"})

	err := cmd.Execute()
	require.ErrorIs(t, err, wmbuspipe.ErrInvalidConfig)
	assert.Equal(t, 1, wmbuspipe.ExitCode(err))
}

func TestVersionCommand(t *testing.T) {
	cfg := wmbuspipe.Default()
	cmd := newRootCmd(&cfg)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "wmbuspipe "+wmbuspipe.Version))
}
