package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)

	log := Logger("test")
	log.Info("test message", "key", "value")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, "key=value")
	assert.Contains(t, output, "subsystem=test")
}

func TestSetOutput_ExistingLogger(t *testing.T) {
	log := Logger("test2")

	buf := &bytes.Buffer{}
	SetOutput(buf)

	log.Info("after switch", "key", "value")
	assert.Contains(t, buf.String(), "after switch")
}

func TestSetLevel_AppliesToDerivedLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)

	derived := Logger("test3").With("stream", "s1")
	SetLevel("test3", slog.LevelError)
	derived.Info("suppressed")
	assert.NotContains(t, buf.String(), "suppressed")

	SetLevel("test3", slog.LevelDebug)
	derived.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "stream=s1")
}

func TestParseConfig(t *testing.T) {
	env := map[string]string{
		EnvLogLevel:     "protocol=debug,host=warn,bogus=loud,error",
		EnvLogFormat:    "JSON",
		EnvLogAddSource: "1",
	}
	cfg := parseConfig(func(k string) string { return env[k] })

	assert.Equal(t, slog.LevelError, cfg.DefaultLevel)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.True(t, cfg.AddSource)
	assert.NotContains(t, cfg.SubsystemLevels, "bogus")

	assert.Equal(t, slog.LevelDebug, cfg.LevelForSubsystem("protocol/analytics"))
	assert.Equal(t, slog.LevelWarn, cfg.LevelForSubsystem("host"))
	assert.Equal(t, slog.LevelError, cfg.LevelForSubsystem("bandwidth"))
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg := parseConfig(func(string) string { return "" })
	assert.Equal(t, slog.LevelInfo, cfg.DefaultLevel)
	assert.Equal(t, FormatText, cfg.Format)
	assert.False(t, cfg.AddSource)
}

func TestApplyLevelSpec(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)

	log := Logger("levels/child")
	ApplyLevelSpec("levels=debug")
	log.Debug("child debug")
	require.Contains(t, buf.String(), "child debug")

	ApplyLevelSpec("levels=error")
	log.Warn("child warn")
	assert.NotContains(t, buf.String(), "child warn")
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
