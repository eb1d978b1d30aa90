package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AllDefaults_Pass(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	assert.NoError(t, err)
}

func TestValidate_Provider(t *testing.T) {
	t.Run("Unknown Provider Fails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider.Name = "openai"
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "provider.name")
	})

	t.Run("Temperature Out Of Range Fails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider.Temperature = 2.5
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "temperature")
	})

	t.Run("Zero Timeout Fails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider.RequestTimeoutSeconds = 0
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "request_timeout_seconds")
	})
}

func TestValidate_Dispatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dispatch.MaxPayloadBytes = -1
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_payload_bytes")
}

func TestValidate_UI(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UI.WordWrap = -1
	cfg.UI.GlamourStyle = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word_wrap")
	assert.Contains(t, err.Error(), "glamour_style")
}

func TestValidate_Log(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "verbose"
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("")
	assert.Error(t, err)
}
