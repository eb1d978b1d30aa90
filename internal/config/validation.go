package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks config values for correctness.
// All violations are reported together.
func (c *Config) Validate() error {
	var errs []string

	// Provider validation
	switch c.Provider.Name {
	case ProviderGroq, ProviderGemini:
	default:
		errs = append(errs, fmt.Sprintf("provider.name must be %q or %q, got %q", ProviderGroq, ProviderGemini, c.Provider.Name))
	}
	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		errs = append(errs, "provider.temperature must be between 0 and 2")
	}
	if c.Provider.RequestTimeoutSeconds < 1 {
		errs = append(errs, "provider.request_timeout_seconds must be >= 1")
	}

	// Dispatch validation
	if c.Dispatch.MaxPayloadBytes < 0 {
		errs = append(errs, "dispatch.max_payload_bytes must be >= 0")
	}

	// UI validation
	if c.UI.WordWrap < 0 {
		errs = append(errs, "ui.word_wrap must be >= 0")
	}
	if c.UI.GlamourStyle == "" {
		errs = append(errs, "ui.glamour_style must not be empty")
	}

	// Log validation
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, "log.level "+err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, errs)
	}

	return nil
}

// ParseLevel maps debug, info, warn and error (case-insensitive) to slog levels.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("must be debug, info, warn or error, got %q", level)
	}
}
