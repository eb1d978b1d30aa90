package config

import "errors"

var (
	// ErrInvalidConfig is wrapped by every validation failure.
	ErrInvalidConfig = errors.New("config validation failed")

	// ErrMissingCredential is returned when no API key is found for the
	// configured provider.
	ErrMissingCredential = errors.New("missing API key")
)
