package models

import (
	"context"
)

// Provider defines the interface for LLM backends.
type Provider interface {
	// Generate sends a request to the model and returns the response.
	// Errors are *ProviderError values describing the transport failure.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// GetModel returns the active model name.
	GetModel() string
}
