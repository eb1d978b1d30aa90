// Package provider selects and builds the model client named in the config.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Cyclone1070/devassist/internal/config"
	"github.com/Cyclone1070/devassist/internal/provider/gemini"
	"github.com/Cyclone1070/devassist/internal/provider/groq"
	"github.com/Cyclone1070/devassist/internal/provider/models"
)

// ErrUnknownProvider is returned for a provider name New does not support.
var ErrUnknownProvider = errors.New("unknown provider")

// New builds the provider named by cfg.Name using apiKey.
func New(ctx context.Context, cfg config.ProviderConfig, apiKey string, logger *slog.Logger) (models.Provider, error) {
	switch cfg.Name {
	case config.ProviderGroq:
		return groq.New(apiKey, cfg.Model, cfg.BaseURL, groq.WithLogger(logger)), nil
	case config.ProviderGemini:
		client, err := gemini.NewClientWithAPIKey(ctx, apiKey, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		return gemini.New(client, cfg.Model), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Name)
	}
}
