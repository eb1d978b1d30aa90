// Package groq implements the Provider interface for Groq's
// OpenAI-compatible chat completions endpoint.
package groq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	provider "github.com/Cyclone1070/devassist/internal/provider/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible API root.
	DefaultBaseURL = "https://api.groq.com/openai/v1/"

	// DefaultModel is used when no model is configured.
	DefaultModel = "llama-3.1-8b-instant"
)

// GroqProvider implements the Provider interface for Groq.
// It is immutable after construction and safe for concurrent use.
type GroqProvider struct {
	client    openai.Client
	modelName string
	logger    *slog.Logger
}

type settings struct {
	logger      *slog.Logger
	requestOpts []option.RequestOption
}

// Option configures a GroqProvider.
type Option func(*settings)

// WithLogger sets the logger used for response warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithRequestOptions appends SDK request options after the defaults.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(s *settings) {
		s.requestOpts = append(s.requestOpts, opts...)
	}
}

// New creates a GroqProvider. An empty baseURL selects DefaultBaseURL.
func New(apiKey, modelName, baseURL string, opts ...Option) *GroqProvider {
	if modelName == "" {
		modelName = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	clientOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	}, s.requestOpts...)

	return &GroqProvider{
		client:    openai.NewClient(clientOpts...),
		modelName: modelName,
		logger:    s.logger,
	}
}

// Generate sends a chat completion request and returns the response.
func (p *GroqProvider) Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
	params := toChatParams(p.modelName, req)

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	out, err := fromChatCompletion(resp, p.logger)
	if err != nil {
		return nil, err
	}
	out.Metadata.LatencyMs = time.Since(start).Milliseconds()
	return out, nil
}

// GetModel returns the active model name.
func (p *GroqProvider) GetModel() string {
	return p.modelName
}

// mapOpenAIError maps SDK errors to provider errors.
func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return provider.ErrorFromStatus(apiErr.StatusCode, apiErr.Message, err)
	}
	return provider.TransportError(fmt.Errorf("groq: %w", err))
}
