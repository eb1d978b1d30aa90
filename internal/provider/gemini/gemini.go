package gemini

import (
	"context"
	"time"

	provider "github.com/Cyclone1070/devassist/internal/provider/models"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// GeminiProvider implements the Provider interface for Google Gemini.
// It is immutable after construction and safe for concurrent use.
type GeminiProvider struct {
	client    GeminiClient
	modelName string
}

// New creates a new GeminiProvider with the specified client and model.
func New(client GeminiClient, modelName string) *GeminiProvider {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &GeminiProvider{
		client:    client,
		modelName: modelName,
	}
}

// Generate sends a request to the Gemini API and returns the response.
func (p *GeminiProvider) Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
	contents := toGeminiContents(req.Prompt)
	config := toGeminiConfig(req)

	start := time.Now()
	resp, err := p.client.GenerateContent(ctx, p.modelName, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	out, err := fromGeminiResponse(resp, p.modelName)
	if err != nil {
		return nil, err
	}
	out.Metadata.LatencyMs = time.Since(start).Milliseconds()
	return out, nil
}

// GetModel returns the active model name.
func (p *GeminiProvider) GetModel() string {
	return p.modelName
}
