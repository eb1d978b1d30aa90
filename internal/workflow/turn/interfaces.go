package turn

import (
	"context"

	"github.com/Cyclone1070/devassist/internal/dispatch"
	provider "github.com/Cyclone1070/devassist/internal/provider/models"
)

// llmProvider communicates with the model.
type llmProvider interface {
	// Generate sends one request and returns the model's response.
	Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error)

	// GetModel returns the active model name.
	GetModel() string
}

// toolDeclarer lists the capabilities advertised to the model.
type toolDeclarer interface {
	// Declarations returns all capability schemas, sorted by name.
	Declarations() []provider.ToolDefinition
}

// dispatcher runs at most one call found in a model response.
type dispatcher interface {
	// Dispatch never fails; every outcome is a dispatch.Result.
	Dispatch(ctx context.Context, resp *provider.GenerateResponse) dispatch.Result
}
