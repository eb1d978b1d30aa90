package models

// GenerateRequest encapsulates all parameters for a single generation request.
type GenerateRequest struct {
	// System is the system instruction for this turn
	System string

	// Prompt is the user's input for this turn
	Prompt string

	// Config contains optional generation parameters
	Config *GenerateConfig

	// Tools contains tool definitions for native tool calling.
	// Nil means the model is asked for plain text only.
	Tools []ToolDefinition
}

// GenerateConfig contains optional generation parameters.
// All fields are pointers to distinguish between "not set" and "zero value".
type GenerateConfig struct {
	Temperature     *float32
	MaxOutputTokens *int32
}

// GenerateResponse contains the model's response and metadata.
type GenerateResponse struct {
	// Content contains the generated response
	Content ResponseContent

	// Metadata contains information about the generation
	Metadata ResponseMetadata
}

// ResponseContent holds what the model produced. A response may carry text,
// native tool calls, or both.
type ResponseContent struct {
	Text string

	// ToolCalls lists provider-native calls in the order the model emitted them.
	ToolCalls []ToolCall
}

// ToolCall represents a structured tool invocation from the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any

	// Malformed marks a call whose arguments could not be decoded into an
	// object. It keeps its position so readers can tell it was first.
	Malformed bool
}

// ResponseMetadata contains information about the generation.
type ResponseMetadata struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int

	ModelUsed string
	LatencyMs int64
}

// ToolDefinition defines a tool that the model can invoke.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"` // JSON Schema object
}

// Float32 returns a pointer to v.
func Float32(v float32) *float32 {
	return &v
}
