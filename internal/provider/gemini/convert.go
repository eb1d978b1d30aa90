package gemini

import (
	"errors"
	"fmt"
	"strings"

	provider "github.com/Cyclone1070/devassist/internal/provider/models"
	"google.golang.org/genai"
)

// toGeminiContents converts a single-turn prompt to Gemini Content format.
func toGeminiContents(prompt string) []*genai.Content {
	if prompt == "" {
		return nil
	}
	return []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				genai.NewPartFromText(prompt),
			},
		},
	}
}

// toGeminiConfig converts the request's generation parameters, system
// instruction and tools to Gemini config.
func toGeminiConfig(req *provider.GenerateRequest) *genai.GenerateContentConfig {
	geminiConfig := &genai.GenerateContentConfig{
		SafetySettings: defaultSafetySettings(),
	}

	if req.System != "" {
		geminiConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(req.System)},
		}
	}

	if len(req.Tools) > 0 {
		geminiConfig.Tools = toGeminiTools(req.Tools)
	}

	if req.Config == nil {
		return geminiConfig
	}
	if req.Config.Temperature != nil {
		geminiConfig.Temperature = req.Config.Temperature
	}
	if req.Config.MaxOutputTokens != nil {
		geminiConfig.MaxOutputTokens = *req.Config.MaxOutputTokens
	}

	return geminiConfig
}

// defaultSafetySettings returns safety settings with BLOCK_NONE for all categories.
// Code snippets under review routinely trip the default filters.
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdOff},
	}
}

// toGeminiTools converts tool definitions to Gemini function declarations.
// Parameter schemas are passed through as raw JSON Schema.
func toGeminiTools(tools []provider.ToolDefinition) []*genai.Tool {
	functionDeclarations := make([]*genai.FunctionDeclaration, 0, len(tools))

	for _, tool := range tools {
		fd := &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
		}
		if tool.Parameters != nil {
			fd.ParametersJsonSchema = tool.Parameters
		}
		functionDeclarations = append(functionDeclarations, fd)
	}

	return []*genai.Tool{
		{FunctionDeclarations: functionDeclarations},
	}
}

// fromGeminiResponse converts Gemini response to internal format.
// Text parts and function call parts are both kept; the dispatcher decides
// which one wins.
func fromGeminiResponse(resp *genai.GenerateContentResponse, modelUsed string) (*provider.GenerateResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeEmptyResponse,
			Message: "no candidates in response",
		}
	}

	candidate := resp.Candidates[0]

	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeContentBlocked,
			Message: "content blocked by safety filters",
		}
	}

	var text strings.Builder
	toolCalls := make([]provider.ToolCall, 0)

	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if part.Text != "" && !part.Thought {
				text.WriteString(part.Text)
			}
			if part.FunctionCall != nil {
				toolCalls = append(toolCalls, provider.ToolCall{
					ID:   part.FunctionCall.ID,
					Name: part.FunctionCall.Name,
					Args: part.FunctionCall.Args,
				})
			}
		}
	}

	return &provider.GenerateResponse{
		Content: provider.ResponseContent{
			Text:      text.String(),
			ToolCalls: toolCalls,
		},
		Metadata: buildMetadata(resp.UsageMetadata, modelUsed),
	}, nil
}

// buildMetadata builds response metadata from usage data.
func buildMetadata(usage *genai.GenerateContentResponseUsageMetadata, modelUsed string) provider.ResponseMetadata {
	metadata := provider.ResponseMetadata{
		ModelUsed: modelUsed,
	}

	if usage != nil {
		metadata.PromptTokens = int(usage.PromptTokenCount)
		metadata.CompletionTokens = int(usage.CandidatesTokenCount)
		metadata.TotalTokens = int(usage.TotalTokenCount)
	}

	return metadata
}

// mapGeminiError maps Gemini API errors to provider errors.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return provider.ErrorFromStatus(apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return provider.ErrorFromStatus(apiErrPtr.Code, apiErrPtr.Message, err)
	}

	return provider.TransportError(fmt.Errorf("gemini: %w", err))
}
