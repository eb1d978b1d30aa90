package groq

import (
	"encoding/json"
	"log/slog"

	provider "github.com/Cyclone1070/devassist/internal/provider/models"
	"github.com/openai/openai-go"
)

// toChatParams converts a GenerateRequest to chat completion params.
func toChatParams(model string, req *provider.GenerateRequest) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: model,
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))
	params.Messages = messages

	if req.Config != nil {
		if req.Config.Temperature != nil {
			params.Temperature = openai.Float(float64(*req.Config.Temperature))
		}
		if req.Config.MaxOutputTokens != nil {
			params.MaxCompletionTokens = openai.Int(int64(*req.Config.MaxOutputTokens))
		}
	}

	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, 0, len(req.Tools))
		for _, tool := range req.Tools {
			tools = append(tools, openai.ChatCompletionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        tool.Name,
					Description: openai.String(tool.Description),
					Parameters:  openai.FunctionParameters(tool.Parameters),
				},
			})
		}
		params.Tools = tools
	}

	return params
}

// fromChatCompletion converts the first choice of a completion to a GenerateResponse.
// Tool calls whose arguments are not a JSON object are kept in place and
// marked Malformed.
func fromChatCompletion(resp *openai.ChatCompletion, logger *slog.Logger) (*provider.GenerateResponse, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeEmptyResponse,
			Message: "no choices in response",
		}
	}

	choice := resp.Choices[0]
	out := &provider.GenerateResponse{
		Content: provider.ResponseContent{
			Text:      choice.Message.Content,
			ToolCalls: make([]provider.ToolCall, 0, len(choice.Message.ToolCalls)),
		},
		Metadata: provider.ResponseMetadata{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
			ModelUsed:        resp.Model,
		},
	}

	for _, tc := range choice.Message.ToolCalls {
		call := provider.ToolCall{ID: tc.ID, Name: tc.Function.Name, Args: map[string]any{}}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &call.Args); err != nil || call.Args == nil {
				logger.Warn("tool call has malformed arguments",
					"tool", tc.Function.Name, "call_id", tc.ID, "error", err)
				call.Args = nil
				call.Malformed = true
			}
		}
		out.Content.ToolCalls = append(out.Content.ToolCalls, call)
	}

	return out, nil
}
