package turn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Cyclone1070/devassist/internal/dispatch"
	provider "github.com/Cyclone1070/devassist/internal/provider/models"
	"github.com/Cyclone1070/devassist/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type MockProvider struct {
	GenerateFunc func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error)
}

func (m *MockProvider) Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
	return m.GenerateFunc(ctx, req)
}

func (m *MockProvider) GetModel() string { return "mock-model" }

type MockDeclarer struct {
	Decls []provider.ToolDefinition
}

func (m *MockDeclarer) Declarations() []provider.ToolDefinition { return m.Decls }

type MockDispatcher struct {
	DispatchFunc func(ctx context.Context, resp *provider.GenerateResponse) dispatch.Result
}

func (m *MockDispatcher) Dispatch(ctx context.Context, resp *provider.GenerateResponse) dispatch.Result {
	if m.DispatchFunc != nil {
		return m.DispatchFunc(ctx, resp)
	}
	return dispatch.NoCall{Text: resp.Content.Text}
}

var explainDecl = provider.ToolDefinition{
	Name:        "explain_code",
	Description: "Dynamically explain any code.",
	Parameters: map[string]any{
		"type":       "object",
		"properties": map[string]any{"code": map[string]any{"type": "string"}},
	},
}

func TestRun_PlainAnswer(t *testing.T) {
	events := make(chan workflow.Event, 10)
	var captured *provider.GenerateRequest
	mp := &MockProvider{
		GenerateFunc: func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
			captured = req
			return &provider.GenerateResponse{Content: provider.ResponseContent{Text: "Hello!"}}, nil
		},
	}

	r := NewRunner(mp, &MockDeclarer{Decls: []provider.ToolDefinition{explainDecl}}, &MockDispatcher{}, events,
		Config{SystemPrompt: "be helpful", Temperature: provider.Float32(0.2)}, nil)
	res, err := r.Run(context.Background(), "Hi")

	require.NoError(t, err)
	assert.Equal(t, dispatch.NoCall{Text: "Hello!"}, res)

	assert.Equal(t, "Hi", captured.Prompt)
	assert.Equal(t, []provider.ToolDefinition{explainDecl}, captured.Tools)
	assert.Contains(t, captured.System, "be helpful")
	assert.Contains(t, captured.System, "- explain_code(code): Dynamically explain any code.")
	require.NotNil(t, captured.Config)
	assert.InDelta(t, 0.2, *captured.Config.Temperature, 0.0001)

	assert.Equal(t, workflow.ThinkingEvent{Model: "mock-model"}, <-events)
	assert.IsType(t, workflow.DoneEvent{}, <-events)
}

func TestRun_DispatchesResponse(t *testing.T) {
	resp := &provider.GenerateResponse{Content: provider.ResponseContent{Text: `<explain_code>{"code":"x"}</explain_code>`}}
	var dispatched *provider.GenerateResponse
	mp := &MockProvider{
		GenerateFunc: func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
			return resp, nil
		},
	}
	md := &MockDispatcher{
		DispatchFunc: func(ctx context.Context, r *provider.GenerateResponse) dispatch.Result {
			dispatched = r
			return dispatch.Ok{Name: "explain_code", Text: "explained"}
		},
	}

	res, err := NewRunner(mp, &MockDeclarer{}, md, nil, Config{}, nil).Run(context.Background(), "explain x")

	require.NoError(t, err)
	assert.Same(t, resp, dispatched)
	assert.Equal(t, dispatch.Ok{Name: "explain_code", Text: "explained"}, res)
}

func TestRun_ProviderError_ReturnsError(t *testing.T) {
	dispatched := false
	mp := &MockProvider{
		GenerateFunc: func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
			return nil, &provider.ProviderError{Code: provider.ErrorCodeAuth, Message: "bad key"}
		},
	}
	md := &MockDispatcher{
		DispatchFunc: func(ctx context.Context, r *provider.GenerateResponse) dispatch.Result {
			dispatched = true
			return nil
		},
	}

	_, err := NewRunner(mp, &MockDeclarer{}, md, make(chan workflow.Event, 10), Config{}, nil).Run(context.Background(), "hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider.Generate")
	assert.ErrorIs(t, err, provider.ErrAuthentication)
	assert.False(t, dispatched)
}

func TestRun_ContextCancelled_ReturnsError(t *testing.T) {
	mp := &MockProvider{
		GenerateFunc: func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
			t.Fatal("provider must not be called")
			return nil, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(mp, &MockDeclarer{}, &MockDispatcher{}, nil, Config{}, nil).Run(ctx, "hi")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Timeout_AppliesToProviderCall(t *testing.T) {
	mp := &MockProvider{
		GenerateFunc: func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	_, err := NewRunner(mp, &MockDeclarer{}, &MockDispatcher{}, nil, Config{Timeout: 20 * time.Millisecond}, nil).
		Run(context.Background(), "hi")

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestSystemPrompt(t *testing.T) {
	assert.Equal(t, "base", SystemPrompt("base", nil))

	got := SystemPrompt("", []provider.ToolDefinition{explainDecl, {Name: "ping", Description: "Ping."}})
	assert.Contains(t, got, "<tool_name>{\"parameter\": \"value\"}</tool_name>")
	assert.Contains(t, got, "- explain_code(code): Dynamically explain any code.")
	assert.Contains(t, got, "- ping(): Ping.")
	assert.NotContains(t, got, "\n\n\n")
}
