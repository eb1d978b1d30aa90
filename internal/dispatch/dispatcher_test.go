package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Cyclone1070/devassist/internal/capability"
	provider "github.com/Cyclone1070/devassist/internal/provider/models"
	"github.com/Cyclone1070/devassist/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codeInput struct {
	Code string `json:"code"`
}

func (c codeInput) String() string { return fmt.Sprintf("Reading %d bytes", len(c.Code)) }

type promptInput struct {
	Prompt string `json:"prompt"`
}

type pairInput struct {
	A string `json:"a"`
	B string `json:"b"`
}

type anyInput struct {
	A any `json:"a,omitempty"`
}

// MockLookup is a capabilityLookup backed by a LookupFunc.
type MockLookup struct {
	LookupFunc func(name string) (capability.Capability, bool)
}

func (m *MockLookup) Lookup(name string) (capability.Capability, bool) {
	if m.LookupFunc != nil {
		return m.LookupFunc(name)
	}
	return nil, false
}

func register[Req any](t *testing.T, r *capability.Registry, name string, h capability.Handler[Req]) {
	t.Helper()
	c, err := capability.NewFunc(name, name+" capability", h)
	require.NoError(t, err)
	require.NoError(t, r.Register(c))
}

func textResponse(text string) *provider.GenerateResponse {
	return &provider.GenerateResponse{Content: provider.ResponseContent{Text: text}}
}

func newTestRegistry(t *testing.T, calls *[]string) *capability.Registry {
	t.Helper()
	r := capability.NewRegistry()
	register(t, r, "explain_code", func(ctx context.Context, req codeInput) (string, error) {
		*calls = append(*calls, "explain_code:"+req.Code)
		return "explained " + req.Code, nil
	})
	register(t, r, "debug_code", func(ctx context.Context, req codeInput) (string, error) {
		*calls = append(*calls, "debug_code:"+req.Code)
		return "debugged " + req.Code, nil
	})
	register(t, r, "generate_unity_script", func(ctx context.Context, req promptInput) (string, error) {
		*calls = append(*calls, "generate_unity_script:"+req.Prompt)
		return "script for " + req.Prompt, nil
	})
	register(t, r, "pair", func(ctx context.Context, req pairInput) (string, error) {
		*calls = append(*calls, "pair")
		return req.A + req.B, nil
	})
	register(t, r, "foo", func(ctx context.Context, req anyInput) (string, error) {
		*calls = append(*calls, "foo")
		return fmt.Sprintf("foo got %v", req.A), nil
	})
	return r
}

func TestDispatch_TaggedCall_Ok(t *testing.T) {
	var calls []string
	d := New(newTestRegistry(t, &calls))

	res := d.Dispatch(context.Background(), textResponse(`<explain_code>{"code": "x := 1"}</explain_code>`))

	assert.Equal(t, Ok{Name: "explain_code", Text: "explained x := 1"}, res)
	assert.Equal(t, "explained x := 1", res.String())
	assert.Equal(t, []string{"explain_code:x := 1"}, calls)
}

func TestDispatch_GenericCloseTag_BindsOpeningName(t *testing.T) {
	var calls []string
	d := New(newTestRegistry(t, &calls))

	res := d.Dispatch(context.Background(), textResponse(`<foo>{"a":1}</function>`))

	require.IsType(t, Ok{}, res)
	assert.Equal(t, "foo got 1", res.String())
	assert.Equal(t, []string{"foo"}, calls)
}

func TestDispatch_MalformedBody_ScalarBind(t *testing.T) {
	var calls []string
	d := New(newTestRegistry(t, &calls))

	res := d.Dispatch(context.Background(), textResponse(`<debug_code>{print(x}</debug_code>`))

	assert.Equal(t, Ok{Name: "debug_code", Text: "debugged print(x"}, res)
}

func TestDispatch_MalformedBody_TwoParams_BindingFailed(t *testing.T) {
	var calls []string
	d := New(newTestRegistry(t, &calls))

	res := d.Dispatch(context.Background(), textResponse(`<pair>{a: 1, b: 2}</pair>`))

	failed, ok := res.(BindingFailed)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, "pair", failed.Name)
	assert.Contains(t, res.String(), "[Tool binding error] pair:")
	assert.Empty(t, calls)
	assert.True(t, Failed(res))
}

func TestDispatch_UnknownCapability_ToolNotFound(t *testing.T) {
	var calls []string
	d := New(newTestRegistry(t, &calls))

	res := d.Dispatch(context.Background(), textResponse(`<nope>{"code": "x"}</nope>`))

	assert.Equal(t, ToolNotFound{Name: "nope"}, res)
	assert.Equal(t, "[Error] Tool not found: nope", res.String())
	assert.Empty(t, calls)
}

func TestDispatch_SingleEntryMismatch_RetriesPositionally(t *testing.T) {
	var calls []string
	d := New(newTestRegistry(t, &calls))

	res := d.Dispatch(context.Background(), textResponse(`<generate_unity_script>{"code": "x"}</generate_unity_script>`))

	assert.Equal(t, Ok{Name: "generate_unity_script", Text: "script for x"}, res)
}

func TestDispatch_MultipleBlocks_OnlyFirstRuns(t *testing.T) {
	var calls []string
	d := New(newTestRegistry(t, &calls))

	res := d.Dispatch(context.Background(), textResponse(
		`<explain_code>{"code": "a"}</explain_code> then <debug_code>{"code": "b"}</debug_code>`))

	assert.Equal(t, "explained a", res.String())
	assert.Equal(t, []string{"explain_code:a"}, calls)
}

func TestDispatch_NoCall_ReturnsTextUnchanged(t *testing.T) {
	var calls []string
	d := New(newTestRegistry(t, &calls))
	text := "  A plain answer with <b>markup</b> and { braces }.\n"

	res := d.Dispatch(context.Background(), textResponse(text))

	assert.Equal(t, NoCall{Text: text}, res)
	assert.Equal(t, text, res.String())
	assert.False(t, Failed(res))
	assert.Empty(t, calls)
}

func TestDispatch_StructuredCallWinsOverTagged(t *testing.T) {
	var calls []string
	d := New(newTestRegistry(t, &calls))
	resp := &provider.GenerateResponse{Content: provider.ResponseContent{
		Text:      `<explain_code>{"code": "tagged"}</explain_code>`,
		ToolCalls: []provider.ToolCall{{ID: "call_1", Name: "debug_code", Args: map[string]any{"code": "structured"}}},
	}}

	res := d.Dispatch(context.Background(), resp)

	assert.Equal(t, Ok{Name: "debug_code", Text: "debugged structured"}, res)
	assert.Equal(t, []string{"debug_code:structured"}, calls)
}

func TestDispatch_MalformedStructuredCall_FallsBackToText(t *testing.T) {
	var calls []string
	d := New(newTestRegistry(t, &calls))
	resp := &provider.GenerateResponse{Content: provider.ResponseContent{
		Text:      `<explain_code>{"code": "tagged"}</explain_code>`,
		ToolCalls: []provider.ToolCall{{Name: ""}},
	}}

	res := d.Dispatch(context.Background(), resp)

	assert.Equal(t, "explained tagged", res.String())
}

func TestDispatch_MalformedFirstStructuredCall_LaterCallIgnored(t *testing.T) {
	var calls []string
	d := New(newTestRegistry(t, &calls))
	resp := &provider.GenerateResponse{Content: provider.ResponseContent{
		Text: `<generate_unity_script>{"prompt": "tagged"}</generate_unity_script>`,
		ToolCalls: []provider.ToolCall{
			{ID: "call_1", Name: "explain_code", Malformed: true},
			{ID: "call_2", Name: "debug_code", Args: map[string]any{"code": "x"}},
		},
	}}

	res := d.Dispatch(context.Background(), resp)

	assert.Equal(t, "script for tagged", res.String())
	assert.Equal(t, []string{"generate_unity_script:tagged"}, calls)
}

func TestDispatch_ExecutionError_ExecutionFailed(t *testing.T) {
	r := capability.NewRegistry()
	register(t, r, "explain_code", func(ctx context.Context, req codeInput) (string, error) {
		return "", errors.New("model unreachable")
	})

	res := New(r).Dispatch(context.Background(), textResponse(`<explain_code>{"code":"x"}</explain_code>`))

	assert.Equal(t, ExecutionFailed{Name: "explain_code", Reason: "model unreachable"}, res)
	assert.Equal(t, "[Tool execution error] model unreachable", res.String())
}

func TestDispatch_Panic_ExecutionFailed(t *testing.T) {
	r := capability.NewRegistry()
	register(t, r, "explain_code", func(ctx context.Context, req codeInput) (string, error) {
		panic("boom")
	})

	var res Result
	assert.NotPanics(t, func() {
		res = New(r).Dispatch(context.Background(), textResponse(`<explain_code>{"code":"x"}</explain_code>`))
	})

	failed, ok := res.(ExecutionFailed)
	require.True(t, ok, "got %T", res)
	assert.Contains(t, failed.Reason, ErrPanic.Error())
	assert.Contains(t, failed.Reason, "boom")
}

func TestDispatch_LookupPanic_Recovered(t *testing.T) {
	lookup := &MockLookup{
		LookupFunc: func(name string) (capability.Capability, bool) {
			panic("registry corrupted")
		},
	}

	res := New(lookup).Dispatch(context.Background(), textResponse(`<x>{}</x>`))

	assert.IsType(t, ExecutionFailed{}, res)
}

func TestDispatch_NilResponse_NoCall(t *testing.T) {
	res := New(&MockLookup{}).Dispatch(context.Background(), nil)
	assert.Equal(t, NoCall{}, res)
}

func TestDispatch_MaxScanBytes_LimitsTaggedSearch(t *testing.T) {
	var calls []string
	d := New(newTestRegistry(t, &calls), WithMaxScanBytes(10))
	text := `padding padding <explain_code>{"code":"x"}</explain_code>`

	res := d.Dispatch(context.Background(), textResponse(text))

	assert.Equal(t, NoCall{Text: text}, res)
	assert.Empty(t, calls)
}

func TestDispatch_ZeroMaxScanBytes_SearchesWholeText(t *testing.T) {
	var calls []string
	d := New(newTestRegistry(t, &calls), WithMaxScanBytes(0))
	text := strings.Repeat("padding ", 40*1024) + `<explain_code>{"code":"late"}</explain_code>`

	res := d.Dispatch(context.Background(), textResponse(text))

	assert.Equal(t, Ok{Name: "explain_code", Text: "explained late"}, res)
	assert.Equal(t, []string{"explain_code:late"}, calls)
}

func TestDispatch_EmitsToolEvents(t *testing.T) {
	var calls []string
	events := make(chan workflow.Event, 10)
	d := New(newTestRegistry(t, &calls), WithEvents(events))

	d.Dispatch(context.Background(), textResponse(`<explain_code>{"code":"abc"}</explain_code>`))

	start, ok := (<-events).(workflow.ToolStartEvent)
	require.True(t, ok)
	assert.Equal(t, "explain_code", start.ToolName)
	assert.Equal(t, "Reading 3 bytes", start.RequestDisplay)
	assert.NotEmpty(t, start.CallID)

	end, ok := (<-events).(workflow.ToolEndEvent)
	require.True(t, ok)
	assert.Equal(t, start.CallID, end.CallID)
	assert.False(t, end.Failed)
}

func TestDispatch_StructuredCallKeepsProviderID(t *testing.T) {
	var calls []string
	events := make(chan workflow.Event, 10)
	d := New(newTestRegistry(t, &calls), WithEvents(events))

	d.Dispatch(context.Background(), &provider.GenerateResponse{Content: provider.ResponseContent{
		ToolCalls: []provider.ToolCall{{ID: "call_9", Name: "explain_code", Args: map[string]any{"code": "x"}}},
	}})

	start := (<-events).(workflow.ToolStartEvent)
	assert.Equal(t, "call_9", start.CallID)
}

func TestDispatch_RejectedCall_EmitsFailedEnd(t *testing.T) {
	var calls []string
	events := make(chan workflow.Event, 10)
	d := New(newTestRegistry(t, &calls), WithEvents(events))

	d.Dispatch(context.Background(), textResponse(`<nope>{}</nope>`))

	assert.IsType(t, workflow.ToolStartEvent{}, <-events)
	end, ok := (<-events).(workflow.ToolEndEvent)
	require.True(t, ok)
	assert.True(t, end.Failed)
	assert.Equal(t, "Tool not found", end.Display)
}

func TestDispatch_CancelledContext_DoesNotBlockOnEvents(t *testing.T) {
	var calls []string
	events := make(chan workflow.Event) // nobody reads
	d := New(newTestRegistry(t, &calls), WithEvents(events))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := d.Dispatch(ctx, textResponse(`<explain_code>{"code":"x"}</explain_code>`))

	assert.Equal(t, "explained x", res.String())
}
