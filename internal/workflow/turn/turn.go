// Package turn runs one model round trip followed by at most one capability call.
package turn

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Cyclone1070/devassist/internal/dispatch"
	provider "github.com/Cyclone1070/devassist/internal/provider/models"
	"github.com/Cyclone1070/devassist/internal/workflow"
)

// Config holds per-turn request settings.
type Config struct {
	SystemPrompt string
	Temperature  *float32
	// Timeout bounds the whole turn, model call and capability together.
	// Zero means no timeout beyond the caller's context.
	Timeout time.Duration
}

type Runner struct {
	provider   llmProvider
	tools      toolDeclarer
	dispatcher dispatcher
	events     chan<- workflow.Event
	cfg        Config
	logger     *slog.Logger
}

func NewRunner(provider llmProvider, tools toolDeclarer, dispatcher dispatcher, events chan<- workflow.Event, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		provider:   provider,
		tools:      tools,
		dispatcher: dispatcher,
		events:     events,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run sends input to the model and dispatches its response. The returned
// error is only ever a model or context failure; capability failures are
// reported through the Result.
func (r *Runner) Run(ctx context.Context, input string) (dispatch.Result, error) {
	defer r.emit(ctx, workflow.DoneEvent{})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	decls := r.tools.Declarations()
	req := &provider.GenerateRequest{
		System: SystemPrompt(r.cfg.SystemPrompt, decls),
		Prompt: input,
		Tools:  decls,
	}
	if r.cfg.Temperature != nil {
		req.Config = &provider.GenerateConfig{Temperature: r.cfg.Temperature}
	}

	r.emit(ctx, workflow.ThinkingEvent{Model: r.provider.GetModel()})

	resp, err := r.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("provider.Generate: %w", err)
	}
	r.logger.Debug("model responded",
		"model", resp.Metadata.ModelUsed,
		"total_tokens", resp.Metadata.TotalTokens,
		"latency_ms", resp.Metadata.LatencyMs,
		"tool_calls", len(resp.Content.ToolCalls),
	)

	return r.dispatcher.Dispatch(ctx, resp), nil
}

func (r *Runner) emit(ctx context.Context, ev workflow.Event) {
	if r.events == nil {
		return
	}
	select {
	case r.events <- ev:
	case <-ctx.Done():
	}
}

// SystemPrompt appends to base a description of the available capabilities
// and the tagged call syntax, for models that cannot emit native tool calls.
func SystemPrompt(base string, decls []provider.ToolDefinition) string {
	if len(decls) == 0 {
		return base
	}

	var b strings.Builder
	if base != "" {
		b.WriteString(base)
		b.WriteString("\n\n")
	}
	b.WriteString("You can use one of the tools below. Prefer native tool calls. ")
	b.WriteString("If you cannot make one, write the call in your reply as\n")
	b.WriteString("<tool_name>{\"parameter\": \"value\"}</tool_name>\n")
	b.WriteString("Only the first call in a reply is run.\n\nTools:\n")
	for _, d := range decls {
		fmt.Fprintf(&b, "- %s(%s): %s\n", d.Name, strings.Join(paramNames(d.Parameters), ", "), d.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func paramNames(schema map[string]any) []string {
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
