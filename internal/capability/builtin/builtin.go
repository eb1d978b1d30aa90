// Package builtin provides the capabilities registered at startup. Each one
// is a single prompt-to-model round trip.
package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/devassist/internal/capability"
	provider "github.com/Cyclone1070/devassist/internal/provider/models"
)

const (
	ExplainCodeName         = "explain_code"
	DebugCodeName           = "debug_code"
	GenerateUnityScriptName = "generate_unity_script"
)

// generator sends a single prompt to the model.
type generator interface {
	Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error)
}

type ExplainRequest struct {
	Code string `json:"code" jsonschema_description:"The source code to explain"`
}

func (r ExplainRequest) String() string {
	return fmt.Sprintf("Explaining %s", describeLines(r.Code))
}

type DebugRequest struct {
	Code string `json:"code" jsonschema_description:"The source code to debug and fix"`
}

func (r DebugRequest) String() string {
	return fmt.Sprintf("Debugging %s", describeLines(r.Code))
}

type UnityScriptRequest struct {
	Prompt string `json:"prompt" jsonschema_description:"What the Unity C# script should do"`
}

func (r UnityScriptRequest) String() string {
	return "Generating Unity script"
}

// Capabilities builds the built-in capabilities on top of llm.
// A nil temperature leaves the provider default.
func Capabilities(llm generator, temperature *float32) ([]capability.Capability, error) {
	p := &prompter{llm: llm, temperature: temperature}

	explain, err := capability.NewFunc(ExplainCodeName, "Dynamically explain any code.",
		func(ctx context.Context, req ExplainRequest) (string, error) {
			return p.ask(ctx, "Explain the following code:\n\n"+req.Code+"\n\nExplanation:")
		})
	if err != nil {
		return nil, err
	}

	debug, err := capability.NewFunc(DebugCodeName, "Debug the given code and fix errors.",
		func(ctx context.Context, req DebugRequest) (string, error) {
			return p.ask(ctx, "Debug this code. Fix errors and explain what was wrong:\n\n"+req.Code)
		})
	if err != nil {
		return nil, err
	}

	unity, err := capability.NewFunc(GenerateUnityScriptName, "Generate Unity C# script dynamically.",
		func(ctx context.Context, req UnityScriptRequest) (string, error) {
			return p.ask(ctx, "Generate a Unity C# script for:\n\n"+req.Prompt)
		})
	if err != nil {
		return nil, err
	}

	return []capability.Capability{explain, debug, unity}, nil
}

type prompter struct {
	llm         generator
	temperature *float32
}

func (p *prompter) ask(ctx context.Context, prompt string) (string, error) {
	req := &provider.GenerateRequest{Prompt: prompt}
	if p.temperature != nil {
		req.Config = &provider.GenerateConfig{Temperature: p.temperature}
	}
	resp, err := p.llm.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}
	return resp.Content.Text, nil
}

func describeLines(code string) string {
	n := strings.Count(strings.TrimRight(code, "\n"), "\n") + 1
	if n == 1 {
		return "1 line of code"
	}
	return fmt.Sprintf("%d lines of code", n)
}
