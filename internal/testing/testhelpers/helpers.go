// Package testhelpers provides shared utilities for integration testing
package testhelpers

import (
	"context"
	"sync"

	"github.com/Cyclone1070/devassist/internal/provider/models"
	"github.com/Cyclone1070/devassist/internal/workflow"
)

// MockProvider replays queued responses in order and records every request.
type MockProvider struct {
	mu            sync.Mutex
	responses     []scripted
	responseIndex int
	modelName     string
	requests      []*models.GenerateRequest

	// OnGenerateCalled is a callback for observing Generate calls
	OnGenerateCalled func(*models.GenerateRequest)
}

type scripted struct {
	resp *models.GenerateResponse
	err  error
}

// NewMockProvider creates a new mock provider with default settings
func NewMockProvider() *MockProvider {
	return &MockProvider{modelName: "mock-model"}
}

// WithTextResponse adds a text response to the queue
func (m *MockProvider) WithTextResponse(text string) *MockProvider {
	return m.with(&models.GenerateResponse{Content: models.ResponseContent{Text: text}}, nil)
}

// WithToolCallResponse adds a native tool call response to the queue
func (m *MockProvider) WithToolCallResponse(calls ...models.ToolCall) *MockProvider {
	return m.with(&models.GenerateResponse{Content: models.ResponseContent{ToolCalls: calls}}, nil)
}

// WithError queues a failed Generate call
func (m *MockProvider) WithError(err error) *MockProvider {
	return m.with(nil, err)
}

func (m *MockProvider) with(resp *models.GenerateResponse, err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, scripted{resp: resp, err: err})
	return m
}

// Generate implements the Provider interface
func (m *MockProvider) Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	if m.OnGenerateCalled != nil {
		m.OnGenerateCalled(req)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if m.responseIndex >= len(m.responses) {
		// Return a default text response if we run out
		return &models.GenerateResponse{Content: models.ResponseContent{Text: "Done"}}, nil
	}

	next := m.responses[m.responseIndex]
	m.responseIndex++
	if next.err != nil {
		return nil, next.err
	}
	resp := *next.resp
	resp.Metadata.ModelUsed = m.modelName
	return &resp, nil
}

// GetModel implements the Provider interface
func (m *MockProvider) GetModel() string {
	return m.modelName
}

// Requests returns a copy of every request received so far.
func (m *MockProvider) Requests() []*models.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	reqs := make([]*models.GenerateRequest, len(m.requests))
	copy(reqs, m.requests)
	return reqs
}

// EventRecorder drains an event channel in the background.
type EventRecorder struct {
	mu     sync.Mutex
	events []workflow.Event
	done   chan struct{}
}

// RecordEvents starts draining ch until it is closed.
func RecordEvents(ch <-chan workflow.Event) *EventRecorder {
	r := &EventRecorder{done: make(chan struct{})}
	go func() {
		defer close(r.done)
		for ev := range ch {
			r.mu.Lock()
			r.events = append(r.events, ev)
			r.mu.Unlock()
		}
	}()
	return r
}

// Wait blocks until the channel is closed and returns everything received.
func (r *EventRecorder) Wait() []workflow.Event {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events
}
