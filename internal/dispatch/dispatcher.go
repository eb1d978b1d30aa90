package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Cyclone1070/devassist/internal/capability"
	provider "github.com/Cyclone1070/devassist/internal/provider/models"
	"github.com/Cyclone1070/devassist/internal/workflow"
	"github.com/google/uuid"
)

// ErrPanic wraps a value recovered from a panicking capability.
var ErrPanic = errors.New("capability panicked")

// Dispatcher resolves and runs at most one call per model response.
// It never returns an error or lets a panic escape; every failure becomes a Result.
type Dispatcher struct {
	capabilities capabilityLookup
	events       chan<- workflow.Event
	logger       *slog.Logger
	maxScanBytes int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithEvents sets the channel ToolStartEvent and ToolEndEvent are sent to.
func WithEvents(events chan<- workflow.Event) Option {
	return func(d *Dispatcher) {
		d.events = events
	}
}

// WithLogger sets the logger for dispatch transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMaxScanBytes limits how much of the response text is searched for a
// tagged call. Zero or less scans everything.
func WithMaxScanBytes(n int) Option {
	return func(d *Dispatcher) {
		d.maxScanBytes = n
	}
}

func New(capabilities capabilityLookup, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		capabilities: capabilities,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs the call found in resp, preferring a structured call over a
// tagged one. Without a call the result is NoCall carrying the response text.
func (d *Dispatcher) Dispatch(ctx context.Context, resp *provider.GenerateResponse) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatch panicked", "panic", r)
			result = ExecutionFailed{Reason: fmt.Sprintf("%v: %v", ErrPanic, r)}
		}
	}()

	if resp == nil {
		return NoCall{}
	}

	call, ok := ReadStructured(resp)
	if !ok {
		call, ok = Extract(d.scanWindow(resp.Content.Text))
		if !ok {
			d.logger.Debug("no call in response", "text_bytes", len(resp.Content.Text))
			return NoCall{Text: resp.Content.Text}
		}
	}
	if call.ID == "" {
		call.ID = uuid.NewString()
	}
	return d.run(ctx, call)
}

func (d *Dispatcher) scanWindow(text string) string {
	if d.maxScanBytes > 0 && len(text) > d.maxScanBytes {
		return text[:d.maxScanBytes]
	}
	return text
}

func (d *Dispatcher) run(ctx context.Context, call RawCall) Result {
	log := d.logger.With("call_id", call.ID, "capability", call.Name, "source", call.Source.String())
	log.Debug("call extracted", "payload", call.Payload.Kind.String())

	c, ok := d.capabilities.Lookup(call.Name)
	if !ok {
		log.Debug("capability not found")
		d.reject(ctx, call, "Tool not found")
		return ToolNotFound{Name: call.Name}
	}

	args, err := capability.Bind(c.Signature(), call.Payload)
	if err != nil {
		log.Debug("binding failed", "error", err)
		d.reject(ctx, call, "Invalid tool request")
		return BindingFailed{Name: call.Name, Reason: err.Error()}
	}
	log.Debug("arguments bound", "rung", args.Rung.String())

	display := ""
	if s, ok := args.Request.(fmt.Stringer); ok {
		display = s.String()
	}
	d.emit(ctx, workflow.ToolStartEvent{CallID: call.ID, ToolName: call.Name, RequestDisplay: display})

	out, err := invoke(ctx, c, args)
	if err != nil {
		log.Warn("capability failed", "error", err)
		d.emit(ctx, workflow.ToolEndEvent{CallID: call.ID, ToolName: call.Name, Display: "Failed", Failed: true})
		return ExecutionFailed{Name: call.Name, Reason: err.Error()}
	}

	log.Debug("capability finished", "output_bytes", len(out))
	d.emit(ctx, workflow.ToolEndEvent{CallID: call.ID, ToolName: call.Name, Display: "Done"})
	return Ok{Name: call.Name, Text: out}
}

// reject reports a call that never reached its capability.
func (d *Dispatcher) reject(ctx context.Context, call RawCall, display string) {
	d.emit(ctx, workflow.ToolStartEvent{CallID: call.ID, ToolName: call.Name})
	d.emit(ctx, workflow.ToolEndEvent{CallID: call.ID, ToolName: call.Name, Display: display, Failed: true})
}

func (d *Dispatcher) emit(ctx context.Context, ev workflow.Event) {
	if d.events == nil {
		return
	}
	select {
	case d.events <- ev:
	case <-ctx.Done():
	}
}

func invoke(ctx context.Context, c capability.Capability, args capability.BoundArgs) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return c.Invoke(ctx, args)
}
