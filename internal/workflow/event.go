package workflow

// Event is the interface for all workflow events.
// UI handles events via type switch.
type Event interface {
	isEvent()
}

// ThinkingEvent is emitted when a model request is in flight.
type ThinkingEvent struct {
	Model string
}

func (ThinkingEvent) isEvent() {}

// ToolStartEvent is emitted when a call has been resolved and its
// capability is about to run, or when it was rejected before running.
type ToolStartEvent struct {
	CallID         string
	ToolName       string
	RequestDisplay string // e.g., "Explaining 12 lines of code"
}

func (ToolStartEvent) isEvent() {}

// ToolEndEvent is emitted when a call finishes, successfully or not.
type ToolEndEvent struct {
	CallID   string
	ToolName string
	Display  string
	Failed   bool
}

func (ToolEndEvent) isEvent() {}

// DoneEvent is emitted when a turn completes.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}
