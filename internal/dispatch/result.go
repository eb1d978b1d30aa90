package dispatch

import "fmt"

// Result is the outcome of one dispatch. Every variant renders to a
// displayable string; callers type-switch to style them.
type Result interface {
	isResult()
	String() string
}

// Ok carries the text a capability returned.
type Ok struct {
	Name string
	Text string
}

func (Ok) isResult()        {}
func (r Ok) String() string { return r.Text }

// NoCall means the response contained no call; Text is the response text unchanged.
type NoCall struct {
	Text string
}

func (NoCall) isResult()        {}
func (r NoCall) String() string { return r.Text }

// ToolNotFound means the call named a capability that is not registered.
type ToolNotFound struct {
	Name string
}

func (ToolNotFound) isResult() {}
func (r ToolNotFound) String() string {
	return fmt.Sprintf("[Error] Tool not found: %s", r.Name)
}

// BindingFailed means no binding rule accepted the call's payload.
type BindingFailed struct {
	Name   string
	Reason string
}

func (BindingFailed) isResult() {}
func (r BindingFailed) String() string {
	return fmt.Sprintf("[Tool binding error] %s: %s", r.Name, r.Reason)
}

// ExecutionFailed means the capability returned an error or panicked.
type ExecutionFailed struct {
	Name   string
	Reason string
}

func (ExecutionFailed) isResult() {}
func (r ExecutionFailed) String() string {
	return fmt.Sprintf("[Tool execution error] %s", r.Reason)
}

// Failed reports whether r is one of the error variants.
func Failed(r Result) bool {
	switch r.(type) {
	case ToolNotFound, BindingFailed, ExecutionFailed:
		return true
	}
	return false
}
