// Package dispatch turns a model response into at most one capability
// invocation. Structured calls take priority over calls tagged in the text.
package dispatch

import (
	"fmt"

	"github.com/Cyclone1070/devassist/internal/capability"
)

// Source records where a call was found in the model response.
type Source int

const (
	SourceStructured Source = iota + 1
	SourceTagged
)

func (s Source) String() string {
	switch s {
	case SourceStructured:
		return "structured"
	case SourceTagged:
		return "tagged"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// RawCall is a call extracted from a model response before lookup and binding.
type RawCall struct {
	ID      string
	Name    string
	Payload capability.Payload
	Source  Source
}
