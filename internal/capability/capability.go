// Package capability holds the named actions the dispatcher can invoke,
// the parameter signatures reflected from their request structs, and the
// binder that turns raw call payloads into validated requests.
package capability

import (
	"context"
	"fmt"
)

// Capability is a named action exposed to the model.
// Implementations must be immutable and safe for concurrent use.
type Capability interface {
	// Name returns the unique identifier, matching [a-zA-Z0-9_]+.
	Name() string

	// Description returns a human-readable summary advertised to the model.
	Description() string

	// Signature returns the parameters the capability accepts.
	Signature() *Signature

	// Invoke runs the capability with arguments produced by Bind for this
	// capability's signature.
	Invoke(ctx context.Context, args BoundArgs) (string, error)
}

// Handler executes a capability with a typed request.
type Handler[Req any] func(ctx context.Context, req Req) (string, error)

// Func adapts a typed Handler to the Capability interface. The parameter
// schema is reflected from Req once at construction.
type Func[Req any] struct {
	name        string
	description string
	sig         *Signature
	handler     Handler[Req]
}

// NewFunc creates a capability backed by handler.
//
// Example:
//
//	type explainRequest struct {
//	    Code string `json:"code" jsonschema_description:"Source code to explain"`
//	}
//	c, err := capability.NewFunc("explain_code", "Explain a snippet", explain)
func NewFunc[Req any](name, description string, handler Handler[Req]) (*Func[Req], error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if handler == nil {
		return nil, fmt.Errorf("capability %s: nil handler", name)
	}
	sig, err := SignatureFor[Req]()
	if err != nil {
		return nil, fmt.Errorf("capability %s: %w", name, err)
	}
	return &Func[Req]{
		name:        name,
		description: description,
		sig:         sig,
		handler:     handler,
	}, nil
}

// Name implements Capability.
func (f *Func[Req]) Name() string {
	return f.name
}

// Description implements Capability.
func (f *Func[Req]) Description() string {
	return f.description
}

// Signature implements Capability.
func (f *Func[Req]) Signature() *Signature {
	return f.sig
}

// Invoke implements Capability.
func (f *Func[Req]) Invoke(ctx context.Context, args BoundArgs) (string, error) {
	req, ok := args.Request.(Req)
	if !ok {
		return "", fmt.Errorf("%w: %s got %T", ErrRequestType, f.name, args.Request)
	}
	return f.handler(ctx, req)
}

// ValidName reports whether name is a non-empty run of [a-zA-Z0-9_].
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !IsNameByte(name[i]) {
			return false
		}
	}
	return true
}

// IsNameByte reports whether b may appear in a capability name.
func IsNameByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
