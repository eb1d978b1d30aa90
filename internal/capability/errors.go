package capability

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidName is returned when a capability name contains characters
	// outside [a-zA-Z0-9_] or is empty.
	ErrInvalidName = errors.New("invalid capability name")

	// ErrDuplicateName is returned by a strict registry when a name is registered twice.
	ErrDuplicateName = errors.New("capability already registered")

	// ErrUnsupportedRequest is returned when a request type cannot be reflected
	// into a parameter schema (it must be a struct).
	ErrUnsupportedRequest = errors.New("request type must be a struct")

	// ErrBinding is wrapped by every BindError.
	ErrBinding = errors.New("argument binding failed")

	// ErrRequestType is returned by Invoke when the bound request was produced
	// for a different capability.
	ErrRequestType = errors.New("bound request has wrong type")
)

// BindError reports why every binding rule tried for a payload was rejected.
// Reasons are in the order the rules were tried.
type BindError struct {
	Reasons []string
}

func (e *BindError) Error() string {
	if len(e.Reasons) == 0 {
		return "no binding rule applies"
	}
	return strings.Join(e.Reasons, "; ")
}

func (e *BindError) Unwrap() error { return ErrBinding }
