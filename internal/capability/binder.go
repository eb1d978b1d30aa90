package capability

import (
	"fmt"
	"strings"
)

// PayloadKind tells the binder which rules apply to a payload.
type PayloadKind int

const (
	// PayloadMapping is a keyed argument mapping (a structured call or a
	// tagged body that parsed as a JSON object).
	PayloadMapping PayloadKind = iota
	// PayloadText is a bare string left over when a tagged body was not a JSON object.
	PayloadText
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadMapping:
		return "mapping"
	case PayloadText:
		return "text"
	default:
		return fmt.Sprintf("PayloadKind(%d)", int(k))
	}
}

// Payload is the raw, unbound argument set of a call.
type Payload struct {
	Kind    PayloadKind
	Mapping map[string]any
	Text    string
}

// MappingPayload wraps a keyed argument mapping. A nil mapping is treated as empty.
func MappingPayload(m map[string]any) Payload {
	if m == nil {
		m = map[string]any{}
	}
	return Payload{Kind: PayloadMapping, Mapping: m}
}

// TextPayload wraps a bare string argument.
func TextPayload(s string) Payload {
	return Payload{Kind: PayloadText, Text: s}
}

// Rung identifies the binding rule that accepted a payload.
type Rung int

const (
	RungKeyword Rung = iota + 1
	RungPositional
	RungScalar
)

func (r Rung) String() string {
	switch r {
	case RungKeyword:
		return "keyword"
	case RungPositional:
		return "positional"
	case RungScalar:
		return "scalar"
	default:
		return fmt.Sprintf("Rung(%d)", int(r))
	}
}

// BoundArgs is a payload that passed validation for one capability.
// Request holds the decoded request struct; Values the validated mapping.
type BoundArgs struct {
	Request any
	Values  map[string]any
	Rung    Rung
}

// Bind applies the binding rules in order and returns the first that accepts:
//
//	mapping           keyword:    keys validate against the schema as given
//	mapping, 1 entry  positional: the single value is bound to the first parameter
//	text              scalar:     the text is bound to the only parameter (arity 1)
//
// Binding is all-or-nothing. When no rule accepts, the *BindError lists the
// reason each tried rule gave.
func Bind(sig *Signature, p Payload) (BoundArgs, error) {
	var reasons []string

	switch p.Kind {
	case PayloadMapping:
		args, err := bindValues(sig, p.Mapping, RungKeyword)
		if err == nil {
			return args, nil
		}
		reasons = append(reasons, reason(RungKeyword, err))

		if len(p.Mapping) != 1 {
			reasons = append(reasons, fmt.Sprintf("%s: mapping has %d entries, want 1", RungPositional, len(p.Mapping)))
			break
		}
		if sig.Arity() == 0 {
			reasons = append(reasons, fmt.Sprintf("%s: capability takes no parameters", RungPositional))
			break
		}
		var value any
		for _, v := range p.Mapping {
			value = v
		}
		args, err = bindValues(sig, map[string]any{sig.params[0]: value}, RungPositional)
		if err == nil {
			return args, nil
		}
		reasons = append(reasons, reason(RungPositional, err))

	case PayloadText:
		if strings.TrimSpace(p.Text) == "" {
			reasons = append(reasons, fmt.Sprintf("%s: empty payload", RungScalar))
			break
		}
		if sig.Arity() != 1 {
			reasons = append(reasons, fmt.Sprintf("%s: capability takes %d parameters, want 1", RungScalar, sig.Arity()))
			break
		}
		args, err := bindValues(sig, map[string]any{sig.params[0]: p.Text}, RungScalar)
		if err == nil {
			return args, nil
		}
		reasons = append(reasons, reason(RungScalar, err))

	default:
		reasons = append(reasons, fmt.Sprintf("unknown payload kind %s", p.Kind))
	}

	return BoundArgs{}, &BindError{Reasons: reasons}
}

func bindValues(sig *Signature, values map[string]any, rung Rung) (BoundArgs, error) {
	req, normalized, err := sig.check(values)
	if err != nil {
		return BoundArgs{}, err
	}
	return BoundArgs{Request: req, Values: normalized, Rung: rung}, nil
}

// reason flattens multi-line validator output onto one line.
func reason(rung Rung, err error) string {
	return fmt.Sprintf("%s: %s", rung, strings.Join(strings.Fields(err.Error()), " "))
}
