package capability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"net/url"
	"reflect"

	schemagen "github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator is implemented by request types that need checks beyond the schema.
// It runs after the schema has accepted the values and they were decoded.
type Validator interface {
	Validate() error
}

// Signature describes the parameters a capability accepts: their declared
// order, the JSON schema advertised to the model, and the compiled validator
// the binder checks payloads against.
type Signature struct {
	params    []string
	schema    map[string]any
	validator *jsonschema.Schema
	decode    func(values any) (any, error)
}

// Params returns the parameter names in struct field order.
func (s *Signature) Params() []string {
	return append([]string(nil), s.params...)
}

// Arity returns the number of declared parameters.
func (s *Signature) Arity() int {
	return len(s.params)
}

// Schema returns a shallow copy of the parameter schema.
// Nested maps are shared; callers must not mutate them.
func (s *Signature) Schema() map[string]any {
	return maps.Clone(s.schema)
}

// SignatureFor reflects the request struct Req into a Signature. Field names
// come from json tags, descriptions from jsonschema_description tags, and every
// field without omitempty is required. Unknown keys are rejected.
func SignatureFor[Req any]() (*Signature, error) {
	typ := reflect.TypeFor[Req]()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedRequest, typ)
	}

	r := &schemagen.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
	reflected := r.ReflectFromType(typ)

	var params []string
	if reflected.Properties != nil {
		for pair := reflected.Properties.Oldest(); pair != nil; pair = pair.Next() {
			params = append(params, pair.Key)
		}
	}

	data, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("marshal schema for %s: %w", typ, err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(data, &schemaMap); err != nil {
		return nil, fmt.Errorf("unmarshal schema for %s: %w", typ, err)
	}
	delete(schemaMap, "$schema")
	delete(schemaMap, "$id")

	validator, err := compileSchema(typ.String(), schemaMap)
	if err != nil {
		return nil, err
	}

	return &Signature{
		params:    params,
		schema:    schemaMap,
		validator: validator,
		decode:    decodeInto[Req],
	}, nil
}

// compileSchema compiles schemaMap into a validator. The map is not mutated.
func compileSchema(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	data, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	loc := "mem://capability/" + url.PathEscape(name) + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(loc, doc); err != nil {
		return nil, fmt.Errorf("add schema for %s: %w", name, err)
	}
	sch, err := c.Compile(loc)
	if err != nil {
		return nil, fmt.Errorf("compile schema for %s: %w", name, err)
	}
	return sch, nil
}

// normalize round-trips values through JSON so the validator sees the same
// shapes a decoded model payload would have (json.Number, []any, map[string]any).
func normalize(values map[string]any) (any, error) {
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}

// check validates values against the schema and decodes them into the
// request type. Nothing is returned unless both steps succeed.
func (s *Signature) check(values map[string]any) (any, map[string]any, error) {
	doc, err := normalize(values)
	if err != nil {
		return nil, nil, fmt.Errorf("arguments are not JSON: %w", err)
	}
	if err := s.validator.Validate(doc); err != nil {
		return nil, nil, err
	}
	req, err := s.decode(doc)
	if err != nil {
		return nil, nil, err
	}
	normalized, _ := doc.(map[string]any)
	return req, normalized, nil
}

func decodeInto[Req any](values any) (any, error) {
	var req Req
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		Result:      &req,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(values); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}

	if v, ok := any(req).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	} else if v, ok := any(&req).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return req, nil
}
