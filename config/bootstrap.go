package config

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/joeycumines/lift/diagnostic"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// LoadYAML decodes a YAML document into a flat map and inserts each
// top-level key into a new child of parent, returning that child. Nested
// maps/sequences are inserted as-is (any, recursively map[string]any /
// []any), available to GetList/GetBool coercion as scalars would be.
func LoadYAML(parent *Scope, r io.Reader) (*Scope, error) {
	var doc map[string]any
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, diagnostic.NewRecord("runtime_error", diagnostic.Record{
			Template: "config: failed to decode yaml: ${1}",
			Args:     []any{err.Error()},
		})
	}
	child := parent.NewChild()
	for k, v := range doc {
		_ = child.Set(k, normalizeYAMLValue(v))
	}
	return child, nil
}

// normalizeYAMLValue recursively converts map[any]any (which older yaml
// decoders can still surface for nested nodes) into map[string]any so
// downstream consumers never need a type switch on yaml-specific types.
func normalizeYAMLValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeYAMLValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = normalizeYAMLValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = normalizeYAMLValue(vv)
		}
		return out
	default:
		return v
	}
}

// Schema compiles a JSON Schema (given as a decoded map, e.g. the value of
// a "schema" config key) for later validation of structured config values
// via Schema.Validate.
type Schema struct {
	compiled *jsonschema.Schema
}

// CompileSchema compiles def (a JSON-Schema-shaped map) into a reusable
// Schema.
func CompileSchema(name string, def map[string]any) (*Schema, error) {
	b, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("config: marshal schema %q: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	resource := name
	if resource == "" {
		resource = "schema.json"
	}
	if err := c.AddResource(resource, strings.NewReader(string(b))); err != nil {
		return nil, fmt.Errorf("config: add schema resource %q: %w", resource, err)
	}
	compiled, err := c.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("config: compile schema %q: %w", resource, err)
	}
	return &Schema{compiled: compiled}, nil
}

// Validate checks value (typically a map[string]any decoded from YAML or
// JSON) against the compiled schema, returning a "runtime_error" Diagnostic
// on mismatch so callers can report it through the normal diagnostics path.
func (s *Schema) Validate(value any) error {
	if err := s.compiled.Validate(value); err != nil {
		return diagnostic.NewRecord("runtime_error", diagnostic.Record{
			Template: "config: schema validation failed: ${1}",
			Args:     []any{err.Error()},
		})
	}
	return nil
}

// SetValidated inserts v at k on scope only if schema accepts it.
func SetValidated(scope *Scope, schema *Schema, k string, v any) error {
	if err := schema.Validate(v); err != nil {
		return err
	}
	return scope.Set(k, v)
}
