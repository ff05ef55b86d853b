package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"crudrouter/internal/core/domain"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const resourceURL = "schema.json"

// Violation is a single failed rule.
type Violation struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + ": " + v.Message
}

// Validate checks a record against the declared rules and returns every violation found.
// An empty result means the record is valid.
func (s *Schema) Validate(record domain.Record) []Violation {
	if s == nil || (len(s.Fields) == 0 && len(s.JSONSchema) == 0) {
		return nil
	}

	s.once.Do(func() {
		s.compiled, s.compErr = s.compile()
	})

	if s.compErr != nil {
		return []Violation{{Message: fmt.Sprintf("schema compilation error: %v", s.compErr)}}
	}

	// round trip so the validator only sees plain JSON values
	raw, err := json.Marshal(map[string]any(record))
	if err != nil {
		return []Violation{{Message: fmt.Sprintf("record is not valid JSON: %v", err)}}
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return []Violation{{Message: fmt.Sprintf("record is not valid JSON: %v", err)}}
	}

	if err := s.compiled.Validate(doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return collect(validationErr, nil)
		}
		return []Violation{{Message: err.Error()}}
	}

	return nil
}

// Document returns the JSON Schema generated from the field declarations.
func (s *Schema) Document() map[string]any {
	doc := make(map[string]any, len(s.JSONSchema)+3)
	maps.Copy(doc, s.JSONSchema)

	if _, ok := doc["$schema"]; !ok {
		doc["$schema"] = "https://json-schema.org/draft/2020-12/schema"
	}
	if _, ok := doc["type"]; !ok {
		doc["type"] = TypeObject
	}

	properties := map[string]any{}
	if existing, ok := doc["properties"].(map[string]any); ok {
		maps.Copy(properties, existing)
	}

	var required []string
	if existing, ok := doc["required"].([]any); ok {
		for _, r := range existing {
			if name, ok := r.(string); ok {
				required = append(required, name)
			}
		}
	}

	for _, f := range s.Fields {
		if _, ok := properties[f.Name]; !ok {
			properties[f.Name] = f.property()
		}
		if f.Required && !slices.Contains(required, f.Name) {
			required = append(required, f.Name)
		}
	}

	doc["properties"] = properties
	if len(required) > 0 {
		doc["required"] = required
	}

	return doc
}

func (f Field) property() map[string]any {
	p := map[string]any{}

	if f.Type != "" {
		if f.Nullable {
			p["type"] = []string{f.Type, "null"}
		} else {
			p["type"] = f.Type
		}
	}

	if f.MinLength != nil {
		p["minLength"] = *f.MinLength
	}
	if f.MaxLength != nil {
		p["maxLength"] = *f.MaxLength
	}
	if f.Pattern != "" {
		p["pattern"] = f.Pattern
	}
	if f.Format != "" {
		p["format"] = f.Format
	}
	if f.Min != nil {
		p["minimum"] = *f.Min
	}
	if f.Max != nil {
		p["maximum"] = *f.Max
	}
	if len(f.Enum) > 0 {
		p["enum"] = f.Enum
	}

	return p
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	raw, err := json.Marshal(s.Document())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	if err := compiler.AddResource(resourceURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	return compiler.Compile(resourceURL)
}

// collect flattens the validator's error tree into leaf violations.
func collect(err *jsonschema.ValidationError, out []Violation) []Violation {
	if len(err.Causes) > 0 {
		for _, cause := range err.Causes {
			out = collect(cause, out)
		}
		return out
	}

	field := fieldFromPointer(err.InstanceLocation)

	// "missing properties: 'a', 'b'" is reported on the parent object
	if missing, ok := strings.CutPrefix(err.Message, "missing properties: "); ok {
		for _, name := range strings.Split(missing, ",") {
			name = strings.Trim(strings.TrimSpace(name), "'")
			out = append(out, Violation{Field: joinField(field, name), Message: "is required"})
		}
		return out
	}

	return append(out, Violation{Field: field, Message: err.Message})
}

func fieldFromPointer(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "/")
	return strings.ReplaceAll(pointer, "/", ".")
}

func joinField(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
