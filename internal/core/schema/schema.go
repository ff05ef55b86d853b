// Package schema describes the shape of a resource and validates inbound records against it.
//
// Field rules are declared in Go or YAML and compiled into a JSON Schema (draft 2020-12)
// document the first time a record is validated.
package schema

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"crudrouter/internal/core/domain"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Field types accepted in Field.Type
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// Field declares one property of a resource and its validation rules.
type Field struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Nullable bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`

	MinLength *int   `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Format    string `json:"format,omitempty" yaml:"format,omitempty"` // email, uuid, date, date-time, uri, ipv4 ...

	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`

	Enum []any `json:"enum,omitempty" yaml:"enum,omitempty"`
}

// Schema is the declared shape of a resource. A Schema must not be copied after first use.
type Schema struct {
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	Fields []Field `json:"fields,omitempty" yaml:"fields,omitempty"`

	// JSONSchema is an optional raw JSON Schema document merged under the generated one.
	JSONSchema map[string]any `json:"jsonSchema,omitempty" yaml:"jsonSchema,omitempty"`

	once     sync.Once
	compiled *jsonschema.Schema
	compErr  error
}

// New builds a schema from field declarations.
func New(name string, fields ...Field) *Schema {
	return &Schema{Name: name, Fields: fields}
}

// Names returns the declared field names in declaration order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}

	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Has reports whether name is a declared field. A schema without declared fields accepts any name.
func (s *Schema) Has(name string) bool {
	if s == nil || len(s.Fields) == 0 {
		return true
	}
	return slices.Contains(s.Names(), name)
}

func (s *Schema) field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Coerce builds a record of the schema's shape from raw request values. Undeclared keys are
// dropped when the schema declares fields. Integer and number fields are converted as described
// on coerceValue. values is never modified.
func (s *Schema) Coerce(values map[string]any) domain.Record {
	record := make(domain.Record, len(values))

	for key, value := range values {
		if s == nil || len(s.Fields) == 0 {
			record[key] = value
			continue
		}

		f, ok := s.field(key)
		if !ok {
			continue
		}

		record[key] = coerceValue(f, value)
	}

	return record
}

// whole floats in this range convert to int64 exactly; float64(math.MaxInt64) is 2^63
const (
	minInt64Float = -(1 << 63)
	maxInt64Float = 1 << 63
)

// coerceValue converts whole JSON numbers to int64 for integer fields and numeric strings, such
// as ids taken from a URL path, to numbers for integer and number fields. Values that do not
// convert are kept so validation reports them.
func coerceValue(f Field, value any) any {
	switch f.Type {
	case TypeInteger:
		switch v := value.(type) {
		case float64:
			if n, ok := wholeInt64(v); ok {
				return n
			}
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				return n
			}
		}

	case TypeNumber:
		if v, ok := value.(string); ok {
			if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
				return n
			}
		}
	}

	return value
}

func wholeInt64(v float64) (int64, bool) {
	if v != math.Trunc(v) || v < minInt64Float || v >= maxInt64Float {
		return 0, false
	}
	return int64(v), true
}
