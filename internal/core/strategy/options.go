package strategy

import (
	"fmt"
	"slices"

	"crudrouter/internal/core/schema"
)

// DefaultCollection names the table/collection of document stores when neither the options nor
// the schema provide one.
const DefaultCollection = "collection"

// ResultOptions controls response formatting.
type ResultOptions struct {
	// Debug exposes error messages and stack traces in responses
	Debug bool
}

// Options is the resolved configuration of a resource. It is a value: overrides produce a new
// Options and never touch the one they start from.
type Options struct {
	Schema    *schema.Schema
	IDField   string
	TableName string
	Fields    []string // empty means all fields
	Validate  bool
	Limit     int // 0 means no limit
	Result    ResultOptions
}

// Override changes one setting of an Options copy.
type Override func(*Options)

func WithSchema(s *schema.Schema) Override {
	return func(o *Options) { o.Schema = s }
}

func WithIDField(field string) Override {
	return func(o *Options) { o.IDField = field }
}

func WithTableName(name string) Override {
	return func(o *Options) { o.TableName = name }
}

func WithFields(fields ...string) Override {
	return func(o *Options) { o.Fields = slices.Clone(fields) }
}

func WithValidate(validate bool) Override {
	return func(o *Options) { o.Validate = validate }
}

func WithLimit(limit int) Override {
	return func(o *Options) { o.Limit = limit }
}

func WithDebug(debug bool) Override {
	return func(o *Options) { o.Result.Debug = debug }
}

// WithOverrides merges per-call overrides over the receiver and returns the result.
func (o Options) WithOverrides(overrides ...Override) Options {
	merged := o
	merged.Fields = slices.Clone(o.Fields)

	for _, override := range overrides {
		if override != nil {
			override(&merged)
		}
	}
	return merged
}

// Check verifies the options describe a usable resource.
func (o Options) Check() error {
	if o.IDField == "" {
		return fmt.Errorf("%w: id field is required", ErrInvalidOptions)
	}

	if !o.Schema.Has(o.IDField) {
		return fmt.Errorf("%w: id field '%s' is not declared in schema '%s'", ErrInvalidOptions, o.IDField, o.Schema.Name)
	}

	for _, f := range o.Fields {
		if !o.Schema.Has(f) {
			return fmt.Errorf("%w: field '%s' is not declared in schema '%s'", ErrInvalidOptions, f, o.Schema.Name)
		}
	}

	if o.Limit < 0 {
		return fmt.Errorf("%w: limit cannot be negative", ErrInvalidOptions)
	}

	return nil
}

// CollectionName returns the table name, falling back to the schema name and then DefaultCollection.
func (o Options) CollectionName() string {
	switch {
	case o.TableName != "":
		return o.TableName
	case o.Schema != nil && o.Schema.Name != "":
		return o.Schema.Name
	default:
		return DefaultCollection
	}
}
