package strategy

import (
	"fmt"
)

// ValidationFailed is the message of every ValidationError returned by Build.
const ValidationFailed = "Schema validation failed"

// Build coerces raw request values through the schema, constructs the strategy and, when the
// options ask for it, validates it.
func Build(ctor Constructor, values map[string]any, opts Options) (Strategy, error) {
	if ctor == nil {
		return nil, ErrNoBackend
	}

	data := opts.Schema.Coerce(values)

	s, err := ctor(data, opts)
	if err != nil {
		return nil, fmt.Errorf("Build: %w", err)
	}

	if opts.Validate {
		if violations := s.Validate(); len(violations) > 0 {
			return nil, &ValidationError{Message: ValidationFailed, Violations: violations}
		}
	}

	return s, nil
}
