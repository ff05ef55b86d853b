package strategy

import (
	"errors"
	"fmt"
	"strings"

	"crudrouter/internal/core/schema"

	pkgerrors "github.com/pkg/errors"
)

var (
	ErrInvalidOptions = errors.New("invalid resource options")
	ErrMissingID      = errors.New("id value is missing")
	ErrNoBackend      = errors.New("strategy has no backend")
)

// QueryError reports a failed backend call. Method is the strategy method that issued it.
type QueryError struct {
	Method string
	Err    error

	traced error
}

func NewQueryError(method string, err error) *QueryError {
	if err == nil {
		err = errors.New("unknown backend failure")
	}

	return &QueryError{
		Method: method,
		Err:    err,
		traced: pkgerrors.WithStack(err),
	}
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func (e *QueryError) Name() string { return "QueryError" }

// Stack returns the call stack captured when the error was created.
func (e *QueryError) Stack() string {
	return fmt.Sprintf("%+v", e.traced)
}

// ValidationError is returned by Build when a strategy fails validation. Violations holds
// every failed rule.
type ValidationError struct {
	Message    string
	Violations []schema.Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return e.Message
	}

	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Name() string { return "ValidationError" }

// MethodError is a wiring mistake: a route bound to a method the strategy does not provide.
type MethodError struct {
	Method string
	Reason string
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("strategy method '%s' cannot be bound: %s", e.Method, e.Reason)
}

func (e *MethodError) Name() string { return "TypeError" }
