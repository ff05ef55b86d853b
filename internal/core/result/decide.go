package result

import (
	"errors"
	"net/http"
	"reflect"

	"crudrouter/internal/core/strategy"
)

// ErrNoResult is attached to 400 responses of queries that produced nothing at all.
var ErrNoResult = errors.New("strategy produced no result")

type statusCoder interface {
	StatusCode() int
}

// FromError maps a failure to an envelope. Validation failures are 400 with their violations,
// errors carrying a StatusCode() keep it, everything else is 500.
func FromError(err error, debug bool) Envelope {
	env := Envelope{Status: http.StatusInternalServerError, Err: err, Debug: debug}

	var validationErr *strategy.ValidationError
	var coder statusCoder
	switch {
	case errors.As(err, &validationErr):
		env.Status = http.StatusBadRequest
		env.ValidationErrors = validationErr.Violations
	case errors.Is(err, strategy.ErrMissingID):
		env.Status = http.StatusBadRequest
	case errors.As(err, &coder):
		env.Status = coder.StatusCode()
	}

	return env
}

// FromQuery applies the read decision table to the outcome of method.
func FromQuery(method string, out any, err error, debug bool) Envelope {
	if err != nil {
		return FromError(err, debug)
	}

	// a nil slice is still an empty sequence
	if n, ok := length(out); ok {
		switch n {
		case 0:
			if strategy.CanonicalName(method) == strategy.MethodFindAll {
				return Envelope{Status: http.StatusNoContent}
			}
			return Envelope{Status: http.StatusNotFound, Err: &notFoundError{method: method}, Debug: debug}
		case 1:
			return Envelope{Status: http.StatusOK, Data: reflect.ValueOf(out).Index(0).Interface()}
		default:
			return Envelope{Status: http.StatusOK, Data: out, Info: map[string]any{"count": n}}
		}
	}

	if isNil(out) {
		return Envelope{Status: http.StatusBadRequest, Err: &noResultError{method: method}, Debug: debug}
	}

	return Envelope{Status: http.StatusOK, Data: out}
}

// FromMutation applies the write decision table to the outcome of method.
func FromMutation(method string, out any, err error, debug bool) Envelope {
	if err != nil {
		return FromError(err, debug)
	}

	switch strategy.CanonicalName(method) {
	case strategy.MethodCreate:
		if Falsy(out) {
			return Envelope{Status: http.StatusBadRequest, Err: &noResultError{method: method}, Debug: debug}
		}
		return Envelope{Status: http.StatusCreated, Data: out}

	case strategy.MethodDelete:
		if Falsy(out) {
			return Envelope{Status: http.StatusNotFound, Err: &notFoundError{method: method}, Debug: debug}
		}
		return Envelope{Status: http.StatusNoContent}

	case strategy.MethodUpdate:
		if Falsy(out) {
			return Envelope{Status: http.StatusNotFound, Err: &notFoundError{method: method}, Debug: debug}
		}
		return Envelope{Status: http.StatusOK, Data: out}

	default:
		return Envelope{Status: http.StatusOK, Data: out}
	}
}

// Falsy reports nil, false, zero numbers, empty strings and empty slices or maps.
func Falsy(v any) bool {
	if isNil(v) {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() == 0
	default:
		return rv.IsZero()
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func length(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len(), true
	}
	return 0, false
}

type notFoundError struct {
	method string
}

func (e *notFoundError) Error() string { return e.method + ": no matching record" }

func (e *notFoundError) Name() string { return "NotFound" }

type noResultError struct {
	method string
}

func (e *noResultError) Error() string { return e.method + ": " + ErrNoResult.Error() }

func (e *noResultError) Name() string { return "BadRequest" }

func (e *noResultError) Unwrap() error { return ErrNoResult }
