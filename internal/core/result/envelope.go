// Package result shapes strategy outcomes into HTTP responses.
package result

import (
	"encoding/json"
	"errors"
	"net/http"

	"crudrouter/internal/core/schema"
)

// Envelope is the uniform response of every generated endpoint.
type Envelope struct {
	Status           int
	Data             any
	Info             any
	Err              error
	ValidationErrors []schema.Violation
	// Debug exposes the error message and stack instead of the error name only
	Debug bool
}

// ErrorDetail is the debug form of the error key.
type ErrorDetail struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// Body is the JSON document of an envelope.
type Body struct {
	Data             any                `json:"data,omitempty"`
	Info             any                `json:"info,omitempty"`
	Error            any                `json:"error,omitempty"`
	ValidationErrors []schema.Violation `json:"validationErrors,omitempty"`
}

type named interface {
	Name() string
}

type stacker interface {
	Stack() string
}

// ErrorName returns the public name of err: its Name() when it has one, "Error" otherwise.
func ErrorName(err error) string {
	if err == nil {
		return ""
	}

	var n named
	if errors.As(err, &n) {
		return n.Name()
	}
	return "Error"
}

// Body returns the response document, nil when the status carries no content.
func (e Envelope) Body() *Body {
	if e.Status == http.StatusNoContent {
		return nil
	}

	b := &Body{
		Data:             e.Data,
		Info:             e.Info,
		ValidationErrors: e.ValidationErrors,
	}

	if e.Err != nil {
		if e.Debug {
			detail := ErrorDetail{Name: ErrorName(e.Err), Message: e.Err.Error()}
			var s stacker
			if errors.As(e.Err, &s) {
				detail.Stack = s.Stack()
			}
			b.Error = detail
		} else {
			b.Error = ErrorName(e.Err)
		}
	}

	return b
}

// Send writes the envelope to w.
func (e Envelope) Send(w http.ResponseWriter) error {
	body := e.Body()
	if body == nil {
		w.WriteHeader(e.Status)
		return nil
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Status)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(body)
}
