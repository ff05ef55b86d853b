package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
)

// IDParam is the path parameter carrying the id on single-record routes.
const IDParam = "id"

// SyntaxError reports a request body that is not a JSON object.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string { return fmt.Sprintf("invalid request body: %v", e.Err) }

func (e *SyntaxError) Unwrap() error { return e.Err }

func (e *SyntaxError) Name() string { return "SyntaxError" }

func (e *SyntaxError) StatusCode() int { return http.StatusBadRequest }

// Values decodes body and shallow-merges {idField: id} over it when id is set. An empty body
// is an empty object.
func Values(body []byte, idField, id string) (map[string]any, error) {
	values := make(map[string]any)

	if len(bytes.TrimSpace(body)) > 0 {
		var decoded any
		if err := json.Unmarshal(body, &decoded); err != nil {
			return nil, &SyntaxError{Err: err}
		}

		obj, ok := decoded.(map[string]any)
		if !ok {
			return nil, &SyntaxError{Err: fmt.Errorf("expected a JSON object, got %T", decoded)}
		}
		maps.Copy(values, obj)
	}

	if id != "" {
		values[idField] = id
	}
	return values, nil
}
