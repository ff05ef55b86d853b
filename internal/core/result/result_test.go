package result_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"crudrouter/internal/core/domain"
	"crudrouter/internal/core/result"
	"crudrouter/internal/core/schema"
	"crudrouter/internal/core/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type teapotError struct{}

func (teapotError) Error() string   { return "short and stout" }
func (teapotError) StatusCode() int { return http.StatusTeapot }

func TestFromQuery(t *testing.T) {
	ann := domain.Record{"id": 1, "name": "Ann"}
	bob := domain.Record{"id": 2, "name": "Bob"}

	testCases := map[string]struct {
		method     string
		out        any
		err        error
		wantStatus int
		wantData   any
	}{
		"error": {
			method:     strategy.MethodFindAll,
			err:        strategy.NewQueryError(strategy.MethodFindAll, errors.New("down")),
			wantStatus: http.StatusInternalServerError,
		},
		"validation error": {
			method:     strategy.MethodFindOneByID,
			err:        &strategy.ValidationError{Message: strategy.ValidationFailed},
			wantStatus: http.StatusBadRequest,
		},
		"nil result": {
			method:     strategy.MethodFindOneByID,
			out:        nil,
			wantStatus: http.StatusBadRequest,
		},
		"empty list": {
			method:     strategy.MethodFindAll,
			out:        []domain.Record{},
			wantStatus: http.StatusNoContent,
		},
		"nil slice is an empty list": {
			method:     "findAll",
			out:        []domain.Record(nil),
			wantStatus: http.StatusNoContent,
		},
		"empty lookup": {
			method:     strategy.MethodFindOneByID,
			out:        []domain.Record{},
			wantStatus: http.StatusNotFound,
		},
		"single result is unwrapped": {
			method:     strategy.MethodFindOneByID,
			out:        []domain.Record{ann},
			wantStatus: http.StatusOK,
			wantData:   ann,
		},
		"many results": {
			method:     strategy.MethodFindAll,
			out:        []domain.Record{ann, bob},
			wantStatus: http.StatusOK,
			wantData:   []domain.Record{ann, bob},
		},
		"scalar": {
			method:     "CountVIP",
			out:        3,
			wantStatus: http.StatusOK,
			wantData:   3,
		},
		"status coder": {
			method:     "Brew",
			err:        teapotError{},
			wantStatus: http.StatusTeapot,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			env := result.FromQuery(tc.method, tc.out, tc.err, false)

			assert.Equal(t, tc.wantStatus, env.Status)
			assert.Equal(t, tc.wantData, env.Data)
			if tc.wantStatus >= 400 {
				assert.Error(t, env.Err)
			}
		})
	}
}

func TestFromMutation(t *testing.T) {
	ann := domain.Record{"id": 1, "name": "Ann"}

	testCases := map[string]struct {
		method     string
		out        any
		err        error
		wantStatus int
		wantData   any
	}{
		"create ok":           {method: strategy.MethodCreate, out: ann, wantStatus: http.StatusCreated, wantData: ann},
		"create nil":          {method: strategy.MethodCreate, out: nil, wantStatus: http.StatusBadRequest},
		"create empty record": {method: strategy.MethodCreate, out: domain.Record{}, wantStatus: http.StatusBadRequest},
		"create error":        {method: strategy.MethodCreate, err: errors.New("x"), wantStatus: http.StatusInternalServerError},
		"update ok":           {method: strategy.MethodUpdate, out: ann, wantStatus: http.StatusOK, wantData: ann},
		"update count":        {method: strategy.MethodUpdate, out: int64(1), wantStatus: http.StatusOK, wantData: int64(1)},
		"update no match":     {method: strategy.MethodUpdate, out: domain.Record(nil), wantStatus: http.StatusNotFound},
		"update zero count":   {method: strategy.MethodUpdate, out: int64(0), wantStatus: http.StatusNotFound},
		"delete ok":           {method: strategy.MethodDelete, out: "42", wantStatus: http.StatusNoContent},
		"delete no match":     {method: strategy.MethodDelete, out: nil, wantStatus: http.StatusNotFound},
		"custom mutation":     {method: "Archive", out: true, wantStatus: http.StatusOK, wantData: true},
		"alias":               {method: "create", out: ann, wantStatus: http.StatusCreated, wantData: ann},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			env := result.FromMutation(tc.method, tc.out, tc.err, false)

			assert.Equal(t, tc.wantStatus, env.Status)
			assert.Equal(t, tc.wantData, env.Data)
		})
	}
}

func TestFalsy(t *testing.T) {
	var nilRecord *domain.Record

	for _, v := range []any{nil, false, 0, int64(0), 0.0, "", []any{}, map[string]any{}, domain.Record(nil), nilRecord} {
		assert.True(t, result.Falsy(v), "%#v", v)
	}
	for _, v := range []any{true, 1, "x", []int{1}, domain.Record{"a": 1}} {
		assert.False(t, result.Falsy(v), "%#v", v)
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSend(t *testing.T) {
	t.Run("data and info", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env := result.FromQuery(strategy.MethodFindAll, []domain.Record{{"id": 1}, {"id": 2}}, nil, false)
		require.NoError(t, env.Send(rec))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		body := decode(t, rec)
		assert.Len(t, body["data"], 2)
		assert.Equal(t, map[string]any{"count": float64(2)}, body["info"])
		assert.NotContains(t, body, "error")
	})

	t.Run("no content has no body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, result.Envelope{Status: http.StatusNoContent}.Send(rec))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("error name only", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := strategy.NewQueryError(strategy.MethodFindAll, errors.New("password=hunter2"))
		require.NoError(t, result.FromError(err, false).Send(rec))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "QueryError", body["error"])
		assert.NotContains(t, rec.Body.String(), "hunter2")
	})

	t.Run("debug error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := strategy.NewQueryError(strategy.MethodFindAll, errors.New("relation does not exist"))
		require.NoError(t, result.FromError(err, true).Send(rec))

		body := decode(t, rec)
		detail, ok := body["error"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "QueryError", detail["name"])
		assert.Equal(t, "FindAll: relation does not exist", detail["message"])
		assert.NotEmpty(t, detail["stack"])
	})

	t.Run("validation errors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := &strategy.ValidationError{
			Message:    strategy.ValidationFailed,
			Violations: []schema.Violation{{Field: "name", Message: "is required"}},
		}
		require.NoError(t, result.FromError(err, false).Send(rec))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "ValidationError", body["error"])
		assert.Equal(t, []any{map[string]any{"field": "name", "message": "is required"}}, body["validationErrors"])
	})
}

func TestErrorName(t *testing.T) {
	assert.Equal(t, "", result.ErrorName(nil))
	assert.Equal(t, "Error", result.ErrorName(errors.New("plain")))
	assert.Equal(t, "TypeError", result.ErrorName(&strategy.MethodError{Method: "X"}))

	wrapped := errors.Join(errors.New("ctx"), strategy.NewQueryError("Create", errors.New("dup")))
	assert.Equal(t, "QueryError", result.ErrorName(wrapped))
}
