// Package serverless exposes a resource as a single HTTP-trigger function instead of a router.
package serverless

import (
	"context"
	"net/http"

	"crudrouter/internal/core/dispatch"
	"crudrouter/internal/core/result"
	"crudrouter/internal/core/strategy"

	"go.uber.org/zap"
)

// Request is the HTTP-style input of a trigger. Params holds path parameters, "id" among them.
type Request struct {
	Method string
	Params map[string]string
	Body   []byte
}

// Response is what a trigger returns. Body is nil for 204.
type Response struct {
	Status int `json:"status"`
	Body   any `json:"body,omitempty"`
}

// TriggerContext binds a trigger to one resource.
type TriggerContext struct {
	Constructor strategy.Constructor
	Options     strategy.Options
	Logger      *zap.Logger
}

type methodNotAllowedError struct {
	method string
}

func (e *methodNotAllowedError) Error() string { return "method " + e.method + " is not allowed" }

func (e *methodNotAllowedError) Name() string { return "MethodNotAllowed" }

func (e *methodNotAllowedError) StatusCode() int { return http.StatusMethodNotAllowed }

// route picks the strategy method for an HTTP method. ok is false for unsupported methods.
func route(method, id string) (name string, kind dispatch.Kind, validate bool, ok bool) {
	switch method {
	case http.MethodGet:
		if id != "" {
			return strategy.MethodFindOneByID, dispatch.Query, false, true
		}
		return strategy.MethodFindAll, dispatch.Query, false, true
	case http.MethodPost:
		return strategy.MethodCreate, dispatch.Mutation, true, true
	case http.MethodPatch:
		return strategy.MethodUpdate, dispatch.Mutation, true, true
	case http.MethodDelete:
		return strategy.MethodDelete, dispatch.Mutation, false, true
	default:
		return "", dispatch.Query, false, false
	}
}

// Trigger serves one request with the same decision tables as the HTTP controller.
func Trigger(ctx context.Context, tc TriggerContext, req Request) Response {
	logger := tc.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	debug := tc.Options.Result.Debug
	id := req.Params[dispatch.IDParam]

	name, kind, validate, ok := route(req.Method, id)
	if !ok {
		return respond(result.FromError(&methodNotAllowedError{method: req.Method}, debug))
	}

	var overrides []strategy.Override
	if validate {
		overrides = append(overrides, strategy.WithValidate(true))
	}

	binding, err := dispatch.Bind(tc.Constructor, tc.Options, name, kind, overrides...)
	if err != nil {
		logger.Error("trigger is misconfigured", zap.String("method", name), zap.Error(err))
		return respond(result.FromError(err, debug))
	}

	values, err := dispatch.Values(req.Body, binding.Options().IDField, id)
	if err != nil {
		return respond(result.FromError(err, debug))
	}

	env := binding.Run(ctx, values)
	if env.Status >= http.StatusInternalServerError {
		logger.Error("strategy failed", zap.String("method", name), zap.Int("status", env.Status), zap.Error(env.Err))
	}
	return respond(env)
}

func respond(env result.Envelope) Response {
	res := Response{Status: env.Status}
	if body := env.Body(); body != nil {
		res.Body = body
	}
	return res
}
