package strategy

import (
	"context"
	"reflect"
	"strings"
)

// Operation calls one strategy method with its default arguments.
type Operation func(ctx context.Context, s Strategy) (any, error)

var builtins = map[string]Operation{
	MethodFindAll: func(ctx context.Context, s Strategy) (any, error) {
		return s.FindAll(ctx)
	},
	MethodFindOneByID: func(ctx context.Context, s Strategy) (any, error) {
		return s.FindOneByID(ctx, nil)
	},
	MethodCreate: func(ctx context.Context, s Strategy) (any, error) {
		return s.Create(ctx, nil)
	},
	MethodUpdate: func(ctx context.Context, s Strategy) (any, error) {
		return s.Update(ctx, nil)
	},
	MethodDelete: func(ctx context.Context, s Strategy) (any, error) {
		return s.Delete(ctx, nil)
	},
}

// aliases accept the lower camel case route names used in resource files
var aliases = map[string]string{
	"findAll":     MethodFindAll,
	"findOneById": MethodFindOneByID,
	"findOneByID": MethodFindOneByID,
	"create":      MethodCreate,
	"update":      MethodUpdate,
	"delete":      MethodDelete,
}

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// CanonicalName maps an alias to its built-in method name; other names are returned unchanged.
func CanonicalName(name string) string {
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}

// Resolve finds method on proto and returns an Operation that calls it on any strategy of the
// same type. Custom methods must have the signature func(context.Context) (T, error).
// Resolve is meant to run while routes are wired so mistakes surface before serving.
func Resolve(proto Strategy, method string) (Operation, error) {
	name := CanonicalName(strings.TrimSpace(method))
	if name == "" {
		return nil, &MethodError{Method: method, Reason: "method name is empty"}
	}

	if op, ok := builtins[name]; ok {
		return op, nil
	}

	if proto == nil {
		return nil, &MethodError{Method: name, Reason: "no strategy to inspect"}
	}

	m := reflect.ValueOf(proto).MethodByName(name)
	if !m.IsValid() {
		return nil, &MethodError{Method: name, Reason: "method not found on " + reflect.TypeOf(proto).String()}
	}

	t := m.Type()
	if t.NumIn() != 1 || t.In(0) != contextType || t.NumOut() != 2 || t.Out(1) != errorType {
		return nil, &MethodError{Method: name, Reason: "signature must be func(context.Context) (T, error), got " + t.String()}
	}

	return func(ctx context.Context, s Strategy) (any, error) {
		target := reflect.ValueOf(s).MethodByName(name)
		if !target.IsValid() {
			return nil, &MethodError{Method: name, Reason: "method not found on " + reflect.TypeOf(s).String()}
		}

		out := target.Call([]reflect.Value{reflect.ValueOf(ctx)})

		var err error
		if e, ok := out[1].Interface().(error); ok {
			err = e
		}
		return out[0].Interface(), err
	}, nil
}
