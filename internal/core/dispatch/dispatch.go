// Package dispatch runs one strategy method for one request and turns the outcome into a
// result envelope. HTTP and serverless adapters share it.
package dispatch

import (
	"context"
	"fmt"

	"crudrouter/internal/core/domain"
	"crudrouter/internal/core/result"
	"crudrouter/internal/core/strategy"
)

// Kind selects the decision table applied to a method's outcome.
type Kind int

const (
	Query Kind = iota
	Mutation
)

func (k Kind) String() string {
	if k == Mutation {
		return "mutation"
	}
	return "query"
}

// Binding is a strategy method resolved at wiring time, ready to serve requests.
type Binding struct {
	method string
	kind   Kind
	op     strategy.Operation
	ctor   strategy.Constructor
	opts   strategy.Options
}

// Bind resolves method against a prototype strategy built by ctor and merges overrides over
// base. Unknown or ill-typed methods fail here with a *strategy.MethodError.
func Bind(ctor strategy.Constructor, base strategy.Options, method string, kind Kind, overrides ...strategy.Override) (*Binding, error) {
	if ctor == nil {
		return nil, strategy.ErrNoBackend
	}

	opts := base.WithOverrides(overrides...)
	if err := opts.Check(); err != nil {
		return nil, fmt.Errorf("Bind: %w", err)
	}

	proto, err := ctor(domain.Record{}, opts)
	if err != nil {
		return nil, fmt.Errorf("Bind: %w", err)
	}

	op, err := strategy.Resolve(proto, method)
	if err != nil {
		return nil, err
	}

	return &Binding{
		method: strategy.CanonicalName(method),
		kind:   kind,
		op:     op,
		ctor:   ctor,
		opts:   opts,
	}, nil
}

func (b *Binding) Method() string { return b.method }

func (b *Binding) Kind() Kind { return b.kind }

func (b *Binding) Options() strategy.Options { return b.opts }

// Run builds a strategy from values, calls the bound method and applies the decision table.
func (b *Binding) Run(ctx context.Context, values map[string]any) result.Envelope {
	debug := b.opts.Result.Debug

	s, err := strategy.Build(b.ctor, values, b.opts)
	if err != nil {
		return result.FromError(err, debug)
	}

	out, err := b.op(ctx, s)

	if b.kind == Mutation {
		return result.FromMutation(b.method, out, err, debug)
	}
	return result.FromQuery(b.method, out, err, debug)
}
