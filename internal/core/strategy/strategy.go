// Package strategy defines the uniform CRUD capability set every backend implements, the
// options merger, and the factory that builds a validated strategy per request.
package strategy

import (
	"context"

	"crudrouter/internal/core/domain"
	"crudrouter/internal/core/schema"
)

// Built-in method names.
const (
	MethodFindAll     = "FindAll"
	MethodFindOneByID = "FindOneByID"
	MethodCreate      = "Create"
	MethodUpdate      = "Update"
	MethodDelete      = "Delete"
	MethodExists      = "Exists"
)

// Strategy is the capability set of one backend bound to one request's data.
//
// Results are deliberately loosely typed so the dispatcher can tell "nothing" (nil or an empty
// slice) from "one" and "many":
//   - FindAll and FindOneByID return []domain.Record
//   - Create returns the stored domain.Record
//   - Update returns the updated domain.Record, or nil when nothing matched
//   - Delete returns the deleted id or domain.Record, or nil when nothing matched
//
// Backend failures are returned as *QueryError.
type Strategy interface {
	FindAll(ctx context.Context) (any, error)
	// FindOneByID looks up lookup, or the held data's id when lookup is nil.
	FindOneByID(ctx context.Context, lookup any) (any, error)
	// Create stores value, or the held data when value is nil.
	Create(ctx context.Context, value domain.Record) (any, error)
	// Update applies value, or the held data when value is nil, to the record with the held id.
	Update(ctx context.Context, value domain.Record) (any, error)
	Delete(ctx context.Context, lookup any) (any, error)
	Exists(ctx context.Context, field string, value any) (bool, error)
	Validate() []schema.Violation
}

// Constructor builds a strategy for one request. It is bound to a backend when a resource is
// registered.
type Constructor func(data domain.Record, opts Options) (Strategy, error)

// Base carries what every strategy shares. Backends embed it.
type Base struct {
	data      domain.Record
	opts      Options
	validated bool
}

func NewBase(data domain.Record, opts Options) Base {
	if data == nil {
		data = domain.Record{}
	}

	return Base{
		data: data.Clone(),
		opts: opts,
	}
}

func (b *Base) Data() domain.Record { return b.data }

func (b *Base) Options() Options { return b.opts }

// Validated reports whether Validate has run on this instance.
func (b *Base) Validated() bool { return b.validated }

// Validate checks the held data against the schema rules.
func (b *Base) Validate() []schema.Violation {
	b.validated = true
	return b.opts.Schema.Validate(b.data)
}

// LookupID returns lookup, or the held id when lookup is nil.
func (b *Base) LookupID(lookup any) (any, error) {
	if lookup != nil {
		return lookup, nil
	}

	id, ok := b.data[b.opts.IDField]
	if !ok || id == nil {
		return nil, ErrMissingID
	}
	return id, nil
}

// Value returns value, or the held data when value is nil.
func (b *Base) Value(value domain.Record) domain.Record {
	if value != nil {
		return value
	}
	return b.data
}

// Wrap turns a backend failure into a *QueryError for method.
func (b *Base) Wrap(method string, err error) error {
	if err == nil {
		return nil
	}
	return NewQueryError(method, err)
}
