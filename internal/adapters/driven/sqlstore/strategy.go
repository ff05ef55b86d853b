package sqlstore

import (
	"context"

	"crudrouter/internal/core/domain"
	"crudrouter/internal/core/strategy"
)

type relationalStrategy struct {
	strategy.Base
	store *Store
}

var _ strategy.Strategy = (*relationalStrategy)(nil)

func (r *relationalStrategy) FindAll(ctx context.Context) (any, error) {
	records, err := r.store.findAll(ctx, r.Options())
	if err != nil {
		return nil, r.Wrap(strategy.MethodFindAll, err)
	}
	return records, nil
}

func (r *relationalStrategy) FindOneByID(ctx context.Context, lookup any) (any, error) {
	id, err := r.LookupID(lookup)
	if err != nil {
		return nil, r.Wrap(strategy.MethodFindOneByID, err)
	}

	records, err := r.store.findByID(ctx, r.Options(), id)
	if err != nil {
		return nil, r.Wrap(strategy.MethodFindOneByID, err)
	}
	return records, nil
}

func (r *relationalStrategy) Create(ctx context.Context, value domain.Record) (any, error) {
	created, err := r.store.insert(ctx, r.Options(), r.Value(value))
	if err != nil {
		return nil, r.Wrap(strategy.MethodCreate, err)
	}
	if created == nil {
		return nil, nil
	}
	return created, nil
}

func (r *relationalStrategy) Update(ctx context.Context, value domain.Record) (any, error) {
	id, err := r.LookupID(nil)
	if err != nil {
		return nil, r.Wrap(strategy.MethodUpdate, err)
	}

	updated, err := r.store.update(ctx, r.Options(), id, r.Value(value))
	if err != nil {
		return nil, r.Wrap(strategy.MethodUpdate, err)
	}
	if updated == nil {
		return nil, nil
	}
	return updated, nil
}

func (r *relationalStrategy) Delete(ctx context.Context, lookup any) (any, error) {
	id, err := r.LookupID(lookup)
	if err != nil {
		return nil, r.Wrap(strategy.MethodDelete, err)
	}

	deleted, err := r.store.remove(ctx, r.Options(), id)
	if err != nil {
		return nil, r.Wrap(strategy.MethodDelete, err)
	}
	return deleted, nil
}

func (r *relationalStrategy) Exists(ctx context.Context, field string, value any) (bool, error) {
	ok, err := r.store.exists(ctx, r.Options(), field, value)
	if err != nil {
		return false, r.Wrap(strategy.MethodExists, err)
	}
	return ok, nil
}
