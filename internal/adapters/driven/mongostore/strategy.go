package mongostore

import (
	"context"

	"crudrouter/internal/core/domain"
	"crudrouter/internal/core/strategy"

	"go.mongodb.org/mongo-driver/bson"
)

type documentStrategy struct {
	strategy.Base
	store *Store
}

var _ strategy.Strategy = (*documentStrategy)(nil)

func (d *documentStrategy) FindAll(ctx context.Context) (any, error) {
	records, err := d.store.find(ctx, d.Options(), bson.D{})
	if err != nil {
		return nil, d.Wrap(strategy.MethodFindAll, err)
	}
	return records, nil
}

func (d *documentStrategy) FindOneByID(ctx context.Context, lookup any) (any, error) {
	id, err := d.LookupID(lookup)
	if err != nil {
		return nil, d.Wrap(strategy.MethodFindOneByID, err)
	}

	records, err := d.store.find(ctx, d.Options(), filterByID(d.Options(), id))
	if err != nil {
		return nil, d.Wrap(strategy.MethodFindOneByID, err)
	}
	return records, nil
}

func (d *documentStrategy) Create(ctx context.Context, value domain.Record) (any, error) {
	created, err := d.store.insert(ctx, d.Options(), d.Value(value))
	if err != nil {
		return nil, d.Wrap(strategy.MethodCreate, err)
	}
	return created, nil
}

func (d *documentStrategy) Update(ctx context.Context, value domain.Record) (any, error) {
	id, err := d.LookupID(nil)
	if err != nil {
		return nil, d.Wrap(strategy.MethodUpdate, err)
	}

	updated, err := d.store.update(ctx, d.Options(), id, d.Value(value))
	if err != nil {
		return nil, d.Wrap(strategy.MethodUpdate, err)
	}
	if updated == nil {
		return nil, nil
	}
	return updated, nil
}

func (d *documentStrategy) Delete(ctx context.Context, lookup any) (any, error) {
	id, err := d.LookupID(lookup)
	if err != nil {
		return nil, d.Wrap(strategy.MethodDelete, err)
	}

	deleted, err := d.store.remove(ctx, d.Options(), id)
	if err != nil {
		return nil, d.Wrap(strategy.MethodDelete, err)
	}
	if deleted == nil {
		return nil, nil
	}
	return deleted, nil
}

func (d *documentStrategy) Exists(ctx context.Context, field string, value any) (bool, error) {
	ok, err := d.store.exists(ctx, d.Options(), field, value)
	if err != nil {
		return false, d.Wrap(strategy.MethodExists, err)
	}
	return ok, nil
}
