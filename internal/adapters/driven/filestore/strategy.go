package filestore

import (
	"context"
	"fmt"

	"crudrouter/internal/core/domain"
	"crudrouter/internal/core/strategy"
)

type documentStrategy struct {
	strategy.Base
	store *Store
}

var _ strategy.Strategy = (*documentStrategy)(nil)

func newDocumentStrategy(store *Store, data domain.Record, opts strategy.Options) *documentStrategy {
	return &documentStrategy{
		Base:  strategy.NewBase(data, opts),
		store: store,
	}
}

func (d *documentStrategy) collection() string {
	return d.Options().CollectionName()
}

func (d *documentStrategy) project(records []domain.Record) []domain.Record {
	fields := d.Options().Fields
	for i, r := range records {
		records[i] = r.Project(fields)
	}
	return records
}

func (d *documentStrategy) lookup(method string, lookup any) (string, error) {
	id, err := d.LookupID(lookup)
	if err != nil {
		return "", d.Wrap(method, err)
	}
	return fmt.Sprintf("%v", id), nil
}

func (d *documentStrategy) FindAll(ctx context.Context) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, d.Wrap(strategy.MethodFindAll, err)
	}

	return d.project(d.store.all(d.collection(), d.Options().Limit)), nil
}

func (d *documentStrategy) FindOneByID(ctx context.Context, lookup any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, d.Wrap(strategy.MethodFindOneByID, err)
	}

	id, err := d.lookup(strategy.MethodFindOneByID, lookup)
	if err != nil {
		return nil, err
	}

	record, ok := d.store.find(d.collection(), d.Options().IDField, id)
	if !ok {
		return []domain.Record{}, nil
	}
	return d.project([]domain.Record{record}), nil
}

func (d *documentStrategy) Create(ctx context.Context, value domain.Record) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, d.Wrap(strategy.MethodCreate, err)
	}

	created, err := d.store.insert(d.collection(), d.Options().IDField, d.Value(value))
	if err != nil {
		return nil, d.Wrap(strategy.MethodCreate, err)
	}
	return created, nil
}

func (d *documentStrategy) Update(ctx context.Context, value domain.Record) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, d.Wrap(strategy.MethodUpdate, err)
	}

	id, err := d.lookup(strategy.MethodUpdate, nil)
	if err != nil {
		return nil, err
	}

	updated, err := d.store.update(d.collection(), d.Options().IDField, id, d.Value(value))
	if err != nil {
		return nil, d.Wrap(strategy.MethodUpdate, err)
	}
	if updated == nil {
		return nil, nil
	}
	return updated, nil
}

func (d *documentStrategy) Delete(ctx context.Context, lookup any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, d.Wrap(strategy.MethodDelete, err)
	}

	id, err := d.lookup(strategy.MethodDelete, lookup)
	if err != nil {
		return nil, err
	}

	removed, err := d.store.remove(d.collection(), d.Options().IDField, id)
	if err != nil {
		return nil, d.Wrap(strategy.MethodDelete, err)
	}
	if removed == nil {
		return nil, nil
	}
	return removed, nil
}

func (d *documentStrategy) Exists(ctx context.Context, field string, value any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, d.Wrap(strategy.MethodExists, err)
	}
	return d.store.exists(d.collection(), field, value), nil
}
