package mongostore_test

import (
	"context"
	"testing"

	"crudrouter/internal/adapters/driven/mongostore"
	"crudrouter/internal/core/domain"
	"crudrouter/internal/core/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const ns = "crud.users"

func userOptions(overrides ...strategy.Override) strategy.Options {
	base := strategy.Options{IDField: mongostore.DefaultIDField, TableName: "users"}
	return base.WithOverrides(overrides...)
}

func build(mt *mtest.T, values map[string]any, opts strategy.Options) strategy.Strategy {
	mt.Helper()

	s, err := strategy.Build(mongostore.New(mt.DB, nil).Constructor(), values, opts)
	require.NoError(mt, err)
	return s
}

func TestFindAll(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns every document", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "a"}, {Key: "name", Value: "Ann"}},
			bson.D{{Key: "_id", Value: "b"}, {Key: "name", Value: "Bob"}},
		))

		got, err := build(mt, nil, userOptions()).FindAll(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, []domain.Record{{"_id": "a", "name": "Ann"}, {"_id": "b", "name": "Bob"}}, got)
	})

	mt.Run("empty collection", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		got, err := build(mt, nil, userOptions(strategy.WithLimit(5))).FindAll(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, []domain.Record{}, got)
	})

	mt.Run("command failure is a query error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Name: "Unauthorized", Message: "not authorized"}))

		_, err := build(mt, nil, userOptions()).FindAll(context.Background())

		var queryErr *strategy.QueryError
		require.ErrorAs(mt, err, &queryErr)
		assert.Equal(mt, strategy.MethodFindAll, queryErr.Method)
	})
}

func TestFindOneByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	oid := primitive.NewObjectID()

	mt.Run("found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: oid}, {Key: "name", Value: "Ann"}},
		))

		got, err := build(mt, map[string]any{"_id": oid.Hex()}, userOptions()).FindOneByID(context.Background(), nil)
		require.NoError(mt, err)
		assert.Equal(mt, []domain.Record{{"_id": oid, "name": "Ann"}}, got)
	})

	mt.Run("missing id", func(mt *mtest.T) {
		_, err := build(mt, nil, userOptions()).FindOneByID(context.Background(), nil)
		assert.ErrorIs(mt, err, strategy.ErrMissingID)
	})
}

func TestCreate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns the document with its generated id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		got, err := build(mt, map[string]any{"name": "Ann"}, userOptions()).Create(context.Background(), nil)
		require.NoError(mt, err)

		record := got.(domain.Record)
		assert.Equal(mt, "Ann", record["name"])
		assert.IsType(mt, primitive.ObjectID{}, record["_id"])
	})

	mt.Run("duplicate key conflicts", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		_, err := build(mt, map[string]any{"name": "Ann"}, userOptions()).Create(context.Background(), nil)

		var conflict *mongostore.ConflictError
		require.ErrorAs(mt, err, &conflict)
		assert.Equal(mt, 409, conflict.StatusCode())
	})
}

func TestUpdate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	oid := primitive.NewObjectID()

	mt.Run("returns the document after the change", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: oid},
			{Key: "name", Value: "Annie"},
		}}))

		got, err := build(mt, map[string]any{"_id": oid.Hex(), "name": "Annie"}, userOptions()).Update(context.Background(), nil)
		require.NoError(mt, err)
		assert.Equal(mt, domain.Record{"_id": oid, "name": "Annie"}, got)
	})

	mt.Run("no match is nil", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		got, err := build(mt, map[string]any{"_id": oid.Hex(), "name": "Annie"}, userOptions()).Update(context.Background(), nil)
		require.NoError(mt, err)
		assert.Nil(mt, got)
	})
}

func TestDelete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	oid := primitive.NewObjectID()

	mt.Run("returns the deleted document", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: oid},
			{Key: "name", Value: "Ann"},
		}}))

		got, err := build(mt, map[string]any{"_id": oid.Hex()}, userOptions()).Delete(context.Background(), nil)
		require.NoError(mt, err)
		assert.Equal(mt, domain.Record{"_id": oid, "name": "Ann"}, got)
	})

	mt.Run("no match is nil", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		got, err := build(mt, map[string]any{"_id": oid.Hex()}, userOptions()).Delete(context.Background(), nil)
		require.NoError(mt, err)
		assert.Nil(mt, got)
	})
}

func TestExists(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("counts matching documents", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}))

		ok, err := build(mt, nil, userOptions()).Exists(context.Background(), "email", "ann@example.com")
		require.NoError(mt, err)
		assert.True(mt, ok)
	})

	mt.Run("nothing matches", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		ok, err := build(mt, nil, userOptions()).Exists(context.Background(), "email", "bob@example.com")
		require.NoError(mt, err)
		assert.False(mt, ok)
	})
}
