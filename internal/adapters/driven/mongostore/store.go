// Package mongostore is the document backend on MongoDB. Each resource maps to one collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"crudrouter/internal/core/domain"
	"crudrouter/internal/core/strategy"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// DefaultIDField is the primary key of every MongoDB document.
const DefaultIDField = "_id"

// ConflictError is returned when an insert hits a unique index.
type ConflictError struct {
	Collection string
	Err        error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate key in '%s': %v", e.Collection, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

func (e *ConflictError) Name() string { return "ConflictError" }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

type Store struct {
	db     *mongo.Database
	logger *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Connect dials uri and checks the deployment answers.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to reach mongo: %w", err)
	}

	return client, nil
}

// Constructor binds the document strategy to this store.
func (s *Store) Constructor() strategy.Constructor {
	return func(data domain.Record, opts strategy.Options) (strategy.Strategy, error) {
		if s.db == nil {
			return nil, strategy.ErrNoBackend
		}
		return &documentStrategy{Base: strategy.NewBase(data, opts), store: s}, nil
	}
}

func (s *Store) collection(opts strategy.Options) *mongo.Collection {
	return s.db.Collection(opts.CollectionName())
}

// lookupValue turns a hex string into an ObjectID when it is one.
func lookupValue(idField string, value any) any {
	if idField != DefaultIDField {
		return value
	}

	if hex, ok := value.(string); ok {
		if oid, err := primitive.ObjectIDFromHex(hex); err == nil {
			return oid
		}
	}
	return value
}

func filterByID(opts strategy.Options, id any) bson.D {
	return bson.D{{Key: opts.IDField, Value: lookupValue(opts.IDField, id)}}
}

// projection includes only the listed fields. _id is dropped unless listed.
func projection(fields []string) bson.D {
	if len(fields) == 0 {
		return nil
	}

	proj := make(bson.D, 0, len(fields)+1)
	hasID := false
	for _, f := range fields {
		if f == DefaultIDField {
			hasID = true
		}
		proj = append(proj, bson.E{Key: f, Value: 1})
	}
	if !hasID {
		proj = append(proj, bson.E{Key: DefaultIDField, Value: 0})
	}
	return proj
}

func toRecords(docs []bson.M) []domain.Record {
	records := make([]domain.Record, len(docs))
	for i, doc := range docs {
		records[i] = domain.Record(doc)
	}
	return records
}

func (s *Store) find(ctx context.Context, opts strategy.Options, filter bson.D) ([]domain.Record, error) {
	findOpts := options.Find()
	if proj := projection(opts.Fields); proj != nil {
		findOpts.SetProjection(proj)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cur, err := s.collection(opts).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	docs := make([]bson.M, 0)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return toRecords(docs), nil
}

func (s *Store) insert(ctx context.Context, opts strategy.Options, value domain.Record) (domain.Record, error) {
	doc := value.Clone()
	if doc == nil {
		doc = domain.Record{}
	}
	if id, ok := doc[opts.IDField]; ok {
		doc[opts.IDField] = lookupValue(opts.IDField, id)
	}

	res, err := s.collection(opts).InsertOne(ctx, bson.M(doc))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &ConflictError{Collection: opts.CollectionName(), Err: err}
		}
		return nil, err
	}

	if _, ok := doc[DefaultIDField]; !ok {
		doc[DefaultIDField] = res.InsertedID
	}
	return doc, nil
}

// update $sets every field of patch but the id and returns the document after the change, nil
// when nothing matched.
func (s *Store) update(ctx context.Context, opts strategy.Options, id any, patch domain.Record) (domain.Record, error) {
	set := bson.M{}
	for key, value := range patch {
		if key == opts.IDField || key == DefaultIDField {
			continue
		}
		set[key] = value
	}

	var res *mongo.SingleResult
	if len(set) == 0 {
		findOpts := options.FindOne()
		if proj := projection(opts.Fields); proj != nil {
			findOpts.SetProjection(proj)
		}
		res = s.collection(opts).FindOne(ctx, filterByID(opts, id), findOpts)
	} else {
		updateOpts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		if proj := projection(opts.Fields); proj != nil {
			updateOpts.SetProjection(proj)
		}
		res = s.collection(opts).FindOneAndUpdate(ctx, filterByID(opts, id), bson.M{"$set": set}, updateOpts)
	}

	return decodeOne(res)
}

// remove deletes the document with id and returns it, nil when nothing matched.
func (s *Store) remove(ctx context.Context, opts strategy.Options, id any) (domain.Record, error) {
	return decodeOne(s.collection(opts).FindOneAndDelete(ctx, filterByID(opts, id)))
}

func (s *Store) exists(ctx context.Context, opts strategy.Options, field string, value any) (bool, error) {
	n, err := s.collection(opts).CountDocuments(ctx, bson.D{{Key: field, Value: lookupValue(field, value)}}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func decodeOne(res *mongo.SingleResult) (domain.Record, error) {
	var doc bson.M
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return domain.Record(doc), nil
}
