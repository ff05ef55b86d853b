// Package filestore is a document backend that keeps each collection in memory and writes it
// through to <dataDir>/<collection>.json on every change.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"crudrouter/internal/core/domain"
	"crudrouter/internal/core/strategy"
	"crudrouter/internal/pkg/copier"
	"crudrouter/internal/pkg/watch"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

type Store struct {
	dataDir     string
	mu          sync.RWMutex
	collections map[string][]domain.Record // in-memory cache
	persister   Persister
	normaliser  *dataNormaliser
	logger      *zap.Logger
}

// Open loads every collection file under dataDir, creating the directory when missing.
func Open(dataDir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, defaultDirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}

	return newStore(dataDir, NewFilePersister(dataDir), logger)
}

// NewInMemory returns a store that never touches the disk.
func NewInMemory() *Store {
	s, _ := newStore("", NewNoOpPersister(), nil)
	return s
}

// NewWithPersister is Open with a custom persister and no directory handling.
func NewWithPersister(p Persister, logger *zap.Logger) (*Store, error) {
	return newStore("", p, logger)
}

func newStore(dataDir string, p Persister, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		dataDir:     dataDir,
		collections: make(map[string][]domain.Record),
		persister:   p,
		normaliser:  newDataNormaliser(),
		logger:      logger,
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory cache with what the persister holds. On failure the cache is
// left untouched. The write lock is held throughout so a reload never interleaves with a commit.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.persister.LoadAll()
	if err != nil {
		return err
	}

	loaded := make(map[string][]domain.Record, len(raw))
	for collection, items := range raw {
		records := make([]domain.Record, 0, len(items))

		for i, item := range items {
			record, ok := s.normaliser.record(item)
			if !ok {
				s.logger.Warn("non-record item found in collection",
					zap.String("collection", collection), zap.Int("index", i), zap.String("type", fmt.Sprintf("%T", item)))
				continue
			}
			records = append(records, record)
		}
		loaded[collection] = records
	}

	s.collections = loaded

	return nil
}

// Watch reloads the store whenever a collection file changes on disk, until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	if s.dataDir == "" {
		return watch.NoOp().Watch(ctx)
	}

	w, err := watch.New(s.dataDir, s.Reload, s.logger, watch.WithFilter(s.externalChange))
	if err != nil {
		return err
	}
	return w.Watch(ctx)
}

// externalChange reports whether a change to name should trigger a reload. Temporary files and
// files the store has just written itself are skipped.
func (s *Store) externalChange(name string) bool {
	if filepath.Ext(name) != fileExt {
		return false
	}
	if own, ok := s.persister.(interface{ OwnWrite(string) bool }); ok && own.OwnWrite(name) {
		return false
	}
	return true
}

// Collections returns the names of the loaded collections, sorted.
func (s *Store) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Constructor binds the document strategy to this store.
func (s *Store) Constructor() strategy.Constructor {
	return func(data domain.Record, opts strategy.Options) (strategy.Strategy, error) {
		return newDocumentStrategy(s, data, opts), nil
	}
}

func (s *Store) all(collection string, limit int) []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.collections[collection]
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return copier.Records(records)
}

func (s *Store) indexOf(collection, idField, id string) int {
	for i, record := range s.collections[collection] {
		if existingID, ok := record.ID(idField); ok && existingID == id {
			return i
		}
	}
	return -1
}

func (s *Store) find(collection, idField, id string) (domain.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(collection, idField, id)
	if i < 0 {
		return nil, false
	}
	return copier.Record(s.collections[collection][i]), true
}

// insert stores record, generating a UUIDv7 id when none is set.
func (s *Store) insert(collection, idField string, record domain.Record) (domain.Record, error) {
	if collection == "" {
		return nil, ErrEmptyCollectionName
	}

	toStore := copier.Record(record)
	if toStore == nil {
		toStore = domain.Record{}
	}

	if _, hasID := toStore.ID(idField); !hasID {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate id: %w", err)
		}
		toStore.SetID(idField, id.String())
	}
	newID, _ := toStore.ID(idField)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(collection, idField, newID) >= 0 {
		return nil, &ConflictError{Collection: collection, ID: newID}
	}

	original := s.collections[collection]
	updated := append(slices.Clip(original), toStore)

	if err := s.commit(collection, original, updated); err != nil {
		return nil, err
	}
	return copier.Record(toStore), nil
}

// update merges patch into the record with id. The id field itself is never changed. A nil
// record means nothing matched.
func (s *Store) update(collection, idField, id string, patch domain.Record) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(collection, idField, id)
	if i < 0 {
		return nil, nil
	}

	original := s.collections[collection]
	merged := copier.Record(original[i])
	for key, value := range copier.Record(patch) {
		if key == idField {
			continue
		}
		merged[key] = value
	}

	updated := slices.Clone(original)
	updated[i] = merged

	if err := s.commit(collection, original, updated); err != nil {
		return nil, err
	}
	return copier.Record(merged), nil
}

// remove deletes the record with id and returns it, nil when nothing matched.
func (s *Store) remove(collection, idField, id string) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(collection, idField, id)
	if i < 0 {
		return nil, nil
	}

	original := s.collections[collection]
	removed := original[i]
	updated := slices.Delete(slices.Clone(original), i, i+1)

	if err := s.commit(collection, original, updated); err != nil {
		return nil, err
	}
	return copier.Record(removed), nil
}

func (s *Store) exists(collection, field string, value any) bool {
	want := fmt.Sprintf("%v", value)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.collections[collection] {
		if got, ok := record.ID(field); ok && got == want {
			return true
		}
	}
	return false
}

// commit swaps in updated and persists it, reverting to original when saving fails.
// Callers hold the write lock.
func (s *Store) commit(collection string, original, updated []domain.Record) error {
	_, existed := s.collections[collection]
	s.collections[collection] = updated

	if err := s.persister.PersistOne(collection, updated); err != nil {
		// revert the change if saving to file fails
		if existed {
			s.collections[collection] = original
		} else {
			delete(s.collections, collection)
		}

		s.logger.Error("failed to persist collection", zap.String("collection", collection), zap.Error(err))
		return err
	}
	return nil
}
