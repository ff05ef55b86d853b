package filestore

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"crudrouter/internal/core/domain"
)

const (
	defaultFilePermissions = os.FileMode(0644)
	defaultDirPermissions  = os.FileMode(0755)
	fileExt                = ".json"
	tmpExt                 = ".tmp"
)

// Persister writes whole collections. Exported so tests can swap in a failing one.
type Persister interface {
	PersistOne(collection string, records []domain.Record) error
	LoadAll() (map[string][]any, error)
}

type FilePersister struct {
	dataDir string

	mu      sync.Mutex
	written map[string][sha256.Size]byte // digest of the last write, by file name
}

type noOpPersister struct{}

func (p *noOpPersister) PersistOne(collection string, records []domain.Record) error { return nil }
func (p *noOpPersister) LoadAll() (map[string][]any, error)                          { return map[string][]any{}, nil }

func NewNoOpPersister() Persister {
	return &noOpPersister{}
}

func NewFilePersister(dataDir string) *FilePersister {
	return &FilePersister{dataDir: dataDir, written: make(map[string][sha256.Size]byte)}
}

func (fp *FilePersister) path(collection string) string {
	return filepath.Join(fp.dataDir, collection+fileExt)
}

// PersistOne writes one collection to <dataDir>/<collection>.json. The file is written to a
// temporary name first and renamed into place, so readers never see a partial collection.
func (fp *FilePersister) PersistOne(collection string, records []domain.Record) error {
	filePath := fp.path(collection)

	if records == nil {
		records = []domain.Record{}
	}

	bytes, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding collection %s: %w", collection, err)
	}

	tmp, err := os.CreateTemp(fp.dataDir, "."+collection+"-*"+tmpExt)
	if err != nil {
		return fmt.Errorf("error creating temporary file for %s: %w", filePath, err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := tmp.Write(bytes); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing JSON to file %s: %w", tmp.Name(), err)
	}
	if err := tmp.Chmod(defaultFilePermissions); err != nil {
		tmp.Close()
		return fmt.Errorf("error setting permissions on %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", tmp.Name(), err)
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("error replacing %s: %w", filePath, err)
	}
	fp.written[filepath.Base(filePath)] = sha256.Sum256(bytes)

	return nil
}

// OwnWrite reports whether the file at path holds exactly what PersistOne last wrote there.
func (fp *FilePersister) OwnWrite(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	digest, ok := fp.written[filepath.Base(path)]
	return ok && digest == sha256.Sum256(data)
}

// LoadAll reads every *.json file of the data directory. Each file must hold a JSON array.
// Empty files are empty collections.
func (fp *FilePersister) LoadAll() (map[string][]any, error) {
	entries, err := os.ReadDir(fp.dataDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string][]any{}, nil
		}
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	loaded := make(map[string][]any, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != fileExt {
			continue
		}

		collection := strings.TrimSuffix(entry.Name(), fileExt)

		bytes, err := os.ReadFile(filepath.Join(fp.dataDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read collection %s: %w", collection, err)
		}

		// check for empty file
		if len(strings.TrimSpace(string(bytes))) == 0 {
			loaded[collection] = []any{}
			continue
		}

		var items []any
		if err := json.Unmarshal(bytes, &items); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedCollection, entry.Name(), err)
		}
		loaded[collection] = items
	}

	return loaded, nil
}
