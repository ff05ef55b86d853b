package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"crudrouter/internal/core/schema"
	"crudrouter/internal/core/strategy"

	"gopkg.in/yaml.v3"
)

var ErrInvalidResource = errors.New("invalid resource definition")

// Backends a resource can be served from.
const (
	BackendSQL   = "sql"
	BackendMongo = "mongo"
	BackendFile  = "file"
)

// Resource is one entry of the resources file.
type Resource struct {
	Name     string         `yaml:"name"`
	Path     string         `yaml:"path,omitempty"`
	Backend  string         `yaml:"backend,omitempty"`
	Table    string         `yaml:"table,omitempty"`
	IDField  string         `yaml:"idField"`
	Fields   []string       `yaml:"fields,omitempty"`
	Limit    int            `yaml:"limit,omitempty"`
	Validate bool           `yaml:"validate,omitempty"`
	Debug    *bool          `yaml:"debug,omitempty"`
	Schema   *schema.Schema `yaml:"schema,omitempty"`
}

type resourcesFile struct {
	Resources []Resource `yaml:"resources"`
}

// MountPath is Path, or "/" + Name when no path is set.
func (r Resource) MountPath() string {
	if r.Path == "" {
		return "/" + r.Name
	}
	return "/" + strings.Trim(r.Path, "/")
}

// Options resolves the strategy options of the resource. debug applies unless the resource sets
// its own.
func (r Resource) Options(debug bool) strategy.Options {
	if r.Debug != nil {
		debug = *r.Debug
	}

	table := r.Table
	if table == "" {
		table = r.Name
	}

	return strategy.Options{
		Schema:    r.Schema,
		IDField:   r.IDField,
		TableName: table,
		Fields:    r.Fields,
		Validate:  r.Validate,
		Limit:     r.Limit,
		Result:    strategy.ResultOptions{Debug: debug},
	}
}

// LoadResources reads and validates a resources file.
func LoadResources(path string) ([]Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open resources file %s: %w", path, err)
	}
	defer f.Close()

	resources, err := ParseResources(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return resources, nil
}

// ParseResources decodes resource definitions. Unknown keys are rejected.
func ParseResources(r io.Reader) ([]Resource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var file resourcesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResource, err)
	}

	if len(file.Resources) == 0 {
		return nil, fmt.Errorf("%w: no resources defined", ErrInvalidResource)
	}

	names := make(map[string]bool, len(file.Resources))
	paths := make(map[string]bool, len(file.Resources))

	for i := range file.Resources {
		res := &file.Resources[i]
		if res.Backend == "" {
			res.Backend = BackendFile
		}

		if err := res.check(); err != nil {
			return nil, err
		}

		if names[res.Name] {
			return nil, fmt.Errorf("%w: duplicate resource name '%s'", ErrInvalidResource, res.Name)
		}
		names[res.Name] = true

		if paths[res.MountPath()] {
			return nil, fmt.Errorf("%w: duplicate path '%s'", ErrInvalidResource, res.MountPath())
		}
		paths[res.MountPath()] = true
	}

	return file.Resources, nil
}

func (r *Resource) check() error {
	if r.Name == "" {
		return fmt.Errorf("%w: resource name is required", ErrInvalidResource)
	}

	switch r.Backend {
	case BackendSQL, BackendMongo, BackendFile:
	default:
		return fmt.Errorf("%w: resource '%s': unknown backend '%s'", ErrInvalidResource, r.Name, r.Backend)
	}

	if r.IDField == "" {
		return fmt.Errorf("%w: resource '%s': idField is required", ErrInvalidResource, r.Name)
	}

	if r.MountPath() == "/" {
		return fmt.Errorf("%w: resource '%s': cannot be served on the root path", ErrInvalidResource, r.Name)
	}

	if err := r.Options(false).Check(); err != nil {
		return fmt.Errorf("%w: resource '%s': %v", ErrInvalidResource, r.Name, err)
	}
	return nil
}
