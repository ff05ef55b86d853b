// Package app wires resource definitions to backends and routers.
package app

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"crudrouter/internal/adapters/driving/httpadapter"
	"crudrouter/internal/config"
	"crudrouter/internal/core/strategy"

	"go.uber.org/zap"
)

// Backends holds one constructor per backend kind. A nil constructor means the backend is not
// configured.
type Backends struct {
	SQL   strategy.Constructor
	Mongo strategy.Constructor
	File  strategy.Constructor
}

// Constructor returns the constructor serving backend.
func (b Backends) Constructor(backend string) (strategy.Constructor, error) {
	var ctor strategy.Constructor
	switch backend {
	case config.BackendSQL:
		ctor = b.SQL
	case config.BackendMongo:
		ctor = b.Mongo
	case config.BackendFile, "":
		ctor = b.File
	default:
		return nil, fmt.Errorf("%w: unknown backend '%s'", config.ErrInvalidResource, backend)
	}

	if ctor == nil {
		return nil, fmt.Errorf("%w: backend '%s' is not configured", strategy.ErrNoBackend, backend)
	}
	return ctor, nil
}

// Controllers builds one controller per resource, in order.
func Controllers(resources []config.Resource, backends Backends, cfg *config.Config, logger *zap.Logger) ([]*httpadapter.Controller, error) {
	controllers := make([]*httpadapter.Controller, 0, len(resources))

	for _, res := range resources {
		ctor, err := backends.Constructor(res.Backend)
		if err != nil {
			return nil, fmt.Errorf("resource '%s': %w", res.Name, err)
		}

		c, err := httpadapter.NewController(res.Name, ctor, res.Options(cfg.Debug),
			httpadapter.WithLogger(logger),
			httpadapter.WithMaxRequestSize(cfg.MaxRequestSize),
		)
		if err != nil {
			return nil, fmt.Errorf("resource '%s': %w", res.Name, err)
		}
		controllers = append(controllers, c)
	}

	return controllers, nil
}

// NewApp mounts a controller per resource on a fresh App.
func NewApp(resources []config.Resource, backends Backends, cfg *config.Config, logger *zap.Logger, options ...httpadapter.AppOption) (*httpadapter.App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	controllers, err := Controllers(resources, backends, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := httpadapter.NewApp(logger, options...)
	for i, c := range controllers {
		if err := a.Mount(resources[i].MountPath(), c); err != nil {
			return nil, fmt.Errorf("resource '%s': %w", c.Name(), err)
		}
	}
	return a, nil
}

// SwapHandler serves whatever handler was stored last. Requests in flight finish on the
// handler they started with.
type SwapHandler struct {
	current atomic.Pointer[http.Handler]
}

func NewSwapHandler(h http.Handler) *SwapHandler {
	s := &SwapHandler{}
	s.Store(h)
	return s
}

func (s *SwapHandler) Store(h http.Handler) {
	s.current.Store(&h)
}

func (s *SwapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	(*s.current.Load()).ServeHTTP(w, r)
}
