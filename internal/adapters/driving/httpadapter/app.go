package httpadapter

import (
	"cmp"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App mounts resource routers under one chi router and describes them on /meta.
type App struct {
	router  chi.Router
	logger  *zap.Logger
	metrics *Metrics

	mu     sync.RWMutex
	mounts map[string]chi.Router
}

type AppOption func(*App)

func WithMetrics(m *Metrics) AppOption {
	return func(a *App) { a.metrics = m }
}

// RouteInfo is one route of the meta document.
type RouteInfo struct {
	Path   string `json:"path"`
	Method string `json:"method"`
}

// RouterInfo lists the routes of one mounted router.
type RouterInfo struct {
	Path   string      `json:"path"`
	Routes []RouteInfo `json:"routes"`
}

// Meta is the document served on GET /meta.
type Meta struct {
	Path    string       `json:"path"`
	Routers []RouterInfo `json:"routers"`
}

func NewApp(logger *zap.Logger, options ...AppOption) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{
		router: chi.NewRouter(),
		logger: logger,
		mounts: make(map[string]chi.Router),
	}
	for _, option := range options {
		option(a)
	}

	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.RealIP)
	a.router.Use(RequestLogger(logger))
	a.router.Use(middleware.Recoverer)

	a.router.Get("/meta", a.handleMeta)
	a.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	})

	return a
}

// Mount serves the default routes of c under path.
func (a *App) Mount(path string, c *Controller) error {
	return a.MountRouter(path, c.Router())
}

// MountRouter serves r under path. Use it for controller routers extended with custom routes.
func (a *App) MountRouter(path string, r chi.Router) error {
	path = "/" + strings.Trim(path, "/")
	if path == "/" {
		return fmt.Errorf("cannot mount a resource on the root path")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, taken := a.mounts[path]; taken {
		return fmt.Errorf("path '%s' is already mounted", path)
	}

	var mounter chi.Router = a.router
	if a.metrics != nil {
		mounter = a.router.With(a.metrics.Middleware(path))
	}
	mounter.Mount(path, r)

	a.mounts[path] = r
	a.logger.Info("resource mounted", zap.String("path", path))
	return nil
}

func (a *App) Handler() http.Handler {
	return a.router
}

// Meta walks every mounted router. Routers and routes are sorted by path, routes then by method.
func (a *App) Meta() Meta {
	a.mu.RLock()
	defer a.mu.RUnlock()

	meta := Meta{Path: "/", Routers: make([]RouterInfo, 0, len(a.mounts))}

	for path, r := range a.mounts {
		info := RouterInfo{Path: path, Routes: []RouteInfo{}}

		walk := func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			info.Routes = append(info.Routes, RouteInfo{Path: route, Method: method})
			return nil
		}
		if err := chi.Walk(r, walk); err != nil {
			a.logger.Warn("failed to walk router", zap.String("path", path), zap.Error(err))
		}

		slices.SortFunc(info.Routes, func(x, y RouteInfo) int {
			return cmp.Or(cmp.Compare(x.Path, y.Path), cmp.Compare(x.Method, y.Method))
		})
		meta.Routers = append(meta.Routers, info)
	}

	slices.SortFunc(meta.Routers, func(x, y RouterInfo) int {
		return cmp.Compare(x.Path, y.Path)
	})
	return meta
}

func (a *App) handleMeta(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Meta(), a.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
