package httpadapter

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"crudrouter/internal/core/dispatch"
	"crudrouter/internal/core/result"
	"crudrouter/internal/core/strategy"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	MaxRequestSize = 1024 * 1024 // 1MB max request size
	IDParam        = dispatch.IDParam
)

// Handler serves one request. id is the route's id parameter, empty when the route has none.
type Handler func(w http.ResponseWriter, r *http.Request, id string)

// Route is one of the default routes of a controller. Path is "/" or "/{id}".
type Route struct {
	Method  string
	Path    string
	Handler Handler
}

// Controller generates the handlers of one resource.
type Controller struct {
	name           string
	ctor           strategy.Constructor
	opts           strategy.Options
	logger         *zap.Logger
	maxRequestSize int64
	routes         []Route
}

type ControllerOption func(*Controller)

func WithLogger(logger *zap.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMaxRequestSize(size int64) ControllerOption {
	return func(c *Controller) {
		if size > 0 {
			c.maxRequestSize = size
		}
	}
}

// NewController binds a resource to a backend constructor. The default routes are resolved here
// so a broken backend or bad options fail before any request is served.
func NewController(name string, ctor strategy.Constructor, opts strategy.Options, options ...ControllerOption) (*Controller, error) {
	if name == "" {
		return nil, fmt.Errorf("NewController: %w: resource name is required", strategy.ErrInvalidOptions)
	}

	if ctor == nil {
		return nil, fmt.Errorf("NewController: %w", strategy.ErrNoBackend)
	}

	if err := opts.Check(); err != nil {
		return nil, fmt.Errorf("NewController: %w", err)
	}

	c := &Controller{
		name:           name,
		ctor:           ctor,
		opts:           opts,
		logger:         zap.NewNop(),
		maxRequestSize: MaxRequestSize,
	}
	for _, option := range options {
		option(c)
	}
	c.logger = c.logger.With(zap.String("resource", name))

	defaults := []struct {
		httpMethod string
		path       string
		method     string
		kind       dispatch.Kind
		validate   bool
	}{
		{http.MethodGet, "/", strategy.MethodFindAll, dispatch.Query, false},
		{http.MethodPost, "/", strategy.MethodCreate, dispatch.Mutation, true},
		{http.MethodPatch, "/{" + IDParam + "}", strategy.MethodUpdate, dispatch.Mutation, true},
		{http.MethodGet, "/{" + IDParam + "}", strategy.MethodFindOneByID, dispatch.Query, false},
		{http.MethodDelete, "/{" + IDParam + "}", strategy.MethodDelete, dispatch.Mutation, false},
	}

	for _, d := range defaults {
		var overrides []strategy.Override
		if d.validate {
			overrides = append(overrides, strategy.WithValidate(true))
		}

		h, err := c.handler(d.method, d.kind, overrides)
		if err != nil {
			return nil, fmt.Errorf("NewController: %w", err)
		}
		c.routes = append(c.routes, Route{Method: d.httpMethod, Path: d.path, Handler: h})
	}

	return c, nil
}

func (c *Controller) Name() string { return c.name }

func (c *Controller) Options() strategy.Options { return c.opts }

// Routes returns the default route table.
func (c *Controller) Routes() []Route {
	return append([]Route(nil), c.routes...)
}

// Query builds a handler for method using the read decision table.
func (c *Controller) Query(method string, overrides ...strategy.Override) (Handler, error) {
	return c.handler(method, dispatch.Query, overrides)
}

// Mutation builds a handler for method using the write decision table.
func (c *Controller) Mutation(method string, overrides ...strategy.Override) (Handler, error) {
	return c.handler(method, dispatch.Mutation, overrides)
}

func (c *Controller) MustQuery(method string, overrides ...strategy.Override) Handler {
	h, err := c.Query(method, overrides...)
	if err != nil {
		panic(err)
	}
	return h
}

func (c *Controller) MustMutation(method string, overrides ...strategy.Override) Handler {
	h, err := c.Mutation(method, overrides...)
	if err != nil {
		panic(err)
	}
	return h
}

func (c *Controller) handler(method string, kind dispatch.Kind, overrides []strategy.Override) (Handler, error) {
	binding, err := dispatch.Bind(c.ctor, c.opts, method, kind, overrides...)
	if err != nil {
		return nil, err
	}

	idField := binding.Options().IDField
	debug := binding.Options().Result.Debug

	return func(w http.ResponseWriter, r *http.Request, id string) {
		var env result.Envelope

		body, err := readBody(r)
		if err != nil {
			env = result.FromError(err, debug)
		} else if values, err := dispatch.Values(body, idField, id); err != nil {
			env = result.FromError(err, debug)
		} else {
			env = binding.Run(r.Context(), values)
		}

		c.log(r, binding, env)

		if err := env.Send(w); err != nil {
			c.logger.Error("failed to encode response", zap.String("method", binding.Method()), zap.Error(err))
		}
	}, nil
}

func (c *Controller) log(r *http.Request, b *dispatch.Binding, env result.Envelope) {
	if env.Err == nil {
		return
	}

	fields := []zap.Field{
		zap.String("method", b.Method()),
		zap.String("kind", b.Kind().String()),
		zap.Int("status", env.Status),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(env.Err),
	}

	if env.Status >= http.StatusInternalServerError {
		c.logger.Error("strategy failed", fields...)
		return
	}
	c.logger.Debug("request rejected", fields...)
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &PayloadTooLargeError{Limit: tooLarge.Limit}
		}
		return nil, &dispatch.SyntaxError{Err: err}
	}
	return body, nil
}

// PayloadTooLargeError is returned when a body exceeds the write route size limit.
type PayloadTooLargeError struct {
	Limit int64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.Limit)
}

func (e *PayloadTooLargeError) Name() string { return "PayloadTooLarge" }

func (e *PayloadTooLargeError) StatusCode() int { return http.StatusRequestEntityTooLarge }

// Chi adapts h to a chi route, taking the id from the {id} URL parameter.
func Chi(h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(w, r, chi.URLParam(r, IDParam))
	}
}

// Router returns a chi router with the default routes. Write routes carry a request size limit,
// id routes reject an empty id.
func (c *Controller) Router() chi.Router {
	router := chi.NewRouter()

	for _, route := range c.routes {
		var h http.Handler = Chi(route.Handler)

		if strings.Contains(route.Path, "{"+IDParam+"}") {
			h = RequireURLParams(IDParam)(h)
		}
		// write operations will have size limits
		if isWrite(route.Method) {
			h = RequestSizeLimit(c.maxRequestSize)(h)
		}

		router.Method(route.Method, route.Path, h)
	}

	return router
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// MaxRequestSize returns the write route body limit.
func (c *Controller) MaxRequestSize() int64 { return c.maxRequestSize }
