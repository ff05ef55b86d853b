package httpadapter_test

import (
	"net/http"
	"testing"

	"crudrouter/internal/adapters/driven/filestore"
	"crudrouter/internal/adapters/driving/httpadapter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T, registry *prometheus.Registry) *httpadapter.App {
	t.Helper()

	store := filestore.NewInMemory()

	var options []httpadapter.AppOption
	if registry != nil {
		options = append(options, httpadapter.WithMetrics(httpadapter.NewMetrics(registry)))
	}
	app := httpadapter.NewApp(nil, options...)

	for _, name := range []string{"customer", "order"} {
		c, err := httpadapter.NewController(name, store.Constructor(), customerOptions())
		require.NoError(t, err)
		require.NoError(t, app.Mount("/"+name, c))
	}
	return app
}

func TestMeta(t *testing.T) {
	app := newApp(t, nil)

	rec := do(t, app.Handler(), http.MethodGet, "/meta", "")
	require.Equal(t, http.StatusOK, rec.Code)

	routes := []any{
		map[string]any{"path": "/", "method": "GET"},
		map[string]any{"path": "/", "method": "POST"},
		map[string]any{"path": "/{id}", "method": "DELETE"},
		map[string]any{"path": "/{id}", "method": "GET"},
		map[string]any{"path": "/{id}", "method": "PATCH"},
	}
	want := map[string]any{
		"path": "/",
		"routers": []any{
			map[string]any{"path": "/customer", "routes": routes},
			map[string]any{"path": "/order", "routes": routes},
		},
	}
	assert.Equal(t, want, decode(t, rec))
}

func TestMount(t *testing.T) {
	app := newApp(t, nil)
	c, err := httpadapter.NewController("customer", filestore.NewInMemory().Constructor(), customerOptions())
	require.NoError(t, err)

	assert.Error(t, app.Mount("customer/", c), "already mounted")
	assert.Error(t, app.Mount("/", c), "root")

	rec := do(t, app.Handler(), http.MethodPost, "/customer", `{"name": "Ann"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// resources mounted on the same store share the collection name of the schema
	rec = do(t, app.Handler(), http.MethodGet, "/order", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := do(t, newApp(t, nil).Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "ok"}, decode(t, rec))
}

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	app := newApp(t, registry)

	do(t, app.Handler(), http.MethodGet, "/customer", "")
	do(t, app.Handler(), http.MethodPost, "/customer", `{"name": "Ann"}`)
	do(t, app.Handler(), http.MethodGet, "/order/42", "")

	count, err := testutil.GatherAndCount(registry, "crudrouter_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = testutil.GatherAndCount(registry, "crudrouter_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
