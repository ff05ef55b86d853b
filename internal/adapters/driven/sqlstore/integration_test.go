//go:build integration

package sqlstore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"crudrouter/internal/adapters/driven/sqlstore"
	"crudrouter/internal/core/domain"
	"crudrouter/internal/core/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "crud",
				"POSTGRES_PASSWORD": "crud",
				"POSTGRES_DB":       "crud",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://crud:crud@%s:%s/crud?sslmode=disable", host, port.Port())
}

func TestPostgresRoundTrip(t *testing.T) {
	ctx := context.Background()

	pool, err := sqlstore.Connect(ctx, startPostgres(t))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `CREATE TABLE users (id SERIAL PRIMARY KEY, name TEXT NOT NULL, email TEXT)`)
	require.NoError(t, err)

	store := sqlstore.New(pool, nil)
	opts := strategy.Options{IDField: "id", TableName: "users"}

	s, err := strategy.Build(store.Constructor(), map[string]any{"name": "Ann", "email": "ann@example.com"}, opts)
	require.NoError(t, err)
	created, err := s.Create(ctx, nil)
	require.NoError(t, err)

	id := created.(domain.Record)["id"]
	assert.EqualValues(t, 1, id)

	s, err = strategy.Build(store.Constructor(), map[string]any{"id": "1", "name": "Annie"}, opts)
	require.NoError(t, err)
	updated, err := s.Update(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "Annie", updated.(domain.Record)["name"])

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	deleted, err := s.Delete(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	missing, err := s.Delete(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
