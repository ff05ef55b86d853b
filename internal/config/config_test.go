package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"crudrouter/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "resources.yaml", cfg.ResourcesFile)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, int64(1048576), cfg.MaxRequestSize)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoad(t *testing.T) {
	testCases := map[string]struct {
		env     map[string]string
		check   func(t *testing.T, cfg *config.Config)
		wantErr bool
	}{
		"ok - env overrides defaults": {
			env: map[string]string{
				"SERVER_ADDR":  ":9090",
				"DATABASE_URL": "postgres://localhost/crud",
				"DEBUG":        "true",
				"READ_TIMEOUT": "1500ms",
				"LOG_FORMAT":   "Console",
			},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, ":9090", cfg.ServerAddr)
				assert.Equal(t, "postgres://localhost/crud", cfg.DatabaseURL)
				assert.True(t, cfg.Debug)
				assert.Equal(t, 1500*time.Millisecond, cfg.ReadTimeout)
				assert.Equal(t, "console", cfg.LogFormat)
			},
		},
		"error - bad bool":     {env: map[string]string{"WATCH": "sometimes"}, wantErr: true},
		"error - bad duration": {env: map[string]string{"WRITE_TIMEOUT": "soon"}, wantErr: true},
		"error - bad size":     {env: map[string]string{"MAX_REQUEST_SIZE": "-1"}, wantErr: true},
		"error - bad format":   {env: map[string]string{"LOG_FORMAT": "xml"}, wantErr: true},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := config.Load()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	envFile := "# local settings\nSERVER_ADDR=\":7070\"\nDATA_DIR=/srv/data\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(envFile), 0644))
	t.Setenv("DATA_DIR", "/already/set")
	// registers a cleanup for the value godotenv is about to set
	t.Setenv("SERVER_ADDR", "")
	require.NoError(t, os.Unsetenv("SERVER_ADDR"))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.ServerAddr)
	// variables already in the environment win
	assert.Equal(t, "/already/set", cfg.DataDir)
}
