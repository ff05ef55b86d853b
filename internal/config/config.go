package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr    string
	ResourcesFile string
	// backends
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
	DataDir       string
	Watch         bool
	// http settings
	MaxRequestSize int64
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Debug          bool
	// logging
	LogLevel  string
	LogFormat string
}

// change here only as it populates both default and env aware configs
var cfgDefaults = map[string]string{
	"SERVER_ADDR":    ":8080",
	"RESOURCES_FILE": "resources.yaml",
	// backends, an empty url leaves the backend unconfigured
	"DATABASE_URL":   "",
	"MONGO_URI":      "",
	"MONGO_DATABASE": "crudrouter",
	"DATA_DIR":       "data",
	"WATCH":          "false",
	// http settings
	"MAX_REQUEST_SIZE": "1048576",
	"READ_TIMEOUT":     "5s",
	"WRITE_TIMEOUT":    "10s",
	"DEBUG":            "false",
	// logging
	"LOG_LEVEL":  "info",
	"LOG_FORMAT": "json",
}

const durationHelp = `a time duration value is a possibly signed sequence of decimal numbers, each with optional fraction and a unit suffix, such as "300ms", "-1.5h" or "2h45m"`

// Default return a configuration object with defaults so can bypass .env file or ENV vars
func Default() *Config {
	// safe to ignore the errors as the defaults are defined by us just above
	cfg, _ := build(func(key string) string { return cfgDefaults[key] })
	return cfg
}

// Load creates a config by loading values from env vars falling back to defaults if these don't exist.
// A ".env" file in the working directory is read first; it never overrides variables already set.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config error: could not read .env: %w", err)
	}

	return build(func(key string) string { return getEnv(key, cfgDefaults[key]) })
}

func build(get func(string) string) (*Config, error) {
	watch, err := parseBool(get, "WATCH")
	if err != nil {
		return nil, err
	}

	debug, err := parseBool(get, "DEBUG")
	if err != nil {
		return nil, err
	}

	maxRequestSize, err := strconv.ParseInt(get("MAX_REQUEST_SIZE"), 10, 64)
	if err != nil || maxRequestSize <= 0 {
		return nil, fmt.Errorf("config error: MAX_REQUEST_SIZE should be a positive number of bytes, got '%s'", get("MAX_REQUEST_SIZE"))
	}

	readTimeout, err := parseDuration(get, "READ_TIMEOUT")
	if err != nil {
		return nil, err
	}

	writeTimeout, err := parseDuration(get, "WRITE_TIMEOUT")
	if err != nil {
		return nil, err
	}

	logFormat := strings.ToLower(get("LOG_FORMAT"))
	if logFormat != "json" && logFormat != "console" {
		return nil, fmt.Errorf("config error: invalid LOG_FORMAT: '%s'. valid options are 'json', 'console'", logFormat)
	}

	return &Config{
		ServerAddr:     get("SERVER_ADDR"),
		ResourcesFile:  get("RESOURCES_FILE"),
		DatabaseURL:    get("DATABASE_URL"),
		MongoURI:       get("MONGO_URI"),
		MongoDatabase:  get("MONGO_DATABASE"),
		DataDir:        get("DATA_DIR"),
		Watch:          watch,
		MaxRequestSize: maxRequestSize,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		Debug:          debug,
		LogLevel:       strings.ToLower(get("LOG_LEVEL")),
		LogFormat:      logFormat,
	}, nil
}

func parseBool(get func(string) string, key string) (bool, error) {
	v, err := strconv.ParseBool(get(key))
	if err != nil {
		return false, fmt.Errorf(`config error: %s should be "true" or "false"`, key)
	}
	return v, nil
}

func parseDuration(get func(string) string, key string) (time.Duration, error) {
	d, err := time.ParseDuration(get(key))
	if err != nil {
		return 0, fmt.Errorf("config error: %s: %s: %v", key, durationHelp, err)
	}
	return d, nil
}

// getEnv returns the value of an environment var or the default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
