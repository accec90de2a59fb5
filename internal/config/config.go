// Package config handles loading and parsing application configuration.
// It supports two sources (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Both binaries (the students-api record store and the roster client)
// read the same file; each uses the sections it needs. Every key can be
// overridden by the environment variable named in its env:"..." tag.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage drivers understood by the students-api service.
const (
	DriverSQLite3  = "sqlite3"  // github.com/mattn/go-sqlite3 (cgo)
	DriverSQLite   = "sqlite"   // modernc.org/sqlite (pure Go)
	DriverPostgres = "postgres" // github.com/jackc/pgx/v5
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	// StorageDriver selects the students-api backend.
	StorageDriver string `yaml:"storage_driver" env:"STORAGE_DRIVER" env-default:"sqlite3"`

	// StoragePath is the filesystem path to the SQLite .db file.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"storage/storage.db"`

	// PostgresDSN is used when StorageDriver is "postgres".
	PostgresDSN string `yaml:"postgres_dsn" env:"POSTGRES_DSN"`

	// LogPath redirects the roster client's logs to a file. The terminal
	// UI owns stdout, so logs are discarded when this is empty.
	LogPath string `yaml:"log_path" env:"LOG_PATH"`

	HTTPServer    `yaml:"http_server"`
	Client        Client        `yaml:"client"`
	Theme         Theme         `yaml:"theme"`
	Notifications Notifications `yaml:"notifications"`
	Sync          Sync          `yaml:"sync"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082"`
}

// Client configures the roster's record store client.
type Client struct {
	// BaseURL is the scheme+host of the record store, without /api/students.
	BaseURL string `yaml:"base_url" env:"CLIENT_BASE_URL" env-default:"http://localhost:8082"`

	// Timeout bounds a single request. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" env:"CLIENT_TIMEOUT" env-default:"0s"`
}

// Theme configures where the persisted theme preference lives.
type Theme struct {
	// Dir is the diskv base directory. "~" is expanded.
	Dir string `yaml:"dir" env:"THEME_DIR" env-default:"~/.student-roster"`
}

// Notifications configures the toast queue.
type Notifications struct {
	TTL time.Duration `yaml:"ttl" env:"NOTIFICATIONS_TTL" env-default:"3200ms"`
}

// Sync configures how list refreshes are reconciled.
type Sync struct {
	// DiscardStaleReloads drops list responses that arrive after a newer
	// one has already been applied. Off by default: the last response to
	// arrive wins.
	DiscardStaleReloads bool `yaml:"discard_stale_reloads" env:"SYNC_DISCARD_STALE_RELOADS" env-default:"false"`
}

// ErrNoConfigPath is returned by Resolve when neither CONFIG_PATH nor the
// --config flag names a file.
var ErrNoConfigPath = errors.New("config path is not set: use --config flag or CONFIG_PATH env var")

// Load reads the YAML file at path and overlays environment variables.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		return nil, fmt.Errorf("stat config: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds a Config from defaults and environment variables only.
// The roster client falls back to this when no file is given.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Resolve returns the config path from CONFIG_PATH or the --config flag.
func Resolve() (string, error) {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p, nil
	}
	if flag.Lookup("config") == nil {
		flag.String("config", "", "Path to the configuration YAML file")
	}
	if !flag.Parsed() {
		flag.Parse()
	}
	if p := flag.Lookup("config").Value.String(); p != "" {
		return p, nil
	}
	return "", ErrNoConfigPath
}

// MustLoad reads, validates, and returns the application config.
//
// Functions prefixed with "Must" are allowed to fatal on failure: if this
// returns, the config is valid.
func MustLoad() *Config {
	path, err := Resolve()
	if err != nil {
		log.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case DriverSQLite3, DriverSQLite:
		if c.StoragePath == "" {
			return errors.New("storage_path is required for sqlite drivers")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage_driver %q", c.StorageDriver)
	}
	if c.Notifications.TTL <= 0 {
		return errors.New("notifications.ttl must be positive")
	}
	return nil
}
