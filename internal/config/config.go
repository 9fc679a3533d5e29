// Package config handles loading and parsing application configuration.
// It supports two sources for the file path (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Every value in the file can also be overridden by its env:"..." variable.
// The parsed values are returned as a *Config pointer so the struct is
// shared by reference rather than copied everywhere.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Audit sink kinds accepted by audit.sink.
const (
	SinkCSV      = "csv"
	SinkXLSX     = "xlsx"
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
	SinkRedis    = "redis"
	SinkNone     = "none"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
//
// validate:"..." rules are checked after loading; a bad value stops the
// app at boot instead of failing on the first request.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev" validate:"oneof=dev staging prod"`

	// HTTPServer is embedded (not a pointer) so its fields are accessible
	// directly on Config:  cfg.HTTPServer.Addr  or after promotion cfg.Addr
	HTTPServer `yaml:"http_server"`

	// Audit selects where successful adds are logged.
	Audit Audit `yaml:"audit"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082" validate:"required"`
}

// Audit holds the audit sink settings. Only the fields the chosen sink
// needs are checked.
type Audit struct {
	Sink string `yaml:"sink" env:"AUDIT_SINK" env-default:"csv" validate:"oneof=csv xlsx sqlite postgres redis none"`

	// Path is the file for csv, xlsx and sqlite sinks. Left empty, it
	// becomes the sink's entry in defaultPaths.
	Path string `yaml:"path" env:"AUDIT_PATH" validate:"required_if=Sink csv,required_if=Sink xlsx,required_if=Sink sqlite"`

	// Sheet is the worksheet name for the xlsx sink.
	Sheet string `yaml:"sheet" env:"AUDIT_SHEET" env-default:"Students"`

	// DSN is the connection string for the postgres sink.
	DSN string `yaml:"dsn" env:"AUDIT_DSN" validate:"required_if=Sink postgres"`

	// RedisAddr and RedisKey configure the redis sink.
	RedisAddr string `yaml:"redis_addr" env:"AUDIT_REDIS_ADDR" validate:"required_if=Sink redis"`
	RedisKey  string `yaml:"redis_key" env:"AUDIT_REDIS_KEY" env-default:"students:audit"`
}

// defaultPaths is the file each file-backed sink writes when audit.path
// is not set.
var defaultPaths = map[string]string{
	SinkCSV:    "students.csv",
	SinkXLSX:   "students.xlsx",
	SinkSQLite: "students.db",
}

// Load reads the YAML file at path, applies env overrides and validates
// the result.
func Load(path string) (*Config, error) {
	// Verify the file exists before trying to read it, so the message
	// is clear rather than a cryptic "open: no such file" later.
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	// cleanenv.ReadConfig reads the YAML file and populates the struct.
	// It also reads any env:"..." tagged fields from the environment
	// and fills env-default values for anything left unset.
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if cfg.Audit.Path == "" {
		cfg.Audit.Path = defaultPaths[cfg.Audit.Sink]
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MustLoad reads, validates, and returns the application config.
//
// The name "MustLoad" follows a Go convention: functions prefixed with
// "Must" are allowed to panic/fatal on failure. Callers do not need to
// check a returned error: if this function returns, the config is valid.
func MustLoad() *Config {
	// ── Source 1: environment variable ───────────────────────────────
	configPath := os.Getenv("CONFIG_PATH")

	// ── Source 2: command-line flag ───────────────────────────────────
	//   go run ./cmd/students-api --config=config/local.yaml
	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	// Neither source provided a path: we cannot continue.
	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err.Error())
	}
	return cfg
}
