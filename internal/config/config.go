// Package config loads smartplan settings from the environment.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Client configures the plan client (CLI and TUI).
type Client struct {
	APIURL  string `env:"SMARTPLAN_API_URL" envDefault:"http://localhost:8000"`
	LogFile string `env:"SMARTPLAN_LOG_FILE"`
}

// Storage backend names.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageNeo4j  = "neo4j"
)

// StorageBackends lists the accepted SMARTPLAN_STORAGE values.
var StorageBackends = []string{StorageMemory, StorageFile, StorageSQLite, StorageNeo4j}

// Generator names.
const (
	GeneratorClaude = "claude"
	GeneratorDemo   = "demo"
)

// Server configures the plan API server.
type Server struct {
	Addr             string        `env:"SMARTPLAN_ADDR" envDefault:":8000"`
	Storage          string        `env:"SMARTPLAN_STORAGE" envDefault:"sqlite"`
	DataDir          string        `env:"SMARTPLAN_DATA_DIR" envDefault:".smartplan"`
	SQLitePath       string        `env:"SMARTPLAN_SQLITE_PATH"`
	Neo4jURI         string        `env:"SMARTPLAN_NEO4J_URI" envDefault:"neo4j://localhost:7687"`
	Neo4jUser        string        `env:"SMARTPLAN_NEO4J_USER" envDefault:"neo4j"`
	Neo4jPassword    string        `env:"SMARTPLAN_NEO4J_PASSWORD"`
	Neo4jDatabase    string        `env:"SMARTPLAN_NEO4J_DATABASE"`
	CORSOrigins      []string      `env:"SMARTPLAN_CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	GeneratorTimeout time.Duration `env:"SMARTPLAN_GENERATOR_TIMEOUT" envDefault:"5m"`
	Generator        string        `env:"SMARTPLAN_GENERATOR" envDefault:"claude"`
	DemoPreset       string        `env:"SMARTPLAN_DEMO_PRESET" envDefault:"quick"`
	DemoScenario     string        `env:"SMARTPLAN_DEMO_SCENARIO" envDefault:"success"`
}

// Telemetry configures OpenTelemetry tracing.
type Telemetry struct {
	Endpoint string `env:"SMARTPLAN_OTEL_ENDPOINT"`
	Enabled  bool   `env:"SMARTPLAN_OTEL_ENABLED" envDefault:"true"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses a fresh T from the environment.
func Load[T any]() (T, error) {
	var cfg T
	err := ParseEnv(&cfg)
	return cfg, err
}

// Validate checks the address and the generator and storage names. An empty
// generator means claude.
func (s Server) Validate() error {
	if strings.TrimSpace(s.Addr) == "" {
		return fmt.Errorf("listen address is required")
	}
	switch s.Generator {
	case "", GeneratorClaude, GeneratorDemo:
	default:
		return fmt.Errorf("unknown generator %q (want %s or %s)", s.Generator, GeneratorClaude, GeneratorDemo)
	}
	for _, b := range StorageBackends {
		if s.Storage == b {
			return nil
		}
	}
	return fmt.Errorf("unknown storage backend %q (want one of %s)", s.Storage, strings.Join(StorageBackends, ", "))
}

// SQLiteFile returns the SQLite database path, defaulting to plans.db in the
// data directory.
func (s Server) SQLiteFile() string {
	if s.SQLitePath != "" {
		return s.SQLitePath
	}
	return filepath.Join(s.DataDir, "plans.db")
}
