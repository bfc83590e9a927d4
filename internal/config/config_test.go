package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port int `env:"SMARTPLAN_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("SMARTPLAN_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadClientDefaults(t *testing.T) {
	t.Setenv("SMARTPLAN_API_URL", "")
	cfg, err := Load[Client]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://localhost:8000" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
}

func TestLoadServer(t *testing.T) {
	t.Setenv("SMARTPLAN_STORAGE", "file")
	t.Setenv("SMARTPLAN_CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("SMARTPLAN_GENERATOR_TIMEOUT", "90s")
	t.Setenv("SMARTPLAN_DATA_DIR", "/tmp/plans")

	cfg, err := Load[Server]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage != StorageFile {
		t.Errorf("Storage = %q", cfg.Storage)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.GeneratorTimeout != 90*time.Second {
		t.Errorf("GeneratorTimeout = %v", cfg.GeneratorTimeout)
	}
	if cfg.Addr != ":8000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.Generator != GeneratorClaude || cfg.DemoPreset != "quick" || cfg.DemoScenario != "success" {
		t.Errorf("generator defaults = %q %q %q", cfg.Generator, cfg.DemoPreset, cfg.DemoScenario)
	}
	if got := cfg.SQLiteFile(); got != filepath.Join("/tmp/plans", "plans.db") {
		t.Errorf("SQLiteFile() = %q", got)
	}
}

func TestServerValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Server
		wantErr bool
	}{
		{name: "sqlite", cfg: Server{Addr: ":8000", Storage: StorageSQLite}},
		{name: "neo4j", cfg: Server{Addr: ":8000", Storage: StorageNeo4j}},
		{name: "unknown backend", cfg: Server{Addr: ":8000", Storage: "postgres"}, wantErr: true},
		{name: "missing addr", cfg: Server{Storage: StorageMemory}, wantErr: true},
		{name: "demo generator", cfg: Server{Addr: ":8000", Storage: StorageMemory, Generator: GeneratorDemo}},
		{name: "unknown generator", cfg: Server{Addr: ":8000", Storage: StorageMemory, Generator: "gpt"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSQLiteFileOverride(t *testing.T) {
	cfg := Server{DataDir: "data", SQLitePath: "/var/lib/plans.sqlite"}
	if got := cfg.SQLiteFile(); got != "/var/lib/plans.sqlite" {
		t.Errorf("SQLiteFile() = %q", got)
	}
}
