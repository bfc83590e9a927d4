package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pablasso/smartplan/internal/ai"
	"github.com/pablasso/smartplan/internal/config"
	"github.com/pablasso/smartplan/internal/demo"
	"github.com/pablasso/smartplan/internal/planner"
	"github.com/pablasso/smartplan/internal/server"
	"github.com/pablasso/smartplan/internal/storage"
	"github.com/pablasso/smartplan/internal/storage/file"
	"github.com/pablasso/smartplan/internal/storage/graph"
	"github.com/pablasso/smartplan/internal/storage/memory"
	"github.com/pablasso/smartplan/internal/storage/sqlite"
	"github.com/pablasso/smartplan/internal/telemetry"
)

const serviceName = "smartplan-server"

type serveOptions struct {
	addr       string
	storage    string
	dataDir    string
	generator  string
	skipChecks bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the plan API server",
		Long:  `Serve the plan API over HTTP. Settings come from SMARTPLAN_* environment variables; flags override them.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load[config.Server]()
			if err != nil {
				return err
			}
			applyServeFlags(cmd, &cfg, opts)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if !opts.skipChecks && cfg.Generator != config.GeneratorDemo {
				if err := checkClaudeCode(ctx); err != nil {
					return err
				}
			}
			return serve(ctx, cfg, log.New(cmd.ErrOrStderr(), "smartplan ", log.LstdFlags))
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (default $SMARTPLAN_ADDR or :8000)")
	cmd.Flags().StringVar(&opts.storage, "storage", "", "Storage backend: memory, file, sqlite or neo4j (default $SMARTPLAN_STORAGE or sqlite)")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "Directory for file and sqlite storage (default $SMARTPLAN_DATA_DIR or .smartplan)")
	cmd.Flags().StringVar(&opts.generator, "generator", "", "Plan generator: claude or demo (default $SMARTPLAN_GENERATOR or claude)")
	cmd.Flags().BoolVar(&opts.skipChecks, "skip-checks", false, "Start even if the Claude Code CLI is unavailable")
	return cmd
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Server, opts serveOptions) {
	if cmd.Flags().Changed("addr") {
		cfg.Addr = opts.addr
	}
	if cmd.Flags().Changed("storage") {
		cfg.Storage = opts.storage
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = opts.dataDir
	}
	if cmd.Flags().Changed("generator") {
		cfg.Generator = opts.generator
	}
}

func serve(ctx context.Context, cfg config.Server, logger *log.Logger) error {
	tcfg, err := config.Load[config.Telemetry]()
	if err != nil {
		return err
	}
	shutdown, err := telemetry.Setup(ctx, serviceName, tcfg)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Printf("telemetry shutdown: %v", err)
		}
	}()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Printf("storage: %s", cfg.Storage)

	gen, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	logger.Printf("generator: %s", cfg.Generator)

	svc := planner.New(store, gen)
	h := server.New(svc, server.Options{CORSOrigins: cfg.CORSOrigins, Logger: logger})
	return server.Run(ctx, cfg.Addr, h, logger)
}

// newGenerator builds the configured plan generator.
func newGenerator(cfg config.Server) (ai.Generator, error) {
	if cfg.Generator != config.GeneratorDemo {
		return ai.NewClaudeGenerator(cfg.GeneratorTimeout), nil
	}
	preset, err := demo.ParsePreset(cfg.DemoPreset)
	if err != nil {
		return nil, err
	}
	scenario, err := demo.ParseScenario(cfg.DemoScenario)
	if err != nil {
		return nil, err
	}
	return demo.New(preset, scenario)
}

// openStore opens the configured storage backend.
func openStore(ctx context.Context, cfg config.Server) (storage.Store, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageFile:
		s, err := file.Open(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open file storage: %w", err)
		}
		return s, nil
	case config.StorageSQLite:
		path := cfg.SQLiteFile()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return s, nil
	case config.StorageNeo4j:
		s, err := graph.Open(ctx, graph.Config{
			URI:      cfg.Neo4jURI,
			Username: cfg.Neo4jUser,
			Password: cfg.Neo4jPassword,
			Database: cfg.Neo4jDatabase,
		})
		if err != nil {
			return nil, fmt.Errorf("open neo4j storage: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
