package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pablasso/smartplan/internal/api"
	"github.com/pablasso/smartplan/internal/cli"
	"github.com/pablasso/smartplan/internal/config"
	"github.com/pablasso/smartplan/internal/telemetry"
	"github.com/pablasso/smartplan/internal/tui"
	"github.com/pablasso/smartplan/internal/version"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load[config.Client]()
	if err != nil {
		return err
	}

	res, err := parseArgs(args, cfg)
	if err != nil {
		return err
	}
	switch {
	case res.CLI:
		return cli.Execute(ctx, args)
	case res.ShowHelp:
		fmt.Print(res.HelpText)
		return nil
	case res.ShowVersion:
		fmt.Println(version.String())
		return nil
	}

	logger, closeLog, err := openLog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	tcfg, err := config.Load[config.Telemetry]()
	if err != nil {
		return err
	}
	shutdown, err := telemetry.Setup(ctx, "smartplan-tui", tcfg)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Printf("telemetry shutdown: %v", err)
		}
	}()

	client, err := api.New(res.APIURL)
	if err != nil {
		return err
	}
	logger.Printf("starting tui against %s", client.BaseURL())
	return tui.Run(ctx, client, tui.Options{Logger: logger, ExportDir: res.ExportDir})
}

// openLog appends diagnostics to path. The TUI owns the terminal, so an
// empty path discards them.
func openLog(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard, "", 0), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return log.New(f, "smartplan ", log.LstdFlags|log.Lmicroseconds), func() { f.Close() }, nil
}
