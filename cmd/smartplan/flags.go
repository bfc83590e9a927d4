package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/pablasso/smartplan/internal/config"
)

type parseResult struct {
	// CLI is set when args name a subcommand or a flag only the command
	// tree understands.
	CLI         bool
	APIURL      string
	ExportDir   string
	ShowHelp    bool
	ShowVersion bool
	HelpText    string
}

func parseArgs(args []string, cfg config.Client) (parseResult, error) {
	fs := flag.NewFlagSet("smartplan", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	apiURL := fs.String("api-url", cfg.APIURL, "Plan API base URL")
	exportDir := fs.String("export-dir", "", "Directory for CSV exports (default: current directory)")
	showVersion := fs.Bool("version", false, "Show version information")
	showVersionShort := fs.Bool("v", false, "Show version information")

	usage := func() string {
		var b strings.Builder
		fmt.Fprintln(&b, "Usage: smartplan [flags]")
		fmt.Fprintln(&b, "       smartplan <command> [args]")
		fmt.Fprintln(&b, "")
		fmt.Fprintln(&b, "Smartplan turns a goal into a prioritised task plan.")
		fmt.Fprintln(&b, "Without a command it opens the interactive terminal UI.")
		fmt.Fprintln(&b, "Run 'smartplan help' to list commands.")
		fmt.Fprintln(&b, "")
		fmt.Fprintln(&b, "Flags:")
		fs.SetOutput(&b)
		fs.PrintDefaults()
		fs.SetOutput(io.Discard)
		return b.String()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return parseResult{ShowHelp: true, HelpText: usage()}, nil
		}
		// Leave unknown flags to the command tree.
		return parseResult{CLI: true}, nil
	}

	if fs.NArg() > 0 {
		return parseResult{CLI: true}, nil
	}

	if *showVersion || *showVersionShort {
		return parseResult{ShowVersion: true}, nil
	}

	if strings.TrimSpace(*apiURL) == "" {
		return parseResult{}, fmt.Errorf("--api-url must not be empty\n\n%s", usage())
	}

	return parseResult{APIURL: *apiURL, ExportDir: *exportDir}, nil
}
