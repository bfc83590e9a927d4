// Package cli wires the smartplan commands.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pablasso/smartplan/internal/cli/plan"
	"github.com/pablasso/smartplan/internal/config"
	"github.com/pablasso/smartplan/internal/telemetry"
	"github.com/pablasso/smartplan/internal/version"
)

const clientServiceName = "smartplan-cli"

// NewRootCmd builds the command tree. Client commands install tracing in
// their pre-run hook; the returned func flushes it and is safe to call
// when nothing was installed.
func NewRootCmd() (*cobra.Command, func(context.Context) error) {
	shutdown := func(context.Context) error { return nil }

	root := &cobra.Command{
		Use:           "smartplan",
		Short:         "AI-powered goal to task planner",
		Long:          `Smartplan breaks a goal into ordered, prioritised tasks and tracks their progress. Run without arguments for the interactive terminal UI.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// serve installs its own provider.
			if cmd.Name() == "serve" {
				return nil
			}
			cfg, err := config.Load[config.Telemetry]()
			if err != nil {
				return err
			}
			fn, err := telemetry.Setup(cmd.Context(), clientServiceName, cfg)
			if err != nil {
				return err
			}
			shutdown = fn
			return nil
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")
	plan.AddClientFlags(root.PersistentFlags())
	root.AddCommand(
		plan.NewPlansCmd(),
		plan.NewPlanCmd(),
		plan.NewTaskCmd(),
		newServeCmd(),
	)
	return root, func(ctx context.Context) error { return shutdown(ctx) }
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string) error {
	root, shutdown := NewRootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if serr := shutdown(context.Background()); err == nil {
		err = serr
	}
	return err
}
