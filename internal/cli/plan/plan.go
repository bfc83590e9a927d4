// Package plan implements the plan client commands.
package plan

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flag names shared with the root command.
const (
	FlagAPIURL  = "api-url"
	FlagVerbose = "verbose"
)

// AddClientFlags registers the flags every client command reads.
func AddClientFlags(fs *pflag.FlagSet) {
	fs.String(FlagAPIURL, "", "Planner API base URL (default $SMARTPLAN_API_URL or http://localhost:8000)")
	fs.Bool(FlagVerbose, false, "Log request failures to stderr")
}

// NewPlanCmd returns the parent command for plan subcommands.
func NewPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Create, inspect and manage plans",
		Long:  `Commands for generating task plans from goals and working with existing plans.`,
	}
	cmd.AddCommand(
		newCreateCmd(),
		newShowCmd(),
		newProgressCmd(),
		newDeleteCmd(),
		newExportCmd(),
	)
	return cmd
}

// NewTaskCmd returns the parent command for task subcommands.
func NewTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Update tasks within a plan",
	}
	cmd.AddCommand(newStatusCmd())
	return cmd
}
