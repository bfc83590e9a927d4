package plan

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewPlansCmd returns the top-level plan listing command.
func NewPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List all plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, nil)
			if err != nil {
				return err
			}
			if err := s.store.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("failed to list plans: %w", err)
			}
			return printPlans(s.out, s.store.Snapshot().Plans, time.Now())
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a plan with its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, nil)
			if err != nil {
				return err
			}
			if err := s.store.Select(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to load plan %s: %w", args[0], err)
			}
			return printPlan(s.out, s.store.Snapshot().Selected)
		},
	}
}

func newProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress <id>",
		Short: "Show task counts and completion for a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, nil)
			if err != nil {
				return err
			}
			report, err := s.api.GetProgress(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load progress for %s: %w", args[0], err)
			}
			return printReport(s.out, report)
		},
	}
}
