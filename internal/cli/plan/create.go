package plan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pablasso/smartplan/internal/client"
)

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <goal...>",
		Short: "Generate a plan for a goal",
		Long:  `Ask the planner to break a goal into tasks, then show the new plan.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCreate,
	}
}

func runCreate(cmd *cobra.Command, args []string) error {
	goal := strings.TrimSpace(strings.Join(args, " "))
	if goal == "" {
		return client.ErrEmptyGoal
	}

	s, err := newSession(cmd, nil)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Generating plan for: %s\n", goal)
	s.startStatus("Generating plan")
	err = s.store.Create(cmd.Context(), goal)
	s.stopStatus(client.LevelInfo)
	if err != nil {
		if errors.Is(err, client.ErrStale) {
			return nil
		}
		return fmt.Errorf("failed to create plan: %w", err)
	}

	selected := s.store.Snapshot().Selected
	if selected == nil {
		return nil
	}
	fmt.Fprintln(s.out)
	return printPlan(s.out, selected)
}
