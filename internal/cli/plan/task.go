package plan

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pablasso/smartplan/internal/plan"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <plan-id> <task-id> <status>",
		Short: "Set a task's status (pending, in_progress, completed)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID := args[0]
			taskID, err := strconv.Atoi(args[1])
			if err != nil || taskID <= 0 {
				return fmt.Errorf("invalid task id %q: must be a positive number", args[1])
			}
			if _, err := plan.ParseStatus(args[2]); err != nil {
				return err
			}

			s, err := newSession(cmd, nil)
			if err != nil {
				return err
			}
			if err := s.store.UpdateTaskStatus(cmd.Context(), planID, taskID, args[2]); err != nil {
				return fmt.Errorf("failed to update task %d: %w", taskID, err)
			}

			p := s.store.Snapshot().Selected
			if p == nil {
				return nil
			}
			if task := p.Task(taskID); task != nil {
				fmt.Fprintf(s.out, "Task #%d %s is now %s\n", task.ID, task.Name, task.Status.Label())
			}
			fmt.Fprintf(s.out, "Plan progress: %d%%\n", p.Progress)
			return nil
		},
	}
}
