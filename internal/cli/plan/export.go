package plan

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pablasso/smartplan/internal/plan"
)

func newExportCmd() *cobra.Command {
	var (
		output  string
		urlOnly bool
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Download a plan as CSV",
		Long:  `Save the plan's CSV export to task_plan_<id>.csv, a chosen file, or stdout with --output -.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			s, err := newSession(cmd, nil)
			if err != nil {
				return err
			}

			if urlOnly {
				fmt.Fprintln(s.out, s.store.ExportURL(id))
				return nil
			}

			if output == "-" {
				return s.store.Export(cmd.Context(), id, s.out)
			}
			if output == "" {
				output = plan.ExportFileName(id)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := s.store.Export(cmd.Context(), id, f); err != nil {
				f.Close()
				os.Remove(output)
				return fmt.Errorf("failed to export plan %s: %w", id, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Saved %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write, or - for stdout (default task_plan_<id>.csv)")
	cmd.Flags().BoolVar(&urlOnly, "url", false, "Print the download URL instead of downloading")
	return cmd
}
