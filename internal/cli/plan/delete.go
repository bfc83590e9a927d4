package plan

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pablasso/smartplan/internal/client"
)

func newDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a plan",
		Long:  `Delete a plan and its tasks. Asks for confirmation unless --yes is given.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				confirm = client.ConfirmFunc(func(string) bool { return true })
			}

			s, err := newSession(cmd, confirm)
			if err != nil {
				return err
			}

			err = s.store.Delete(cmd.Context(), args[0])
			switch {
			case errors.Is(err, client.ErrDeleteDeclined):
				fmt.Fprintln(s.out, "Aborted.")
				return nil
			case err != nil:
				return fmt.Errorf("failed to delete plan %s: %w", args[0], err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking for confirmation")
	return cmd
}

// promptConfirmer asks on out and reads a y/N answer from in. Anything
// other than y or yes declines.
func promptConfirmer(in io.Reader, out io.Writer) client.Confirmer {
	return client.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	})
}
