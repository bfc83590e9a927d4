package plan

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/pablasso/smartplan/internal/api"
	"github.com/pablasso/smartplan/internal/client"
	"github.com/pablasso/smartplan/internal/config"
	"github.com/pablasso/smartplan/internal/display"
)

// session bundles what a command needs to talk to the planner API.
type session struct {
	api   *api.Client
	store *client.Store
	out   io.Writer
	// status is drawn only when stderr is a terminal.
	status *display.Display
}

// newSession builds the API client from config and flags. confirm may be nil
// for commands that never delete.
func newSession(cmd *cobra.Command, confirm client.Confirmer) (*session, error) {
	cfg, err := config.Load[config.Client]()
	if err != nil {
		return nil, err
	}
	if u, _ := cmd.Flags().GetString(FlagAPIURL); u != "" {
		cfg.APIURL = u
	}

	apiClient, err := api.New(cfg.APIURL)
	if err != nil {
		return nil, err
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	logger := log.New(io.Discard, "", 0)
	if verbose, _ := cmd.Flags().GetBool(FlagVerbose); verbose {
		logger = log.New(errOut, "smartplan: ", 0)
	}

	s := &session{api: apiClient, out: out}
	if display.IsTerminal(errOut) {
		s.status = display.New(errOut)
	}

	opts := []client.Option{
		client.WithLogger(logger),
		client.WithNotifier(client.NotifierFunc(func(n client.Notice) {
			s.stopStatus(n.Level)
			if n.Level == client.LevelError {
				fmt.Fprintln(errOut, n.Message)
				return
			}
			fmt.Fprintln(out, n.Message)
		})),
	}
	if confirm != nil {
		opts = append(opts, client.WithConfirmer(confirm))
	}

	s.store = client.New(apiClient, opts...)
	return s, nil
}

// startStatus shows label with a running clock until the next notice.
func (s *session) startStatus(label string) {
	if s.status != nil {
		s.status.Start(label)
	}
}

func (s *session) stopStatus(level client.Level) {
	if s.status == nil || !s.status.Active() {
		return
	}
	if level == client.LevelError {
		s.status.UpdateStatus(display.StatusFailed)
	} else {
		s.status.UpdateStatus(display.StatusCompleted)
	}
	s.status.Stop()
}
