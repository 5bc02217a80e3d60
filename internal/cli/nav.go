package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/jobtracker/internal/tracker"
)

// NavView is the outcome of a navigation request.
type NavView struct {
	tracker.Navigation
	Notifications notificationList `json:"notifications"`
}

func (v NavView) String() string {
	if v.Allowed {
		return fmt.Sprintf("→ %s", v.Route)
	}
	return fmt.Sprintf("%s\nStaying on %s", v.Notifications, v.Route)
}

// NewNavCommand creates the nav command.
func NewNavCommand(rootOpts *RootOptions) *cobra.Command {
	routes := tracker.Routes()
	names := make([]string, len(routes))
	for i, r := range routes {
		names[i] = string(r)
	}

	return &cobra.Command{
		Use:   "nav <route>",
		Short: "Check whether a route can be opened",
		Long: fmt.Sprintf(`Request a route of the tracker menu.

Routes: %v

The ship route is refused with a warning until every checklist test has
passed. A refusal is reported, not treated as an error.`, names),
		Args:          cobra.ExactArgs(1),
		ValidArgs:     names,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNav(rootOpts, cmd, args[0])
		},
	}
}

func runNav(opts *RootOptions, cmd *cobra.Command, route string) error {
	f := opts.formatter(cmd)
	if _, err := tracker.ParseRoute(route); err != nil {
		return f.Fail(ExitFailure, ErrCodeUnknownRoute, err, nil)
	}

	s, err := opts.openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()
	f.Session = s.tracker.Session()

	nav, err := s.tracker.Navigate(route)
	if errors.Is(err, tracker.ErrUnknownRoute) {
		return f.Fail(ExitFailure, ErrCodeUnknownRoute, err, nil)
	}
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, err, nil)
	}

	return f.Success(NavView{Navigation: nav, Notifications: s.notes.Recent()})
}
