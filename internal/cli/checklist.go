package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/jobtracker/internal/checklist"
)

// NewCheckCommand creates the check command, or uncheck when passed is false.
func NewCheckCommand(rootOpts *RootOptions, passed bool) *cobra.Command {
	use, short, verb := "check", "Mark checklist tests as passed", "check"
	if !passed {
		use, short, verb = "uncheck", "Mark checklist tests as not passed", "uncheck"
	}

	return &cobra.Command{
		Use:   use + " <test-id>...",
		Short: short,
		Long: fmt.Sprintf(`%s.

Test ids: %s

Every id is validated before anything is written; an unknown id changes
nothing and exits with code 1.

Example:
  jnt %s preferences match-score`, short, strings.Join(checklist.IDs(), ", "), verb),
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd, args, passed)
		},
	}
}

func runCheck(opts *RootOptions, cmd *cobra.Command, ids []string, passed bool) error {
	f := opts.formatter(cmd)
	for _, id := range ids {
		if !checklist.IsKnown(id) {
			err := fmt.Errorf("%w: %q", checklist.ErrUnknownTest, id)
			return f.Fail(ExitFailure, ErrCodeUnknownTest, err, map[string]any{"known": checklist.IDs()})
		}
	}

	ctx := cmd.Context()
	s, err := opts.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	f.Session = s.tracker.Session()

	for _, id := range ids {
		if err := s.tracker.SetTestResult(ctx, id, passed); err != nil {
			return f.Fail(ExitFailure, ErrCodeStore, err, nil)
		}
		f.VerboseLog("%s: passed=%t", id, passed)
	}

	snap := s.tracker.Snapshot()
	return f.Success(newChecklistView(snap.Checklist, snap.Summary, snap.Gate))
}

// ResetOptions holds flags for the reset command.
type ResetOptions struct {
	*RootOptions
	Yes bool
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Mark every checklist test as not passed",
		Long: `Mark every checklist test as not passed and relock shipping.

Asks for confirmation unless --yes is given.

Examples:
  jnt reset
  jnt reset --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(opts, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "reset without asking")

	return cmd
}

func runReset(opts *ResetOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	if !opts.Yes && !confirm(cmd, "Reset all checklist tests? [y/N]: ") {
		fmt.Fprintln(f.GetErrWriter(), "Reset cancelled.")
		return nil
	}

	ctx := cmd.Context()
	s, err := opts.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	f.Session = s.tracker.Session()

	if err := s.tracker.ResetAll(ctx); err != nil {
		return f.Fail(ExitFailure, ErrCodeStore, err, nil)
	}

	snap := s.tracker.Snapshot()
	return f.Success(newChecklistView(snap.Checklist, snap.Summary, snap.Gate))
}

// confirm asks a yes/no question on stderr and reads the answer from stdin.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
