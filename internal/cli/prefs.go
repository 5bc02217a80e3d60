package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/jobtracker/internal/prefs"
	"github.com/roach88/jobtracker/internal/record"
)

// PrefsView renders preferences.
type PrefsView record.Preferences

func (v PrefsView) String() string {
	email := "off"
	if v.EmailNotifications {
		email = "on"
	}
	return fmt.Sprintf("Match threshold: %d\nEmail notifications: %s", v.MatchThreshold, email)
}

// PrefsSetOptions holds flags for prefs set.
type PrefsSetOptions struct {
	*RootOptions
	Threshold int
	Email     bool
}

// NewPrefsCommand creates the prefs command with its show and set
// subcommands. Bare prefs shows.
func NewPrefsCommand(rootOpts *RootOptions) *cobra.Command {
	show := func(cmd *cobra.Command, args []string) error {
		s, err := rootOpts.openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		f := rootOpts.formatter(cmd)
		f.Session = s.tracker.Session()
		return f.Success(PrefsView(s.tracker.Preferences()))
	}

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change preferences",
		Long: `Show or change the match threshold and email notification preference.

Examples:
  jnt prefs
  jnt prefs set --threshold 60
  jnt prefs set --email=false`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          show,
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "show",
		Short:         "Show preferences",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          show,
	})
	cmd.AddCommand(newPrefsSetCommand(rootOpts))

	return cmd
}

func newPrefsSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PrefsSetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change preferences",
		Long: fmt.Sprintf(`Change one or both preferences. Each change is saved immediately.

The threshold must lie within %d..%d.`, prefs.MinThreshold, prefs.MaxThreshold),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefsSet(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Threshold, "threshold", prefs.DefaultMatchThreshold, "match threshold")
	cmd.Flags().BoolVar(&opts.Email, "email", prefs.DefaultEmailNotifications, "email notifications")

	return cmd
}

func runPrefsSet(opts *PrefsSetOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	setThreshold := cmd.Flags().Changed("threshold")
	setEmail := cmd.Flags().Changed("email")

	if !setThreshold && !setEmail {
		return f.Fail(ExitCommandError, ErrCodeInvalidInput, errors.New("nothing to set: use --threshold or --email"), nil)
	}
	if setThreshold && !prefs.ValidThreshold(opts.Threshold) {
		err := fmt.Errorf("threshold %d out of range %d..%d", opts.Threshold, prefs.MinThreshold, prefs.MaxThreshold)
		return f.Fail(ExitCommandError, ErrCodeInvalidInput, err, nil)
	}

	ctx := cmd.Context()
	s, err := opts.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	f.Session = s.tracker.Session()

	if setThreshold {
		if err := s.tracker.SetMatchThreshold(ctx, opts.Threshold); err != nil {
			return f.Fail(ExitFailure, ErrCodeStore, err, nil)
		}
	}
	if setEmail {
		if err := s.tracker.SetEmailNotifications(ctx, opts.Email); err != nil {
			return f.Fail(ExitFailure, ErrCodeStore, err, nil)
		}
	}

	return f.Success(PrefsView(s.tracker.Preferences()))
}
