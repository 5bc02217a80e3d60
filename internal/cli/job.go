package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/jobtracker/internal/record"
	"github.com/roach88/jobtracker/internal/tracker"
)

// JobList renders the stored job list.
type JobList []record.Job

func (l JobList) String() string {
	if len(l) == 0 {
		return "No saved jobs."
	}
	var b strings.Builder
	for i, j := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-24s %-14s %3d", j.Title, j.Company, j.Score)
	}
	return b.String()
}

// JobFilterOptions holds flags for job filter.
type JobFilterOptions struct {
	*RootOptions
	Matches bool
	Status  string
}

// NewJobCommand creates the job command and its subcommands.
func NewJobCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Job list actions",
		Long: `Acknowledge job list actions.

Saving a job, changing its status and applying filters raise a notification;
none of them change stored state.

Examples:
  jnt job list
  jnt job save "Frontend Engineer"
  jnt job status "Frontend Engineer" applied
  jnt job filter --matches --status applied`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List stored jobs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			f := rootOpts.formatter(cmd)
			f.Session = s.tracker.Session()
			return f.Success(JobList(s.tracker.Jobs()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "save <title>",
		Short:         "Save a job",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobAction(rootOpts, cmd, func(tr *tracker.Tracker) error {
				tr.SaveJob(args[0])
				return nil
			})
		},
	})

	statuses := make([]string, 0, 4)
	for _, st := range tracker.Statuses() {
		statuses = append(statuses, string(st))
	}
	cmd.AddCommand(&cobra.Command{
		Use:           "status <title> <status>",
		Short:         fmt.Sprintf("Change a job's status (%s)", strings.Join(statuses, ", ")),
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobAction(rootOpts, cmd, func(tr *tracker.Tracker) error {
				return tr.SetJobStatus(args[0], args[1])
			})
		},
	})

	filterOpts := &JobFilterOptions{RootOptions: rootOpts}
	filter := &cobra.Command{
		Use:           "filter",
		Short:         "Apply job list filters",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobAction(rootOpts, cmd, func(tr *tracker.Tracker) error {
				return tr.ApplyFilters(filterOpts.Matches, filterOpts.Status)
			})
		},
	}
	filter.Flags().BoolVar(&filterOpts.Matches, "matches", false, "show only jobs above the match threshold")
	filter.Flags().StringVar(&filterOpts.Status, "status", tracker.StatusAll, "status to show, or all")
	cmd.AddCommand(filter)

	return cmd
}

func runJobAction(opts *RootOptions, cmd *cobra.Command, action func(*tracker.Tracker) error) error {
	s, err := opts.openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	f := opts.formatter(cmd)
	f.Session = s.tracker.Session()
	if err := action(s.tracker); err != nil {
		return f.Fail(ExitFailure, ErrCodeUnknownStatus, err, map[string]any{"statuses": tracker.Statuses()})
	}
	return f.Success(notificationList(s.notes.Recent()))
}
