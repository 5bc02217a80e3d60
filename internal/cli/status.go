package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/jobtracker/internal/checklist"
	"github.com/roach88/jobtracker/internal/record"
	"github.com/roach88/jobtracker/internal/server"
	"github.com/roach88/jobtracker/internal/store"
	"github.com/roach88/jobtracker/internal/tracker"
)

// TestView is one checklist line.
type TestView struct {
	ID     string `json:"id"`
	Passed bool   `json:"passed"`
}

// ChecklistView is the checklist in display order with its progress.
type ChecklistView struct {
	Tests   []TestView          `json:"tests"`
	Summary checklist.Summary   `json:"summary"`
	Gate    checklist.GateState `json:"gate"`
}

func newChecklistView(state record.ChecklistState, summary checklist.Summary, gate checklist.GateState) ChecklistView {
	ids := checklist.IDs()
	v := ChecklistView{Tests: make([]TestView, len(ids)), Summary: summary, Gate: gate}
	for i, id := range ids {
		v.Tests[i] = TestView{ID: id, Passed: state[id]}
	}
	return v
}

func (v ChecklistView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tests: %d/%d passed (%d%%)\n", v.Summary.Passed, v.Summary.Total, v.Summary.Percent)
	for _, t := range v.Tests {
		mark := " "
		if t.Passed {
			mark = "x"
		}
		fmt.Fprintf(&b, "  [%s] %s\n", mark, t.ID)
	}
	fmt.Fprintf(&b, "%s\nShip: %s", v.Summary.Message, v.Gate)
	return b.String()
}

// RecordView is one raw store row, shown by status --verbose.
type RecordView struct {
	Key       string    `json:"key"`
	Revision  int64     `json:"revision"`
	UpdatedAt time.Time `json:"updatedAt"`
	Bytes     int       `json:"bytes"`
}

func newRecordViews(entries []store.Entry) []RecordView {
	out := make([]RecordView, len(entries))
	for i, e := range entries {
		out[i] = RecordView{
			Key:       e.Key,
			Revision:  e.Revision,
			UpdatedAt: time.UnixMilli(e.UpdatedAt).UTC(),
			Bytes:     len(e.Value),
		}
	}
	return out
}

// StatusView is the whole session state.
type StatusView struct {
	Session       string             `json:"session"`
	Checklist     ChecklistView      `json:"checklist"`
	Preferences   PrefsView          `json:"preferences"`
	Digest        *server.DigestView `json:"digest"`
	DigestPending bool               `json:"digestPending"`
	Records       []RecordView       `json:"records,omitempty"`
}

func newStatusView(snap tracker.Snapshot) StatusView {
	v := StatusView{
		Session:       snap.Session,
		Checklist:     newChecklistView(snap.Checklist, snap.Summary, snap.Gate),
		Preferences:   PrefsView(snap.Preferences),
		DigestPending: snap.DigestPending,
	}
	if snap.Digest != nil {
		d := server.RankDigest(*snap.Digest)
		v.Digest = &d
	}
	return v
}

func (v StatusView) String() string {
	digest := "none for today"
	if v.Digest != nil {
		digest = fmt.Sprintf("%d entries, generated %s", len(v.Digest.Entries), v.Digest.GeneratedOn)
	}
	out := fmt.Sprintf("%s\n%s\nDigest: %s", v.Checklist, v.Preferences, digest)
	if v.Records == nil {
		return out
	}

	var b strings.Builder
	b.WriteString(out)
	b.WriteString("\nRecords:")
	if len(v.Records) == 0 {
		b.WriteString(" none stored")
	}
	for _, r := range v.Records {
		fmt.Fprintf(&b, "\n  %-16s rev %-3d %5d bytes  updated %s", r.Key, r.Revision, r.Bytes, r.UpdatedAt.Format(time.RFC3339))
	}
	return b.String()
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show checklist, ship gate, preferences and digest",
		Long: `Show the stored tracker state: every checklist test, the ship gate,
preferences and whether a digest has been generated today.

With --verbose, also list the raw store records with their revision and
last update time.

Examples:
  jnt status
  jnt status --verbose
  jnt status --format json`,
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
			view := newStatusView(s.tracker.Snapshot())
			if rootOpts.Verbose {
				entries, err := s.store.Entries(cmd.Context())
				if err != nil {
					return f.Fail(ExitFailure, ErrCodeStore, err, nil)
				}
				view.Records = newRecordViews(entries)
			}
			return f.Success(view)
		},
	}
}
