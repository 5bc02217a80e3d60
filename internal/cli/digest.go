package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/jobtracker/internal/digest"
	"github.com/roach88/jobtracker/internal/server"
)

// DigestResult is today's digest, if any.
type DigestResult struct {
	Present bool               `json:"present"`
	Digest  *server.DigestView `json:"digest,omitempty"`
}

func (r DigestResult) String() string {
	if !r.Present {
		return "No digest for today. Run `jnt digest generate`."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Daily digest for %s\n", r.Digest.GeneratedOn)
	for i, e := range r.Digest.Entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%2d. %-24s %-14s %3d", e.Rank, e.Title, e.Company, e.Score)
	}
	return b.String()
}

// NewDigestCommand creates the digest command. Bare digest shows.
func NewDigestCommand(rootOpts *RootOptions) *cobra.Command {
	show := func(cmd *cobra.Command, args []string) error {
		s, err := rootOpts.openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		f := rootOpts.formatter(cmd)
		f.Session = s.tracker.Session()
		return f.Success(currentDigest(s))
	}

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Show or generate the daily digest",
		Long: `Show today's digest, or generate a new one.

A digest is only shown on the calendar day it was generated. Generation
takes --delay (JNT_DIGEST_DELAY) and replaces the stored digest.

Examples:
  jnt digest
  jnt digest generate
  jnt digest generate --delay 0`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          show,
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "show",
		Short:         "Show today's digest",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          show,
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "generate",
		Short:         "Generate today's digest and wait for it",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigestGenerate(rootOpts, cmd)
		},
	})

	return cmd
}

func currentDigest(s *session) DigestResult {
	d, ok := s.tracker.CurrentDigest()
	if !ok {
		return DigestResult{}
	}
	view := server.RankDigest(d)
	return DigestResult{Present: true, Digest: &view}
}

func runDigestGenerate(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	s, err := opts.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	f := opts.formatter(cmd)
	f.Session = s.tracker.Session()
	f.VerboseLog("Generating digest (delay %s)...", opts.Delay)

	results := s.tracker.GenerateDigest(ctx)
	select {
	case res := <-results:
		if res.Err != nil {
			details := map[string]any{"seq": res.Seq}
			if errors.Is(res.Err, digest.ErrNotRanked) || errors.Is(res.Err, digest.ErrShortDigest) {
				details["catalog"] = opts.Catalog
			}
			return f.Fail(ExitFailure, ErrCodeDigestFailed, res.Err, details)
		}
	case <-ctx.Done():
		return WrapExitError(ExitFailure, "digest generation interrupted", ctx.Err())
	}

	return f.Success(currentDigest(s))
}
