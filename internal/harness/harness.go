package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/jobtracker/internal/digest"
	"github.com/roach88/jobtracker/internal/notify"
	"github.com/roach88/jobtracker/internal/store"
	"github.com/roach88/jobtracker/internal/testutil"
	"github.com/roach88/jobtracker/internal/tracker"
)

// Harness drives one scenario run.
type Harness struct {
	store    *store.Store
	tracker  *tracker.Tracker
	notes    *notify.Log
	clock    *testutil.Clock
	source   digest.Source
	logger   *slog.Logger
	sessions int
}

// Run executes a scenario in a fresh in-memory store and returns its
// result. An error is returned only when the run itself cannot proceed;
// failed expectations and assertions are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	start, err := scenario.StartTime()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		clock:  testutil.NewClock(start),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	if scenario.Catalog != "" {
		c, err := digest.ParseCatalog([]byte(scenario.Catalog), scenario.Name+".cue")
		if err != nil {
			return nil, fmt.Errorf("scenario catalog: %w", err)
		}
		h.source = c
	}

	ctx := context.Background()
	for key, value := range scenario.Seed {
		if err := st.Set(ctx, key, []byte(value)); err != nil {
			return nil, fmt.Errorf("seed %s: %w", key, err)
		}
	}

	if err := h.open(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = h.tracker.Close() }()

	result := NewResult(scenario.Name)
	for i, step := range scenario.Steps {
		if err := h.execute(ctx, i, step, result); err != nil {
			return nil, err
		}
	}

	snap := h.tracker.Snapshot()
	result.Final = Final{
		Passed: snap.Summary.Passed,
		Gate:   snap.Gate.String(),
		Route:  string(snap.Route),
	}

	for _, msg := range EvaluateAssertions(ctx, h, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// open starts a new tracker session over the harness store.
func (h *Harness) open(ctx context.Context) error {
	h.sessions++
	h.notes = notify.NewLog(notify.DefaultLimit, h.logger)
	opts := []tracker.Option{
		tracker.WithNow(h.clock.Now),
		tracker.WithLogger(h.logger),
		tracker.WithNotifier(h.notes),
		tracker.WithDigestDelay(0),
		tracker.WithSessionIDs(tracker.NewFixedGenerator(fmt.Sprintf("scenario-session-%d", h.sessions))),
	}
	if h.source != nil {
		opts = append(opts, tracker.WithDigestSource(h.source))
	}

	tr, err := tracker.New(ctx, h.store, opts...)
	if err != nil {
		return fmt.Errorf("failed to start tracker: %w", err)
	}
	h.tracker = tr
	return nil
}

// execute runs one step, records it in the trace and checks its
// expectation. Only harness failures are returned as errors.
func (h *Harness) execute(ctx context.Context, index int, step Step, result *Result) error {
	outcome := OutcomeOK
	var stepErr error
	var allowed *bool

	tr := h.tracker
	switch step.Action {
	case ActionSetTest:
		stepErr = tr.SetTestResult(ctx, step.ID, *step.Passed)
	case ActionReset:
		stepErr = tr.ResetAll(ctx)
	case ActionSetThreshold:
		stepErr = tr.SetMatchThreshold(ctx, *step.Value)
	case ActionSetEmail:
		stepErr = tr.SetEmailNotifications(ctx, *step.Enabled)
	case ActionGenerateDigest:
		res := <-tr.GenerateDigest(ctx)
		stepErr = res.Err
	case ActionNavigate:
		var nav tracker.Navigation
		nav, stepErr = tr.Navigate(step.Route)
		if stepErr == nil {
			allowed = &nav.Allowed
			if !nav.Allowed {
				outcome = OutcomeRefused
			}
		}
	case ActionSaveJob:
		tr.SaveJob(step.Title)
	case ActionSetJobStatus:
		stepErr = tr.SetJobStatus(step.Title, step.Status)
	case ActionApplyFilters:
		stepErr = tr.ApplyFilters(step.ShowOnlyMatches, step.Status)
	case ActionAdvanceDays:
		h.clock.AdvanceDays(step.Days)
	case ActionReload:
		if err := tr.Close(); err != nil {
			return fmt.Errorf("steps[%d]: close tracker: %w", index, err)
		}
		if err := h.open(ctx); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, step.Action)
	}

	if stepErr != nil {
		outcome = "error: " + errorKind(stepErr)
	}
	result.addTrace(step.Action, outcome)

	for _, msg := range checkExpect(index, step, stepErr, allowed) {
		result.AddError(msg)
	}
	return nil
}

// errorKind names err by its sentinel, or returns its message.
func errorKind(err error) string {
	for kind, sentinel := range ErrorKinds {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return err.Error()
}

func checkExpect(index int, step Step, err error, allowed *bool) []string {
	var errs []string
	wantErr := ""
	if step.Expect != nil {
		wantErr = step.Expect.Error
	}

	switch {
	case wantErr == "" && err != nil:
		errs = append(errs, fmt.Sprintf("steps[%d] %s: unexpected error: %v", index, step.Action, err))
	case wantErr != "" && err == nil:
		errs = append(errs, fmt.Sprintf("steps[%d] %s: expected error %s, got none", index, step.Action, wantErr))
	case wantErr != "" && !errors.Is(err, ErrorKinds[wantErr]):
		errs = append(errs, fmt.Sprintf("steps[%d] %s: expected error %s, got %v", index, step.Action, wantErr, err))
	}

	if step.Expect != nil && step.Expect.Allowed != nil {
		switch {
		case allowed == nil:
			errs = append(errs, fmt.Sprintf("steps[%d] %s: expected allowed=%t, step did not navigate", index, step.Action, *step.Expect.Allowed))
		case *allowed != *step.Expect.Allowed:
			errs = append(errs, fmt.Sprintf("steps[%d] %s: expected allowed=%t, got %t", index, step.Action, *step.Expect.Allowed, *allowed))
		}
	}
	return errs
}
