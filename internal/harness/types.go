package harness

import (
	"github.com/roach88/jobtracker/internal/checklist"
	"github.com/roach88/jobtracker/internal/digest"
	"github.com/roach88/jobtracker/internal/tracker"
)

// ErrorKinds maps the error names usable in Expect.Error to sentinels.
var ErrorKinds = map[string]error{
	"unknown_test":   checklist.ErrUnknownTest,
	"unknown_route":  tracker.ErrUnknownRoute,
	"unknown_status": tracker.ErrUnknownStatus,
	"short_digest":   digest.ErrShortDigest,
	"not_ranked":     digest.ErrNotRanked,
}

// Step outcomes recorded in the trace.
const (
	OutcomeOK      = "ok"
	OutcomeRefused = "refused"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int    `json:"seq"`
	Action  string `json:"action"`
	Outcome string `json:"outcome"`
}

// Final is the derived state after the last step.
type Final struct {
	Passed int    `json:"passed"`
	Gate   string `json:"gate"`
	Route  string `json:"route"`
}

// Result is the outcome of running a scenario.
type Result struct {
	Name   string       `json:"name"`
	Pass   bool         `json:"pass"`
	Trace  []TraceEvent `json:"trace"`
	Final  Final        `json:"final"`
	Errors []string     `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult(name string) *Result {
	return &Result{
		Name:   name,
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) addTrace(action, outcome string) {
	r.Trace = append(r.Trace, TraceEvent{Seq: len(r.Trace) + 1, Action: action, Outcome: outcome})
}
