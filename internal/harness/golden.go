package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/jobtracker/internal/record"
)

// TraceSnapshot is the golden-file form of a run.
type TraceSnapshot struct {
	Scenario string       `json:"scenario"`
	Trace    []TraceEvent `json:"trace"`
	Final    Final        `json:"final"`
}

// Snapshot returns the canonical JSON form of a result.
func Snapshot(result *Result) ([]byte, error) {
	return record.Encode(TraceSnapshot{
		Scenario: result.Name,
		Trace:    result.Trace,
		Final:    result.Final,
	})
}

// RunWithGolden runs a scenario and compares its trace with
// testdata/golden/{scenario.Name}.golden. Regenerate with
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot, err := Snapshot(result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapshot)
	return result, nil
}
