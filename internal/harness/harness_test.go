package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func TestRun_Scenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Trace, len(scenario.Steps))
		})
	}
}

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "one passing test",
		Steps: []Step{
			{Action: ActionSetTest, ID: "preferences", Passed: boolPtr(true)},
		},
		Assertions: []Assertion{
			{Type: AssertPassedCount, Count: intPtr(1)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []TraceEvent{{Seq: 1, Action: ActionSetTest, Outcome: OutcomeOK}}, result.Trace)
	assert.Equal(t, Final{Passed: 1, Gate: "LOCKED", Route: "dashboard"}, result.Final)
}

func TestRun_ReportsFailedAssertions(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong",
		Description: "assertions that do not hold",
		Steps: []Step{
			{Action: ActionReset},
		},
		Assertions: []Assertion{
			{Type: AssertPassedCount, Count: intPtr(3)},
			{Type: AssertGate, State: "UNLOCKED"},
			{Type: AssertNotification, Message: "never raised"},
			{Type: AssertStored, Key: "jnt_digest"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "expected 3 passed, got 0")
	assert.Contains(t, result.Errors[1], "expected gate UNLOCKED, got LOCKED")
	assert.Contains(t, result.Errors[2], `no any notification containing "never raised"`)
	assert.Contains(t, result.Errors[3], "expected jnt_digest stored, not found")
}

func TestRun_UnexpectedStepError(t *testing.T) {
	scenario := &Scenario{
		Name:        "typo",
		Description: "unknown test id without an expectation",
		Steps: []Step{
			{Action: ActionSetTest, ID: "deploy", Passed: boolPtr(true)},
		},
		Assertions: []Assertion{
			{Type: AssertPassedCount, Count: intPtr(0)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected error")
	assert.Equal(t, "error: unknown_test", result.Trace[0].Outcome)
}

func TestRun_ExpectationMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "expectations that do not hold",
		Steps: []Step{
			{Action: ActionNavigate, Route: "ship", Expect: &Expect{Allowed: boolPtr(true)}},
			{Action: ActionReset, Expect: &Expect{Error: "unknown_test"}},
			{Action: ActionReset, Expect: &Expect{Allowed: boolPtr(false)}},
		},
		Assertions: []Assertion{
			{Type: AssertRoute, Route: "dashboard"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "expected allowed=true, got false")
	assert.Contains(t, result.Errors[1], "expected error unknown_test, got none")
	assert.Contains(t, result.Errors[2], "step did not navigate")
	assert.Equal(t, OutcomeRefused, result.Trace[0].Outcome)
}

func TestRun_InvalidCatalog(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_catalog",
		Description: "catalog with an out of range score",
		Catalog:     `entries: [{title: "A", company: "Co", score: 101}]`,
		Steps:       []Step{{Action: ActionGenerateDigest}},
		Assertions:  []Assertion{{Type: AssertDigest, Present: boolPtr(false)}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario catalog")
}

func TestRun_ShortCatalog(t *testing.T) {
	scenario := &Scenario{
		Name:        "short_catalog",
		Description: "catalog with fewer entries than a digest needs",
		Catalog:     `entries: [{title: "A", company: "Co", score: 90}, {title: "B", company: "Co", score: 80}]`,
		Steps: []Step{
			{Action: ActionGenerateDigest, Expect: &Expect{Error: "short_digest"}},
		},
		Assertions: []Assertion{
			{Type: AssertDigest, Present: boolPtr(false)},
			{Type: AssertNotification, Level: "error", Message: "too few entries"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}
