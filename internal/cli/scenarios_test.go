package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: unlock-one
description: one passing test keeps the gate locked
steps:
  - {action: set_test, id: preferences, passed: true}
  - action: navigate
    route: ship
    expect: {allowed: false}
assertions:
  - {type: passed_count, count: 1}
  - {type: gate, state: LOCKED}
`

const failingScenario = `
name: wrong-count
description: asserts a count that does not hold
steps:
  - {action: reset}
assertions:
  - {type: passed_count, count: 4}
`

func writeScenarioFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func runScenariosCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	isolateEnv(t)
	stdout, _, err := execute(t, &RootOptions{}, "", append([]string{"scenarios"}, args...)...)
	return stdout, err
}

func TestScenarios_MissingArgs(t *testing.T) {
	_, err := runScenariosCLI(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestScenarios_MissingDir(t *testing.T) {
	_, err := runScenariosCLI(t, "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestScenarios_EmptyDir(t *testing.T) {
	dir := t.TempDir()

	out, err := runScenariosCLI(t, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestScenarios_EmptyDirJSON(t *testing.T) {
	dir := t.TempDir()

	out, err := runScenariosCLI(t, dir, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   ScenariosResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Total)
	assert.Empty(t, resp.Data.Scenarios)
}

func TestScenarios_HarnessSuite(t *testing.T) {
	dir, err := filepath.Abs("../harness/testdata/scenarios")
	require.NoError(t, err)
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	out, err := runScenariosCLI(t, dir, "--format", "json")
	require.NoError(t, err, out)

	var resp struct {
		Data ScenariosResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, len(files), resp.Data.Total)
	assert.Equal(t, len(files), resp.Data.Passed)
	assert.Zero(t, resp.Data.Failed)
}

func TestScenarios_Failure(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "pass.yaml", passingScenario)
	writeScenarioFile(t, dir, "fail.yaml", failingScenario)

	out, err := runScenariosCLI(t, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ unlock-one")
	assert.Contains(t, out, "✗ wrong-count")
	assert.Contains(t, out, "expected 4 passed, got 0")
	assert.Contains(t, out, "Scenarios: 1 passed, 1 failed, 2 total")
	assert.True(t, IsReported(err))
}

func TestScenarios_LoadError(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "broken.yml", "name: broken\nsteps: [")

	out, err := runScenariosCLI(t, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ broken.yml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestScenarios_Filter(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "pass.yaml", passingScenario)
	writeScenarioFile(t, dir, "fail.yaml", failingScenario)

	out, err := runScenariosCLI(t, dir, "--filter", "pa*")
	require.NoError(t, err)
	assert.Contains(t, out, "Scenarios: 1 passed, 0 failed, 1 total")
}

func TestScenarios_Golden(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "pass.yaml", passingScenario)
	golden := filepath.Join(dir, "golden", "unlock-one.golden")

	out, err := runScenariosCLI(t, dir, "--update")
	require.NoError(t, err, out)

	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Equal(t,
		`{"final":{"gate":"LOCKED","passed":1,"route":"dashboard"},"scenario":"unlock-one","trace":[{"action":"set_test","outcome":"ok","seq":1},{"action":"navigate","outcome":"refused","seq":2}]}`,
		string(data))

	_, err = runScenariosCLI(t, dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(golden, []byte(`{"trace":[]}`), 0644))
	out, err = runScenariosCLI(t, dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}
