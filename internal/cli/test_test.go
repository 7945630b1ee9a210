package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// copyScenarios copies the testdata scenarios into a temp dir so golden
// files can be written without touching the repository.
func copyScenarios(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	entries, err := os.ReadDir(scenariosDir)
	require.NoError(t, err)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(scenariosDir, e.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, e.Name()), data, 0644))
	}
	return dir
}

func TestTestCommandScenariosPass(t *testing.T) {
	out, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), specsDir, scenariosDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ fade")
	assert.Contains(t, out, "✓ slide_cancel")
	assert.Contains(t, out, "Test Summary: 2 passed, 0 failed, 2 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandJSON(t *testing.T) {
	out, _, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), specsDir, scenariosDir)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Passed)
	require.Len(t, resp.Data.Scenarios, 2)
	assert.Equal(t, "FINISHED", resp.Data.Scenarios[0].State)
	assert.Equal(t, "CANCELLED", resp.Data.Scenarios[1].State)
}

func TestTestCommandUpdateThenMatchGolden(t *testing.T) {
	dir := copyScenarios(t)

	out, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), specsDir, dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ fade (golden updated)")
	require.FileExists(t, filepath.Join(dir, "golden", "fade.golden"))
	require.FileExists(t, filepath.Join(dir, "golden", "slide_cancel.golden"))

	out, _, err = execute(t, NewTestCommand(&RootOptions{Format: "text"}), specsDir, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 2 passed, 0 failed, 2 total")
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	dir := copyScenarios(t)
	golden := filepath.Join(dir, "golden", "fade.golden")
	require.NoError(t, os.MkdirAll(filepath.Dir(golden), 0755))
	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0644))

	out, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), specsDir, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ fade")
	assert.Contains(t, out, "trace does not match golden file")
	assert.Contains(t, out, "✓ slide_cancel")
}

func TestTestCommandFailingAssertionJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(`name: wrong
description: Expects more ticks than fade delivers
tween: fade
assertions:
  - type: tick_count
    count: 9
`), 0644))

	out, _, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), specsDir, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.False(t, resp.Data.Scenarios[0].Pass)
	assert.NotEmpty(t, resp.Data.Scenarios[0].Errors)
}

func TestTestCommandFilter(t *testing.T) {
	out, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), specsDir, scenariosDir, "--filter", "slide_*")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ slide_cancel")
	assert.NotContains(t, out, "✓ fade")
	assert.Contains(t, out, "1 total")

	out, _, err = execute(t, NewTestCommand(&RootOptions{Format: "text"}), specsDir, scenariosDir, "--filter", "spin*")
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandMissingDirectories(t *testing.T) {
	_, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), specsDir, "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")

	_, _, err = execute(t, NewTestCommand(&RootOptions{Format: "text"}), "/nonexistent/specs", scenariosDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "specs directory not found")
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yml", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("name: x\n"), 0644))
	}

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles(dir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("scenarios", "golden", "fade.golden"), goldenFilePath(filepath.Join("scenarios", "fade.yaml")))
	assert.Equal(t, filepath.Join("golden", "slide.golden"), goldenFilePath("slide.yml"))
}
