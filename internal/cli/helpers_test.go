package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tween/internal/tween"
)

const (
	specsDir     = "testdata/specs"
	scenariosDir = "testdata/scenarios"
)

// execute runs cmd with args and returns stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// writeSpec writes a CUE file into a fresh specs directory and returns it.
func writeSpec(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spec.cue"), []byte(content), 0644))
	return dir
}

// outputCommand captures output for direct calls into run helpers.
func outputCommand() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	return cmd, buf
}

// recordRuns runs each named definition from testdata/specs on a simulated
// clock into a new database under fixed run IDs, one run per call.
func recordRuns(t *testing.T, runs map[string]string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tween.db")
	for id, name := range runs {
		cmd, _ := outputCommand()
		opts := &RunOptions{
			RootOptions: &RootOptions{Format: "text"},
			Database:    dbPath,
			Simulate:    true,
			IDGenerator: tween.NewFixedGenerator(id),
		}
		require.NoError(t, runTweens(opts, specsDir, []string{name}, cmd))
	}
	return dbPath
}
