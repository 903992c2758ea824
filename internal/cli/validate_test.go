package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/florandr/trialflow/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExperiment(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateExperiment_Valid(t *testing.T) {
	path := writeExperiment(t, `
name: flanker
timeline:
  - plugin: html-keyboard-response
    parameters:
      stimulus: "<<<<<"
      choices: ["f", "j"]
`)

	assert.NoError(t, ValidateExperiment(path))
}

func TestValidateExperiment_ReportsEveryFailure(t *testing.T) {
	path := writeExperiment(t, `
name: broken
timeline:
  - plugin: no-such-plugin
    parameters: {}
  - plugin: html-keyboard-response
    parameters:
      stimulus: 42
`)

	err := ValidateExperiment(path)
	require.Error(t, err)

	failures := schema.ValidationErrors(err)
	require.Len(t, failures, 2)
	assert.Contains(t, failures[0].Error(), "timeline[0]")
	assert.Contains(t, failures[1].Error(), "timeline[1]")
	assert.Contains(t, failures[1].Error(), "stimulus")
}
