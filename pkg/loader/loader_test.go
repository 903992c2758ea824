package loader_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/florandr/trialflow/pkg/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flankerYAML = `
name: flanker
post_trial_gap: 500ms
timeline:
  - plugin: instructions
    parameters:
      pages:
        - "# Welcome"
        - "Press F or J"
  - plugin: html-keyboard-response
    parameters:
      stimulus: "<<<<<"
      choices: [f, j]
    data:
      stimulus_type: congruent
    post_trial_gap: 1500
`

func TestParse_Experiment(t *testing.T) {
	exp, err := loader.Parse([]byte(flankerYAML))
	require.NoError(t, err)

	assert.Equal(t, "flanker", exp.Name)
	assert.Equal(t, 500*time.Millisecond, exp.PostTrialGap)
	require.Len(t, exp.Timeline, 2)

	first := exp.Timeline[0]
	assert.Equal(t, "instructions", first.Plugin)
	assert.Equal(t, []any{"# Welcome", "Press F or J"}, first.Parameters["pages"])
	assert.Nil(t, first.PostTrialGap)

	second := exp.Timeline[1]
	assert.Equal(t, "html-keyboard-response", second.Plugin)
	assert.Equal(t, "<<<<<", second.Parameters["stimulus"])
	assert.Equal(t, "congruent", second.Data["stimulus_type"])
	assert.Equal(t, 1500, second.PostTrialGap)
}

func TestParse_JSONIsAccepted(t *testing.T) {
	raw := `{"name":"rt","timeline":[{"plugin":"html-keyboard-response","parameters":{"stimulus":"+"}}]}`

	exp, err := loader.Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "rt", exp.Name)
	require.Len(t, exp.Timeline, 1)
	assert.Equal(t, "+", exp.Timeline[0].Parameters["stimulus"])
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty timeline", `name: empty`},
		{"missing plugin", "timeline:\n  - parameters:\n      stimulus: x"},
		{"bad gap", "post_trial_gap: soon\ntimeline:\n  - plugin: p"},
		{"bad trial gap", "timeline:\n  - plugin: p\n    post_trial_gap: [1]"},
		{"invalid yaml", `{{nope`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loader.Parse([]byte(tc.raw))
			assert.Error(t, err)
		})
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(flankerYAML), 0o644))

	exp, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "flanker", exp.Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := loader.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
