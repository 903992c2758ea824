// Package loader reads experiment definitions from YAML (or JSON) files
// and turns them into runnable timelines. Files describe only static
// parameters; dynamic ones are attached in code after loading.
package loader

import (
	"fmt"
	"os"
	"time"

	"github.com/florandr/trialflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Experiment is a loaded experiment definition.
type Experiment struct {
	Name         string
	PostTrialGap time.Duration
	Timeline     []*domain.TrialSpec
}

// experimentFile is the on-disk shape. It uses "mapstructure" tags to
// match the YAML keys after the generic unmarshal.
type experimentFile struct {
	Name         string       `mapstructure:"name"`
	PostTrialGap any          `mapstructure:"post_trial_gap"`
	Timeline     []trialEntry `mapstructure:"timeline"`
}

type trialEntry struct {
	Plugin       string         `mapstructure:"plugin"`
	Parameters   map[string]any `mapstructure:"parameters"`
	Data         map[string]any `mapstructure:"data"`
	PostTrialGap any            `mapstructure:"post_trial_gap"`
}

// Load reads and parses an experiment file. YAML and JSON are both
// accepted (JSON is a YAML subset).
func Load(path string) (*Experiment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment file: %w", err)
	}
	exp, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return exp, nil
}

// Parse parses an experiment definition from raw YAML or JSON bytes.
func Parse(raw []byte) (*Experiment, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}

	var file experimentFile
	if err := mapstructure.Decode(doc, &file); err != nil {
		return nil, fmt.Errorf("invalid experiment structure: %w", err)
	}

	if len(file.Timeline) == 0 {
		return nil, fmt.Errorf("experiment has no timeline")
	}

	exp := &Experiment{Name: file.Name}

	if file.PostTrialGap != nil {
		gap, err := domain.DurationValue(file.PostTrialGap)
		if err != nil {
			return nil, fmt.Errorf("invalid post_trial_gap: %w", err)
		}
		exp.PostTrialGap = gap
	}

	exp.Timeline = make([]*domain.TrialSpec, 0, len(file.Timeline))
	for i, entry := range file.Timeline {
		if entry.Plugin == "" {
			return nil, fmt.Errorf("timeline[%d]: missing plugin", i)
		}
		spec := &domain.TrialSpec{
			Plugin:     entry.Plugin,
			Parameters: entry.Parameters,
			Data:       domain.TrialData(entry.Data),
		}
		if entry.PostTrialGap != nil {
			// Validated here so a typo fails at load, not mid-run.
			if _, err := domain.DurationValue(entry.PostTrialGap); err != nil {
				return nil, fmt.Errorf("timeline[%d]: invalid post_trial_gap: %w", i, err)
			}
			spec.PostTrialGap = entry.PostTrialGap
		}
		exp.Timeline = append(exp.Timeline, spec)
	}

	return exp, nil
}
