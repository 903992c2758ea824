// Package htmlkeyboard implements the classic stimulus-plus-keyboard trial:
// show a stimulus, collect a single key press, record the response and its
// latency. It is the workhorse plugin for reaction-time tasks.
package htmlkeyboard

import (
	"context"
	"time"

	"github.com/florandr/trialflow/pkg/domain"
	"github.com/florandr/trialflow/pkg/ports"
	"github.com/florandr/trialflow/pkg/schema"
)

// PluginName is the identifier trials reference.
const PluginName = "html-keyboard-response"

// Plugin presents a stimulus string and waits for a keyboard response.
type Plugin struct{}

// New creates the plugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string { return PluginName }

func (p *Plugin) Schema() schema.Schema {
	return schema.Schema{
		"stimulus":            schema.String(),
		"choices":             schema.Optional(schema.Slice(schema.String())),
		"prompt":              schema.Optional(schema.String()),
		"stimulus_duration":   schema.Optional(schema.Int()),
		"trial_duration":      schema.Optional(schema.Int()),
		"response_ends_trial": schema.Optional(schema.Bool()),
	}
}

// Run presents the stimulus, waits for a response (or trial_duration), and
// finishes with the standard record: stimulus, response, rt. A timed-out
// trial records nil response and rt.
func (p *Plugin) Run(ctx context.Context, trial *domain.ResolvedTrial, host ports.TrialHost) error {
	stimulus := trial.String("stimulus", "")

	if err := host.Render(domain.ActionRequest{
		Type:    domain.ActionRenderStimulus,
		Payload: stimulus,
	}); err != nil {
		return err
	}

	if prompt := trial.String("prompt", ""); prompt != "" {
		if err := host.Render(domain.ActionRequest{
			Type:    domain.ActionRenderContent,
			Payload: prompt,
		}); err != nil {
			return err
		}
	}

	// Text stimuli need no media decode; loading is done once rendered.
	host.LoadComplete()

	// Hide the stimulus after stimulus_duration without blocking the
	// response wait.
	if hideAfter := trial.Duration("stimulus_duration", 0); hideAfter > 0 {
		hideCtx, cancelHide := context.WithCancel(ctx)
		defer cancelHide()
		go func() {
			timer := time.NewTimer(hideAfter)
			defer timer.Stop()
			select {
			case <-hideCtx.Done():
			case <-timer.C:
				_ = host.Render(domain.ActionRequest{Type: domain.ActionClearStimulus})
			}
		}()
	}

	trialDuration := trial.Duration("trial_duration", 0)
	responseEndsTrial := trial.Bool("response_ends_trial", true)

	resp, err := host.Input(ctx, domain.InputRequest{
		Choices: trial.Strings("choices"),
		Timeout: trialDuration,
	})
	if err != nil {
		return err
	}

	// When the response doesn't end the trial, the stimulus stays up for
	// the remainder of trial_duration.
	if !responseEndsTrial && trialDuration > 0 && !resp.TimedOut {
		if remaining := trialDuration - resp.RT; remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	data := domain.TrialData{"stimulus": stimulus}
	if resp.TimedOut {
		data["response"] = nil
		data["rt"] = nil
	} else {
		data["response"] = resp.Key
		data["rt"] = resp.RT.Milliseconds()
	}

	host.Finish(data)
	return nil
}
