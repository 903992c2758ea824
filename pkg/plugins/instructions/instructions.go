// Package instructions implements a paged instructions trial: markdown
// pages the participant steps through with forward/backward keys.
package instructions

import (
	"context"
	"fmt"
	"time"

	"github.com/florandr/trialflow/pkg/domain"
	"github.com/florandr/trialflow/pkg/ports"
	"github.com/florandr/trialflow/pkg/schema"
)

// PluginName is the identifier trials reference.
const PluginName = "instructions"

// Plugin pages through markdown content.
type Plugin struct{}

// New creates the plugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string { return PluginName }

func (p *Plugin) Schema() schema.Schema {
	return schema.Schema{
		"pages":            schema.Slice(schema.String()),
		"key_forward":      schema.Optional(schema.String()),
		"key_backward":     schema.Optional(schema.String()),
		"allow_backward":   schema.Optional(schema.Bool()),
		"show_page_number": schema.Optional(schema.Bool()),
	}
}

func (p *Plugin) Run(ctx context.Context, trial *domain.ResolvedTrial, host ports.TrialHost) error {
	pages := trial.Strings("pages")
	if len(pages) == 0 {
		return &schema.ValidationError{Key: "pages", Reason: "at least one page required"}
	}

	keyForward := trial.String("key_forward", "space")
	keyBackward := trial.String("key_backward", "b")
	allowBackward := trial.Bool("allow_backward", true)
	showPageNumber := trial.Bool("show_page_number", false)

	choices := []string{keyForward}
	if allowBackward {
		choices = append(choices, keyBackward)
	}

	start := time.Now()
	page := 0
	views := 0
	loaded := false

	for page < len(pages) {
		content := pages[page]
		if showPageNumber {
			content = fmt.Sprintf("%s\n\n*Page %d/%d*", content, page+1, len(pages))
		}
		if err := host.Render(domain.ActionRequest{
			Type:    domain.ActionRenderContent,
			Payload: content,
		}); err != nil {
			return err
		}
		views++

		if !loaded {
			host.LoadComplete()
			loaded = true
		}

		resp, err := host.Input(ctx, domain.InputRequest{Choices: choices})
		if err != nil {
			return err
		}

		if allowBackward && resp.Key == keyBackward {
			if page > 0 {
				page--
			}
			continue
		}
		page++
	}

	host.Finish(domain.TrialData{
		"rt":         time.Since(start).Milliseconds(),
		"page_views": views,
	})
	return nil
}
