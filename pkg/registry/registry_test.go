package registry_test

import (
	"context"
	"testing"

	"github.com/florandr/trialflow/pkg/domain"
	"github.com/florandr/trialflow/pkg/ports"
	"github.com/florandr/trialflow/pkg/registry"
	"github.com/florandr/trialflow/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPlugin struct{ name string }

func (p *stubPlugin) Name() string          { return p.name }
func (p *stubPlugin) Schema() schema.Schema { return nil }
func (p *stubPlugin) Run(ctx context.Context, trial *domain.ResolvedTrial, host ports.TrialHost) error {
	return nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := registry.NewRegistry()
	r.Register(&stubPlugin{name: "alpha"})

	p, err := r.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", p.Name())
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := registry.NewRegistry()

	_, err := r.Get("missing")
	require.ErrorIs(t, err, domain.ErrPluginNotFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	r := registry.NewRegistry()
	first := &stubPlugin{name: "alpha"}
	second := &stubPlugin{name: "alpha"}

	r.Register(first)
	r.Register(second)

	p, err := r.Get("alpha")
	require.NoError(t, err)
	assert.Same(t, second, p)
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := registry.NewRegistry()
	r.Register(&stubPlugin{name: "zeta"})
	r.Register(&stubPlugin{name: "alpha"})
	r.Register(&stubPlugin{name: "mid"})

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Names())
}
