package runner

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/florandr/trialflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_OutputFormats(t *testing.T) {
	var buf bytes.Buffer
	h := NewTextHandler(strings.NewReader(""), &buf)
	ctx := context.Background()

	require.NoError(t, h.Output(ctx, domain.ActionRequest{Type: domain.ActionRenderStimulus, Payload: "<<<<<"}))
	assert.Contains(t, buf.String(), "    <<<<<")

	buf.Reset()
	require.NoError(t, h.Output(ctx, domain.ActionRequest{Type: domain.ActionRenderContent, Payload: "Press F or J"}))
	assert.Equal(t, "Press F or J\n", buf.String())

	buf.Reset()
	require.NoError(t, h.Output(ctx, domain.ActionRequest{Type: domain.ActionSystemMessage, Payload: "saved"}))
	assert.Contains(t, buf.String(), "[System] saved")
}

func TestTextHandler_RendererApplied(t *testing.T) {
	var buf bytes.Buffer
	h := NewTextHandler(strings.NewReader(""), &buf)
	h.Renderer = func(s string) (string, error) {
		return "rendered:" + s, nil
	}

	require.NoError(t, h.Output(context.Background(), domain.ActionRequest{
		Type:    domain.ActionRenderContent,
		Payload: "# Title",
	}))
	assert.Contains(t, buf.String(), "rendered:# Title")
}

func TestTextHandler_InputReadsLineKeys(t *testing.T) {
	h := NewTextHandler(strings.NewReader("f\nj\n"), &bytes.Buffer{})
	ctx := context.Background()

	resp, err := h.Input(ctx, domain.InputRequest{})
	require.NoError(t, err)
	assert.Equal(t, "f", resp.Key)
	assert.False(t, resp.TimedOut)

	resp, err = h.Input(ctx, domain.InputRequest{})
	require.NoError(t, err)
	assert.Equal(t, "j", resp.Key)
}

func TestTextHandler_ChoicesFilterSkipsDisallowedKeys(t *testing.T) {
	h := NewTextHandler(strings.NewReader("x\nq\nf\n"), &bytes.Buffer{})

	resp, err := h.Input(context.Background(), domain.InputRequest{Choices: []string{"f", "j"}})
	require.NoError(t, err)
	assert.Equal(t, "f", resp.Key)
}

func TestTextHandler_Timeout(t *testing.T) {
	// A reader that never delivers a key.
	h := NewTextHandler(blockingReader{}, &bytes.Buffer{})

	start := time.Now()
	resp, err := h.Input(context.Background(), domain.InputRequest{Timeout: 50 * time.Millisecond})
	require.NoError(t, err)
	assert.True(t, resp.TimedOut)
	assert.GreaterOrEqual(t, resp.RT, 50*time.Millisecond)
	assert.Less(t, time.Since(start), time.Second)
}

func TestTextHandler_ContextCancellation(t *testing.T) {
	h := NewTextHandler(blockingReader{}, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := h.Input(ctx, domain.InputRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKeyName(t *testing.T) {
	cases := map[byte]string{
		' ':  "space",
		'\r': "enter",
		0x1b: "escape",
		0x7f: "backspace",
		0x03: "interrupt",
		'F':  "f",
		'j':  "j",
	}
	for b, want := range cases {
		assert.Equal(t, want, keyName(b))
	}
}

func TestKeyAllowed(t *testing.T) {
	assert.True(t, keyAllowed("f", nil))
	assert.True(t, keyAllowed("F", []string{"f", "j"}))
	assert.False(t, keyAllowed("x", []string{"f", "j"}))
}

// blockingReader blocks forever, standing in for a silent participant.
type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}
