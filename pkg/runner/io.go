package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/florandr/trialflow/pkg/domain"
	"golang.org/x/term"
)

// ContentRenderer transforms content before outputting it. This allows TUI
// rendering (markdown to ANSI) without coupling the runner to a renderer.
type ContentRenderer func(string) (string, error)

// TextHandler implements the standard terminal interface: stimuli are
// printed to the writer and responses are single key presses read in raw
// mode when stdin is a terminal, or whole lines otherwise (useful for
// piping scripted responses into the CLI).
type TextHandler struct {
	source     io.Reader
	Writer     io.Writer
	Renderer   ContentRenderer
	rawFd      int
	isTerminal bool

	keyChan   chan keyResult
	startOnce sync.Once
}

type keyResult struct {
	key string
	err error
}

// NewTextHandler creates a handler for terminal IO. Nil arguments default
// to Stdin/Stdout.
func NewTextHandler(r io.Reader, w io.Writer) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}

	h := &TextHandler{
		source: r,
		Writer: w,
		rawFd:  -1,
	}

	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		h.rawFd = int(f.Fd())
		h.isTerminal = true
	}

	return h
}

func (h *TextHandler) Output(ctx context.Context, action domain.ActionRequest) error {
	switch action.Type {
	case domain.ActionRenderStimulus:
		if msg, ok := action.Payload.(string); ok {
			fmt.Fprintln(h.Writer)
			fmt.Fprintln(h.Writer, "    "+msg)
			fmt.Fprintln(h.Writer)
		}
	case domain.ActionRenderContent:
		if msg, ok := action.Payload.(string); ok {
			output := msg
			if h.Renderer != nil {
				if rendered, err := h.Renderer(msg); err == nil {
					output = rendered
				}
			}
			fmt.Fprintln(h.Writer, strings.TrimSpace(output))
		}
	case domain.ActionClearStimulus:
		fmt.Fprintln(h.Writer)
	case domain.ActionSystemMessage:
		if msg, ok := action.Payload.(string); ok {
			fmt.Fprintf(h.Writer, "\n[System] %s\n", msg)
		}
	}
	return nil
}

// Input waits for a single key press, honoring the request's choices filter
// and timeout. A timeout is reported in the response, not as an error.
func (h *TextHandler) Input(ctx context.Context, req domain.InputRequest) (domain.InputResponse, error) {
	h.initPump()

	start := time.Now()

	var deadline <-chan time.Time
	if req.Timeout > 0 {
		timer := time.NewTimer(req.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	restore, err := h.enterRaw()
	if err != nil {
		return domain.InputResponse{}, err
	}
	defer restore()

	for {
		select {
		case <-ctx.Done():
			return domain.InputResponse{}, ctx.Err()
		case <-deadline:
			return domain.InputResponse{RT: time.Since(start), TimedOut: true}, nil
		case res, ok := <-h.keyChan:
			if !ok {
				return domain.InputResponse{}, io.EOF
			}
			if res.err != nil {
				return domain.InputResponse{}, res.err
			}
			if !keyAllowed(res.key, req.Choices) {
				continue
			}
			return domain.InputResponse{Key: res.key, RT: time.Since(start)}, nil
		}
	}
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.keyChan = make(chan keyResult)
		go h.pump()
	})
}

// pump reads keys continuously. In terminal mode each byte is one key; in
// stream mode each line is one key name, which lets tests and pipes feed
// responses like "f\nj\n".
func (h *TextHandler) pump() {
	if h.isTerminal {
		buf := make([]byte, 1)
		for {
			n, err := h.source.Read(buf)
			if n > 0 {
				h.keyChan <- keyResult{key: keyName(buf[0])}
			}
			if err != nil {
				if err != io.EOF {
					h.keyChan <- keyResult{err: err}
				}
				close(h.keyChan)
				return
			}
		}
	}

	scanner := bufio.NewScanner(h.source)
	for scanner.Scan() {
		key := strings.TrimSpace(scanner.Text())
		if key == "" {
			continue
		}
		h.keyChan <- keyResult{key: key}
	}
	if err := scanner.Err(); err != nil {
		h.keyChan <- keyResult{err: err}
	}
	close(h.keyChan)
}

// enterRaw switches the terminal into raw mode for the duration of a read.
// No-op when stdin is not a terminal.
func (h *TextHandler) enterRaw() (func(), error) {
	if !h.isTerminal {
		return func() {}, nil
	}
	state, err := term.MakeRaw(h.rawFd)
	if err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}
	return func() { _ = term.Restore(h.rawFd, state) }, nil
}

func keyAllowed(key string, choices []string) bool {
	if len(choices) == 0 {
		return true
	}
	for _, c := range choices {
		if strings.EqualFold(c, key) {
			return true
		}
	}
	return false
}

// keyName maps a raw terminal byte to the key notation experiments use.
func keyName(b byte) string {
	switch b {
	case ' ':
		return "space"
	case '\r', '\n':
		return "enter"
	case 0x1b:
		return "escape"
	case 0x7f, 0x08:
		return "backspace"
	case 0x03: // Ctrl+C in raw mode
		return "interrupt"
	default:
		return strings.ToLower(string(b))
	}
}
