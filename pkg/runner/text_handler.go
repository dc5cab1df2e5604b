package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/thicket/pkg/domain"
)

// VerdictRenderer turns a verdict into the line shown to the user.
type VerdictRenderer func(Verdict) string

// TextHandler implements the line-oriented terminal interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer VerdictRenderer
	Prompt   string

	inputChan chan inputResult
	startOnce sync.Once
	done      chan struct{}
	closeOnce sync.Once
	stopped   chan struct{}
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithVerdictRenderer replaces the plain "accepted"/"rejected" output.
func WithVerdictRenderer(renderer VerdictRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithPrompt overrides the default "> " prompt. An empty prompt disables it.
func WithPrompt(prompt string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Prompt = prompt
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader:   bufio.NewReader(r),
		Writer:   w,
		Renderer: PlainVerdict,
		Prompt:   "> ",
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// initPump starts the background reader once. Reads happen in their own
// goroutine so Input can return as soon as ctx is canceled.
func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		h.stopped = make(chan struct{})
		go h.pump()
	})
}

// Close stops the background reader once it has handed over the line it is
// holding. A read already blocked on the underlying reader ends when that
// reader returns. Input reports io.EOF afterwards.
func (h *TextHandler) Close() error {
	h.closeOnce.Do(func() {
		if h.done != nil {
			close(h.done)
		}
	})
	return nil
}

func (h *TextHandler) pump() {
	defer close(h.stopped)
	for {
		text, err := h.Reader.ReadString('\n')

		// A final line without newline still counts.
		if text != "" && !h.send(inputResult{text: text}) {
			return
		}

		if err != nil {
			if err != io.EOF && !h.send(inputResult{err: err}) {
				return
			}
			close(h.inputChan)
			return
		}
	}
}

func (h *TextHandler) send(res inputResult) bool {
	select {
	case h.inputChan <- res:
		return true
	case <-h.done:
		return false
	}
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		if h.Prompt != "" {
			fmt.Fprint(h.Writer, h.Prompt)
		}
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-h.done:
		return "", io.EOF
	case res, ok := <-h.inputChan:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.text), nil
	}
}

func (h *TextHandler) Verdict(ctx context.Context, v Verdict) error {
	render := h.Renderer
	if render == nil {
		render = PlainVerdict
	}
	if _, err := fmt.Fprintln(h.Writer, render(v)); err != nil {
		return err
	}
	if v.Trace != nil {
		_, err := io.WriteString(h.Writer, FormatTrace(v.Trace))
		return err
	}
	return nil
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintln(h.Writer, msg)
	return err
}

// PlainVerdict renders a verdict without styling.
func PlainVerdict(v Verdict) string {
	if v.Accepted {
		return "accepted"
	}
	return "rejected"
}

// FormatTrace renders a trace as one indented line per step.
func FormatTrace(t *domain.Trace) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  start   %s\n", formatSet(t.Initial))
	for _, step := range t.Steps {
		fmt.Fprintf(&b, "  %-7q %s\n", step.Symbol, formatSet(step.Closed))
	}
	if t.Halted {
		b.WriteString("  halted: no active states\n")
	}
	return b.String()
}

func formatSet(s domain.StateSet) string {
	return "{" + strings.Join(s.Sorted(), ", ") + "}"
}
