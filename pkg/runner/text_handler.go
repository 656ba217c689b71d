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

	"github.com/aretw0/lifecycle"

	"github.com/steltz/stepper/pkg/domain"
)

// TextHandler implements the line-oriented interface.
// A textarea answer may span lines by ending each continued line with a backslash.
type TextHandler struct {
	source      io.Reader
	interactive bool // true if reading from CONIN$ (Windows) where EOF should be ignored
	Reader      *bufio.Reader
	Writer      io.Writer
	Renderer    ContentRenderer

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
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
		source: r,
		Writer: w,
	}

	// On Windows terminals input must come from CONIN$ for signals to work.
	h.source, h.interactive = resolveInputReader(r)
	h.Reader = bufio.NewReader(h.source)

	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')

		// If we got text (even with EOF), send it
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}

		if err != nil {
			if err == io.EOF {
				if h.interactive {
					// A signal may have interrupted the read; the stream stays usable.
					h.inputChan <- inputResult{err: io.EOF}
					time.Sleep(50 * time.Millisecond)
					continue
				}
				close(h.inputChan)
				return
			}
			h.inputChan <- inputResult{err: err}
			time.Sleep(50 * time.Millisecond)
		}
	}
}

func (h *TextHandler) Output(ctx context.Context, view domain.View) error {
	q := view.Question
	fmt.Fprintf(h.Writer, "\nQuestion %s\n", view.Progress)

	text := q.Text
	if h.Renderer != nil {
		if rendered, err := h.Renderer(text); err == nil {
			text = rendered
		}
	}
	fmt.Fprintln(h.Writer, strings.TrimSpace(text))

	switch q.Type {
	case domain.KindYesNo:
		fmt.Fprintf(h.Writer, "(%s)\n", strings.Join(q.Options, " / "))
	case domain.KindTextarea:
		fmt.Fprintln(h.Writer, `(end a line with \ to continue on the next one)`)
	}
	if q.Placeholder != "" && view.CurrentAnswer == "" {
		fmt.Fprintf(h.Writer, "e.g. %s\n", q.Placeholder)
	}
	if view.CurrentAnswer != "" {
		fmt.Fprintf(h.Writer, "Current answer: %s (press Enter to keep)\n", view.CurrentAnswer)
	}
	if view.Error != "" {
		fmt.Fprintf(h.Writer, "! %s\n", view.Error)
	}
	return nil
}

func (h *TextHandler) Input(ctx context.Context, view domain.View) (string, error) {
	h.initPump()

	multiline := view.Question.Type == domain.KindTextarea
	var lines []string
	prompt := "> "

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, prompt)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			line := strings.TrimRight(res.text, "\r\n")

			if multiline && strings.HasSuffix(line, `\`) {
				lines = append(lines, strings.TrimSuffix(line, `\`))
				prompt = ". "
				continue
			}
			lines = append(lines, line)

			clean, err := SanitizeInput(strings.Join(lines, "\n"))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				lines, prompt = nil, "> "
				continue
			}
			return clean, nil
		}
	}
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	fmt.Fprintf(h.Writer, "\n%s\n", msg)
	return nil
}

// resolveInputReader attempts to open a platform-specific terminal reader
// (e.g., CONIN$ on Windows) via the lifecycle library.
func resolveInputReader(defaultReader io.Reader) (io.Reader, bool) {
	if r, err := lifecycle.UpgradeTerminal(defaultReader); err == nil && r != defaultReader {
		return r, true
	}
	return defaultReader, false
}
