package render

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/term"

	"github.com/mzaitsev/ag/pkg/domain"
	"github.com/mzaitsev/ag/pkg/logger"
)

const fallbackWidth = 80

// Renderer prints model responses as Markdown. Output is a model-name
// header, the rendered body, and a separator line matching the
// terminal width.
type Renderer struct {
	out   io.Writer
	width int // fixed width; 0 means detect from the terminal
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// RenderText renders a complete response and returns the plain text
// back so callers can append it to a conversation history.
func (r *Renderer) RenderText(model, text string) (string, error) {
	if err := r.print(model, text); err != nil {
		return "", err
	}
	return text, nil
}

// RenderStream drains the stream, then renders the accumulated text in
// one pass. There is no incremental redraw. The fragments concatenated
// in arrival order are what gets rendered and returned.
func (r *Renderer) RenderStream(model string, s domain.Stream) (string, error) {
	text, err := collect(s)
	if err != nil {
		return "", err
	}
	return r.RenderText(model, text)
}

func collect(s domain.Stream) (text string, err error) {
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			err = multierror.Append(err, closeErr)
		}
	}()

	var sb strings.Builder
	for {
		fragment, recvErr := s.Recv()
		if errors.Is(recvErr, io.EOF) {
			return sb.String(), nil
		}
		if recvErr != nil {
			err = multierror.Append(err, fmt.Errorf("receiving fragment: %w", recvErr))
			return "", err
		}
		sb.WriteString(fragment)
	}
}

func (r *Renderer) print(model, text string) error {
	width := r.width
	if width == 0 {
		width = terminalWidth()
	}

	if _, err := fmt.Fprintf(r.out, "Model(%s):\n\n", model); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	body, err := renderMarkdown(text, width)
	if err != nil {
		// Markdown failure is cosmetic, fall back to the raw text.
		slog.Error("rendering markdown", logger.Err(err))
		body = text + "\n"
	}
	if _, err := fmt.Fprint(r.out, body); err != nil {
		return fmt.Errorf("writing body: %w", err)
	}

	if _, err := fmt.Fprintln(r.out, strings.Repeat("=", width)); err != nil {
		return fmt.Errorf("writing separator: %w", err)
	}
	return nil
}

func renderMarkdown(text string, width int) (string, error) {
	gr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	return gr.Render(text)
}

func terminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return fallbackWidth
}
