package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chzyer/readline"
	"github.com/samber/lo"

	"github.com/mzaitsev/ag/pkg/domain"
	"github.com/mzaitsev/ag/pkg/logger"
	"github.com/mzaitsev/ag/pkg/prompt"
)

type ChatClient interface {
	CreateChatCompletion(ctx context.Context, model string, messages []domain.ChatMessage) (string, error)
	CreateChatCompletionStream(ctx context.Context, model string, messages []domain.ChatMessage) (domain.Stream, error)
}

type Renderer interface {
	RenderText(model, text string) (string, error)
	RenderStream(model string, s domain.Stream) (string, error)
}

// Prompter reads one line of user input. readline.Instance satisfies
// it; it returns readline.ErrInterrupt on Ctrl+C at the prompt and
// io.EOF when the terminal closes.
type Prompter interface {
	Readline() (string, error)
}

type chatState int

const (
	stateAwaitingInput chatState = iota
	stateSending
	stateRendering
	stateExited
)

var exitWords = []string{"exit", "quit", "q"}

const exitHint = "Type 'exit', 'quit', or 'q' to exit."

type chatService struct {
	client   ChatClient
	renderer Renderer
	prompter Prompter
	out      io.Writer
	model    string
	stream   bool

	messages []domain.ChatMessage
}

func NewChatService(
	client ChatClient,
	renderer Renderer,
	prompter Prompter,
	out io.Writer,
	model string,
	stream bool,
) *chatService {
	return &chatService{
		client:   client,
		renderer: renderer,
		prompter: prompter,
		out:      out,
		model:    model,
		stream:   stream,
		messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: prompt.ChatSystemPrompt},
		},
	}
}

// Run drives the conversation loop until the user exits. Each turn
// walks awaitingInput -> sending -> rendering and back; any failure
// while sending or rendering is logged and re-enters awaitingInput
// with the history accumulated so far intact.
func (s *chatService) Run(ctx context.Context) error {
	fmt.Fprintf(s.out, "Entering chat mode. %s\n", exitHint)
	fmt.Fprintln(s.out, strings.Repeat("-", 38))

	var (
		input  string
		text   string
		stream domain.Stream
	)

	state := stateAwaitingInput
	for state != stateExited {
		switch state {
		case stateAwaitingInput:
			line, err := s.prompter.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				fmt.Fprintf(s.out, "\n%s\n", exitHint)
				continue
			}
			if err != nil {
				state = stateExited
				continue
			}
			input = strings.TrimSpace(line)
			if lo.Contains(exitWords, strings.ToLower(input)) {
				state = stateExited
				continue
			}
			state = stateSending

		case stateSending:
			s.messages = append(s.messages, domain.ChatMessage{Role: domain.RoleUser, Content: input})

			var err error
			if s.stream {
				stream, err = s.client.CreateChatCompletionStream(ctx, s.model, s.messages)
			} else {
				text, err = s.client.CreateChatCompletion(ctx, s.model, s.messages)
			}
			if err != nil {
				slog.Error("requesting completion", logger.Err(err))
				state = stateAwaitingInput
				continue
			}
			state = stateRendering

		case stateRendering:
			var reply string
			var err error
			if s.stream {
				reply, err = s.renderer.RenderStream(s.model, stream)
			} else {
				reply, err = s.renderer.RenderText(s.model, text)
			}
			if err != nil {
				slog.Error("rendering response", logger.Err(err))
				state = stateAwaitingInput
				continue
			}

			s.messages = append(s.messages, domain.ChatMessage{Role: domain.RoleAssistant, Content: reply})
			state = stateAwaitingInput
		}
	}

	return nil
}
