package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/chzyer/readline"

	"github.com/mzaitsev/ag/pkg/domain"
)

type promptEvent struct {
	line string
	err  error
}

type scriptedPrompter struct {
	events []promptEvent
}

func (p *scriptedPrompter) Readline() (string, error) {
	if len(p.events) == 0 {
		return "", io.EOF
	}
	event := p.events[0]
	p.events = p.events[1:]
	return event.line, event.err
}

type fakeClient struct {
	reply string
	err   error
	calls int
}

func (c *fakeClient) CreateChatCompletion(_ context.Context, _ string, _ []domain.ChatMessage) (string, error) {
	c.calls++
	return c.reply, c.err
}

func (c *fakeClient) CreateChatCompletionStream(_ context.Context, _ string, _ []domain.ChatMessage) (domain.Stream, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &replayStream{fragments: []string{c.reply}}, nil
}

type replayStream struct {
	fragments []string
}

func (s *replayStream) Recv() (string, error) {
	if len(s.fragments) == 0 {
		return "", io.EOF
	}
	fragment := s.fragments[0]
	s.fragments = s.fragments[1:]
	return fragment, nil
}

func (s *replayStream) Close() error { return nil }

// passRenderer skips terminal output and hands the text back, like the
// real renderer does after printing.
type passRenderer struct{}

func (passRenderer) RenderText(_ string, text string) (string, error) {
	return text, nil
}

func (passRenderer) RenderStream(_ string, s domain.Stream) (string, error) {
	var text string
	for {
		fragment, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return text, nil
		}
		if err != nil {
			return "", err
		}
		text += fragment
	}
}

func newTestChatService(client *fakeClient, prompter Prompter, stream bool) *chatService {
	return NewChatService(client, passRenderer{}, prompter, &bytes.Buffer{}, domain.ModelChat, stream)
}

func TestChatExitWordsSendNoRequest(t *testing.T) {
	for _, word := range []string{"exit", "quit", "q", "EXIT", "Quit", "  q  "} {
		t.Run(word, func(t *testing.T) {
			client := &fakeClient{reply: "unused"}
			svc := newTestChatService(client, &scriptedPrompter{events: []promptEvent{{line: word}}}, false)

			if err := svc.Run(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client.calls != 0 {
				t.Errorf("expected no requests, got %d", client.calls)
			}
		})
	}
}

func TestChatInterruptReturnsToPrompt(t *testing.T) {
	client := &fakeClient{reply: "world"}
	prompter := &scriptedPrompter{events: []promptEvent{
		{line: "hello"},
		{err: readline.ErrInterrupt},
		{line: "exit"},
	}}
	svc := newTestChatService(client, prompter, false)

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.calls != 1 {
		t.Errorf("expected 1 request, got %d", client.calls)
	}
	if len(prompter.events) != 0 {
		t.Error("loop exited before consuming all input")
	}
}

func TestChatHistoryAfterThreeTurns(t *testing.T) {
	client := &fakeClient{reply: "sure"}
	prompter := &scriptedPrompter{events: []promptEvent{
		{line: "first"},
		{line: "second"},
		{line: "third"},
		{line: "exit"},
	}}
	svc := newTestChatService(client, prompter, false)

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 1 system message plus a user/assistant pair per turn.
	if len(svc.messages) != 7 {
		t.Fatalf("expected history of length 7, got %d", len(svc.messages))
	}
	expectedRoles := []string{
		domain.RoleSystem,
		domain.RoleUser, domain.RoleAssistant,
		domain.RoleUser, domain.RoleAssistant,
		domain.RoleUser, domain.RoleAssistant,
	}
	for i, role := range expectedRoles {
		if svc.messages[i].Role != role {
			t.Errorf("message %d: expected role %q, got %q", i, role, svc.messages[i].Role)
		}
	}
}

func TestChatHistoryAfterThreeStreamedTurns(t *testing.T) {
	client := &fakeClient{reply: "streamed"}
	prompter := &scriptedPrompter{events: []promptEvent{
		{line: "first"},
		{line: "second"},
		{line: "third"},
		{line: "quit"},
	}}
	svc := newTestChatService(client, prompter, true)

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(svc.messages) != 7 {
		t.Fatalf("expected history of length 7, got %d", len(svc.messages))
	}
	if got := svc.messages[2].Content; got != "streamed" {
		t.Errorf("expected assistant reply %q, got %q", "streamed", got)
	}
}

func TestChatTurnFailureKeepsLoopAlive(t *testing.T) {
	client := &fakeClient{err: errors.New("api unreachable")}
	prompter := &scriptedPrompter{events: []promptEvent{
		{line: "hello"},
		{line: "exit"},
	}}
	svc := newTestChatService(client, prompter, false)

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("turn failure must not end the loop: %v", err)
	}
	if client.calls != 1 {
		t.Errorf("expected 1 attempted request, got %d", client.calls)
	}
	// The failed turn's user message stays; no assistant reply follows.
	if len(svc.messages) != 2 {
		t.Fatalf("expected history of length 2, got %d", len(svc.messages))
	}
	if svc.messages[1].Role != domain.RoleUser {
		t.Errorf("expected trailing user message, got role %q", svc.messages[1].Role)
	}
}

func TestChatEOFExits(t *testing.T) {
	client := &fakeClient{reply: "unused"}
	svc := newTestChatService(client, &scriptedPrompter{}, false)

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.calls != 0 {
		t.Errorf("expected no requests, got %d", client.calls)
	}
}
