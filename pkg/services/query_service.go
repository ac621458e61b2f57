package services

import (
	"context"
	"fmt"

	"github.com/mzaitsev/ag/pkg/domain"
	"github.com/mzaitsev/ag/pkg/prompt"
)

type queryService struct {
	client   ChatClient
	renderer Renderer
	model    string
	stream   bool
}

func NewQueryService(client ChatClient, renderer Renderer, model string, stream bool) *queryService {
	return &queryService{
		client:   client,
		renderer: renderer,
		model:    model,
		stream:   stream,
	}
}

// Run performs one query/response exchange. Unlike chat mode, the
// query is wrapped with the output-formatting instructions before it
// is sent.
func (s *queryService) Run(ctx context.Context, query, contents string, fromImage bool) error {
	p := prompt.WithInstructions(prompt.BuildContext(query, contents, fromImage))
	messages := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: p},
	}

	if s.stream {
		stream, err := s.client.CreateChatCompletionStream(ctx, s.model, messages)
		if err != nil {
			return fmt.Errorf("requesting completion stream: %w", err)
		}
		if _, err := s.renderer.RenderStream(s.model, stream); err != nil {
			return fmt.Errorf("rendering response: %w", err)
		}
		return nil
	}

	text, err := s.client.CreateChatCompletion(ctx, s.model, messages)
	if err != nil {
		return fmt.Errorf("requesting completion: %w", err)
	}
	if _, err := s.renderer.RenderText(s.model, text); err != nil {
		return fmt.Errorf("rendering response: %w", err)
	}
	return nil
}
