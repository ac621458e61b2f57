package deepseek

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/mzaitsev/ag/pkg/domain"
)

const DefaultBaseURL = "https://api.deepseek.com"

type client struct {
	api *openai.Client
}

// NewClient creates a chat completion client for the DeepSeek API.
// DeepSeek speaks the OpenAI wire protocol, so the OpenAI client is
// pointed at its base URL. baseURL falls back to [DefaultBaseURL].
func NewClient(apiKey, baseURL string) (*client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is empty")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL

	return &client{api: openai.NewClientWithConfig(cfg)}, nil
}

func (c *client) CreateChatCompletion(
	ctx context.Context,
	model string,
	messages []domain.ChatMessage,
) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: toOpenAIMessages(messages),
	})
	if err != nil {
		return "", fmt.Errorf("creating completion: %w", err)
	}

	if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != "" {
		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("no completion response")
}

func (c *client) CreateChatCompletionStream(
	ctx context.Context,
	model string,
	messages []domain.ChatMessage,
) (domain.Stream, error) {
	s, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: toOpenAIMessages(messages),
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating completion stream: %w", err)
	}

	return &stream{s: s}, nil
}

func toOpenAIMessages(messages []domain.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return out
}
