package deepseek

import (
	"github.com/sashabaranov/go-openai"
)

// stream adapts the OpenAI SSE stream to domain.Stream. Chunks with an
// empty content delta (role announcements, finish markers) are skipped
// so Recv yields text fragments only.
type stream struct {
	s *openai.ChatCompletionStream
}

func (s *stream) Recv() (string, error) {
	for {
		resp, err := s.s.Recv()
		if err != nil {
			return "", err
		}
		if len(resp.Choices) > 0 && resp.Choices[0].Delta.Content != "" {
			return resp.Choices[0].Delta.Content, nil
		}
	}
}

func (s *stream) Close() error {
	return s.s.Close()
}
