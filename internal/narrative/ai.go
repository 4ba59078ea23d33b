package narrative

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Completer is the optional AI collaborator for richer summary prose.
// The generator must function without one.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAICompleter generates prose through the OpenAI chat API.
type OpenAICompleter struct {
	client *openai.Client
	logger *zap.Logger
	model  string
}

// NewOpenAICompleter creates a new OpenAI-backed completer.
func NewOpenAICompleter(apiKey, model string, logger *zap.Logger) *OpenAICompleter {
	client := openai.NewClient(apiKey)

	if model == "" {
		model = openai.GPT4TurboPreview
	}

	return &OpenAICompleter{
		client: client,
		logger: logger,
		model:  model,
	}
}

// Complete sends the prompt and returns the model's text.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are a professional technical writer that summarizes development work for status reports.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.7,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from AI")
	}

	c.logger.Debug("generated ai summary", zap.Int("prompt_len", len(prompt)))

	return resp.Choices[0].Message.Content, nil
}
