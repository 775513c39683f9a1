package chatgpt

import (
	"context"
	"errors"
	"strings"
)

// ChatClient is the subset of Client used by Generator.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error)
}

// Generator adapts a chat completion client to single prompt generation.
type Generator struct {
	client      ChatClient
	model       string
	temperature float32
}

// NewGenerator builds a Generator bound to model.
func NewGenerator(client ChatClient, model string, temperature float32) *Generator {
	return &Generator{client: client, model: model, temperature: temperature}
}

// Generate sends prompt as a single user message and returns the reply text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := g.client.CreateChatCompletion(ctx, ChatCompletionRequest{
		Model:       g.model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: g.temperature,
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chatgpt returned no choices")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
