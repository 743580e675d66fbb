package llmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"slide-rag/internal/config"
	"slide-rag/internal/embedding"
)

// Generator produces free text from a fully assembled prompt. Blocking;
// no streaming.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client is a Generator over a langchaingo chat model.
type Client struct {
	llm llms.Model
}

// NewClient constructs the chat model from config.
func NewClient(llmConfig *config.LLMConfig) (*Client, error) {
	llm, err := newModel(llmConfig)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm}, nil
}

func newModel(llmConfig *config.LLMConfig) (llms.Model, error) {
	switch llmConfig.Provider {
	case "", "ollama":
		return ollama.New(
			ollama.WithServerURL(llmConfig.BaseURL),
			ollama.WithModel(llmConfig.Model),
		)
	case "openai":
		return openai.New(
			openai.WithBaseURL(llmConfig.BaseURL),
			openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
			openai.WithModel(llmConfig.Model),
		)
	default:
		return nil, fmt.Errorf("unknown chat provider: %s", llmConfig.Provider)
	}
}

// Generate sends the prompt as a single human message and returns the
// model's answer. Failures wrap embedding.ErrServiceUnavailable so the
// caller can surface them as retryable, distinct from "no answer found".
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	log.Debug().Int("prompt_len", len(prompt)).Msg("Generating answer")

	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	res, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", embedding.ErrServiceUnavailable, err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", embedding.ErrServiceUnavailable)
	}
	return res.Choices[0].Content, nil
}
