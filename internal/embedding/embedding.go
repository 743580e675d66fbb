package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"slide-rag/internal/config"
)

// ErrServiceUnavailable marks a failure to reach the embedding or chat
// model service. Callers treat it as retryable and abort the in-progress
// operation without persisting partial state.
var ErrServiceUnavailable = errors.New("model service unavailable")

// Embedder maps text onto fixed-length vectors. Satisfied by
// langchaingo's *embeddings.EmbedderImpl; tests provide fakes.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// NewEmbedder builds an embedder for the configured provider.
func NewEmbedder(llmConfig *config.LLMConfig) (Embedder, error) {
	switch llmConfig.Provider {
	case "", "ollama":
		return NewOllamaEmbedder(llmConfig)
	case "openai":
		return NewOpenAIEmbedder(llmConfig)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", llmConfig.Provider)
	}
}

// NewOllamaEmbedder builds an embedder backed by an Ollama server.
func NewOllamaEmbedder(llmConfig *config.LLMConfig) (Embedder, error) {
	log.Debug().
		Str("base_url", llmConfig.BaseURL).
		Str("embedding_model", llmConfig.Model).
		Msg("Initializing ollama embedder")

	llm, err := ollama.New(
		ollama.WithServerURL(llmConfig.BaseURL),
		ollama.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing ollama LLM: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return &checkedEmbedder{inner: embedder}, nil
}

// NewOpenAIEmbedder builds an embedder for an OpenAI-compatible endpoint.
func NewOpenAIEmbedder(llmConfig *config.LLMConfig) (Embedder, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing openai LLM: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return &checkedEmbedder{inner: embedder}, nil
}

// checkedEmbedder wraps transport failures in ErrServiceUnavailable and
// rejects empty vectors so a silent service failure never produces a
// degenerate index.
type checkedEmbedder struct {
	inner *embeddings.EmbedderImpl
}

func (c *checkedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vec, err := c.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", ErrServiceUnavailable)
	}
	return vec, nil
}

func (c *checkedEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := c.inner.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrServiceUnavailable, len(texts), len(vecs))
	}
	for i, vec := range vecs {
		if len(vec) == 0 {
			return nil, fmt.Errorf("%w: empty embedding at index %d", ErrServiceUnavailable, i)
		}
	}
	return vecs, nil
}
