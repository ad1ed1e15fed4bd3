// Package llm abstracts the embedding and language-model providers behind
// narrow interfaces so the pipeline never depends on a concrete backend.
package llm

import (
	"context"
	"fmt"

	"github.com/Alitindrawan24/personal-ai-chatbot/internal/config"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a model conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Embedder maps text to fixed-length vectors. Both methods use the same model
// and dimensionality for a given deployment.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces a completion for an ordered message list. System turns
// must take priority over user turns regardless of how the backend encodes
// them.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// NewEmbedder selects the embedding backend from configuration.
// Google AI Studio has no standalone embedding endpoint the original system
// relied on, so google deployments embed through OpenAI as well.
func NewEmbedder(cfg config.Config) (Embedder, error) {
	switch cfg.LLMProvider {
	case "openai", "google":
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.EmbeddingModel)
	case "cloudflare":
		return NewCloudflareProvider(cfg.CloudflareAccount, cfg.CloudflareAPIToken, cfg.RequestTimeout), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
	}
}

// NewGenerator selects the language-model backend from configuration.
func NewGenerator(cfg config.Config) (Generator, error) {
	switch cfg.LLMProvider {
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.EmbeddingModel)
	case "google":
		return NewGoogleProvider(context.Background(), cfg.GoogleAPIKey, cfg.GoogleModel)
	case "cloudflare":
		return NewCloudflareProvider(cfg.CloudflareAccount, cfg.CloudflareAPIToken, cfg.RequestTimeout), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
	}
}
