package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIProvider serves both the embedding and generation ports through the
// OpenAI API.
type OpenAIProvider struct {
	client *openai.LLM
}

func NewOpenAIProvider(apiKey, model, embeddingModel string) (*OpenAIProvider, error) {
	client, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
		openai.WithEmbeddingModel(embeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return &OpenAIProvider{client: client}, nil
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := p.client.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("openai embedding request failed: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(vectors), len(texts))
	}
	return vectors, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, messages []Message) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.TextParts(chatMessageType(msg.Role), msg.Content))
	}

	resp, err := p.client.GenerateContent(ctx, content,
		llms.WithTemperature(0.7),
		llms.WithMaxTokens(500),
	)
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no completion choices")
	}
	return resp.Choices[0].Content, nil
}

func chatMessageType(role string) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
