package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GoogleProvider generates completions through Google AI Studio (Gemini).
// Gemini has no separate system role in chat history, so the system turn is
// set as the model's system instruction instead.
type GoogleProvider struct {
	client *genai.Client
	model  string
}

func NewGoogleProvider(ctx context.Context, apiKey, model string) (*GoogleProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GoogleProvider{client: client, model: model}, nil
}

func (p *GoogleProvider) Close() {
	if p.client != nil {
		if err := p.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		}
	}
}

func (p *GoogleProvider) Generate(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("message list is empty for chat completion")
	}

	model := p.client.GenerativeModel(p.model)

	var history []*genai.Content
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			model.SystemInstruction = &genai.Content{
				Parts: []genai.Part{genai.Text(msg.Content)},
			}
		case RoleAssistant:
			history = append(history, &genai.Content{
				Role:  "model",
				Parts: []genai.Part{genai.Text(msg.Content)},
			})
		default:
			history = append(history, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(msg.Content)},
			})
		}
	}

	if len(history) == 0 || history[len(history)-1].Role != "user" {
		return "", fmt.Errorf("last message is not from 'user', cannot proceed with chat completion")
	}

	last := history[len(history)-1]
	chatSession := model.StartChat()
	chatSession.History = history[:len(history)-1]

	resp, err := chatSession.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", fmt.Errorf("gemini chat SendMessage failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response was empty or had no valid candidates")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}

	if responseText.Len() == 0 {
		return "", fmt.Errorf("gemini returned a non-text or empty response")
	}

	return responseText.String(), nil
}
