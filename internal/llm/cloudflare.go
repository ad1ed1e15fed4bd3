package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	cloudflareEmbeddingModel = "@cf/baai/bge-base-en-v1.5"
	cloudflareChatModel      = "@cf/meta/llama-2-7b-chat-int8"
)

// CloudflareProvider serves both ports through the Workers AI REST API.
type CloudflareProvider struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

func NewCloudflareProvider(accountID, apiToken string, timeout time.Duration) *CloudflareProvider {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &CloudflareProvider{
		baseURL:  fmt.Sprintf("https://api.cloudflare.com/client/v4/accounts/%s/ai/run", accountID),
		apiToken: apiToken,
		client:   &http.Client{Timeout: timeout},
	}
}

type cloudflareEmbeddingRequest struct {
	Text []string `json:"text"`
}

type cloudflareEmbeddingResponse struct {
	Result struct {
		Data [][]float32 `json:"data"`
	} `json:"result"`
}

type cloudflareChatRequest struct {
	Messages []Message `json:"messages"`
}

type cloudflareChatResponse struct {
	Result struct {
		Response string `json:"response"`
	} `json:"result"`
}

func (p *CloudflareProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (p *CloudflareProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var result cloudflareEmbeddingResponse
	err := p.run(ctx, cloudflareEmbeddingModel, cloudflareEmbeddingRequest{Text: texts}, &result)
	if err != nil {
		return nil, err
	}
	if len(result.Result.Data) != len(texts) {
		return nil, fmt.Errorf("cloudflare returned %d embeddings for %d inputs", len(result.Result.Data), len(texts))
	}
	return result.Result.Data, nil
}

func (p *CloudflareProvider) Generate(ctx context.Context, messages []Message) (string, error) {
	var result cloudflareChatResponse
	err := p.run(ctx, cloudflareChatModel, cloudflareChatRequest{Messages: messages}, &result)
	if err != nil {
		return "", err
	}
	return result.Result.Response, nil
}

func (p *CloudflareProvider) run(ctx context.Context, model string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/"+model, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("cloudflare AI request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("cloudflare AI returned status %d: %s", resp.StatusCode, string(detail))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode cloudflare AI response: %w", err)
	}
	return nil
}
