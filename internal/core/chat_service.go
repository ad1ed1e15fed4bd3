package core

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Alitindrawan24/personal-ai-chatbot/internal/llm"
	"github.com/Alitindrawan24/personal-ai-chatbot/internal/vectorstore"
)

const sourceExcerptLength = 200

// Source is one retrieved excerpt backing an answer.
type Source struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// QueryResult is the answer returned to the caller. Confidence is 0 on the
// guard-blocked and no-match paths; otherwise it is the mean score of the
// matches used. Sources is nil (absent from JSON) when source display is
// disabled, and an empty list when enabled with no matches.
type QueryResult struct {
	Answer     string    `json:"answer"`
	Confidence float64   `json:"confidence"`
	Sources    *[]Source `json:"sources,omitempty"`
}

// ChatOptions carries the retrieval tuning knobs.
type ChatOptions struct {
	TopK                int
	SimilarityThreshold float64
	ShowSources         bool
	MaxHistoryLength    int
}

// ChatService runs the retrieval-and-response pipeline for one question:
// guard check, question embedding, similarity search, threshold filter,
// context assembly, generation, history bookkeeping.
type ChatService struct {
	embedder      llm.Embedder
	generator     llm.Generator
	store         vectorstore.Store
	conversations *ConversationService
	guard         *Guard
	opts          ChatOptions
}

func NewChatService(embedder llm.Embedder, generator llm.Generator, store vectorstore.Store, conversations *ConversationService, opts ChatOptions) *ChatService {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.MaxHistoryLength <= 0 {
		opts.MaxHistoryLength = 6
	}
	return &ChatService{
		embedder:      embedder,
		generator:     generator,
		store:         store,
		conversations: conversations,
		guard:         NewGuard(),
		opts:          opts,
	}
}

// ProcessQuery answers a question against the ingested documents. History is
// read from the conversation store when conversationID is set; otherwise the
// caller-supplied chatHistory is used verbatim and never persisted.
func (s *ChatService) ProcessQuery(ctx context.Context, question, conversationID, language string, chatHistory []llm.Message) (*QueryResult, error) {
	log.Printf("Processing chat query (conversation %q, language %q)", conversationID, language)

	if s.guard.Blocked(question) {
		return s.restrictedResult(language), nil
	}

	questionEmbedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	matches, err := s.store.Query(ctx, questionEmbedding, s.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	log.Printf("Vector search completed with %d results", len(matches))

	relevant := matches[:0:0]
	for _, m := range matches {
		if m.Score >= s.opts.SimilarityThreshold {
			relevant = append(relevant, m)
		}
	}

	if len(relevant) == 0 {
		return s.noInfoResult(language), nil
	}

	contextParts := make([]string, len(relevant))
	for i, m := range relevant {
		contextParts[i] = m.Metadata.Text
	}
	retrievedContext := strings.Join(contextParts, "\n\n")

	history := chatHistory
	if conversationID != "" {
		history = s.conversations.GetHistory(conversationID)
	}
	if len(history) > s.opts.MaxHistoryLength {
		history = history[len(history)-s.opts.MaxHistoryLength:]
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt(language)})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userPrompt(question, retrievedContext, language)})

	answer, err := s.generator.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	if conversationID != "" {
		s.conversations.AddMessage(conversationID, llm.RoleUser, question)
		s.conversations.AddMessage(conversationID, llm.RoleAssistant, answer)
	}

	var sum float64
	for _, m := range relevant {
		sum += m.Score
	}

	result := &QueryResult{
		Answer:     answer,
		Confidence: sum / float64(len(relevant)),
	}
	if s.opts.ShowSources {
		sources := make([]Source, len(relevant))
		for i, m := range relevant {
			sources[i] = Source{
				Text:   truncateExcerpt(m.Metadata.Text),
				Source: m.Metadata.Source,
				Score:  m.Score,
			}
		}
		result.Sources = &sources
	}
	return result, nil
}

func (s *ChatService) restrictedResult(language string) *QueryResult {
	answer := "Sorry, I can only answer professional questions only."
	if language == "id" {
		answer = "Maaf, saya hanya dapat menjawab pertanyaan profesional saja."
	}
	return s.emptyResult(answer)
}

func (s *ChatService) noInfoResult(language string) *QueryResult {
	answer := "I don't have information about that in my portfolio."
	if language == "id" {
		answer = "Saya tidak memiliki informasi tentang itu di portfolio saya."
	}
	return s.emptyResult(answer)
}

func (s *ChatService) emptyResult(answer string) *QueryResult {
	result := &QueryResult{Answer: answer, Confidence: 0}
	if s.opts.ShowSources {
		sources := []Source{}
		result.Sources = &sources
	}
	return result
}

func truncateExcerpt(text string) string {
	runes := []rune(text)
	if len(runes) > sourceExcerptLength {
		runes = runes[:sourceExcerptLength]
	}
	return string(runes) + "..."
}

func systemPrompt(language string) string {
	if language == "id" {
		return `Anda adalah asisten portfolio profesional. Jawab pertanyaan dengan singkat dan langsung ke intinya.

Aturan:
- Jawab SANGAT SINGKAT (1-2 kalimat maksimal)
- Langsung ke poin, tanpa penjelasan panjang
- Hanya gunakan data dari konteks
- Jangan tambahkan informasi yang tidak ada
- Gunakan riwayat chat untuk memahami konteks percakapan
- Jika tidak tahu, katakan "Tidak ada informasi tentang itu"
- Jawab dalam Bahasa Indonesia`
	}

	return `You are a professional portfolio assistant. Answer questions briefly and directly to the point.

Rules:
- Answer VERY SHORT (1-2 sentences maximum)
- Get straight to the point, no long explanations
- Only use data from the context
- Don't add information that isn't there
- Use chat history to understand conversation context
- If you don't know, say "No information about that"
- Answer in English`
}

func userPrompt(question, context, language string) string {
	if language == "id" {
		return fmt.Sprintf("Data portfolio:\n%s\n\nPertanyaan: %s\n\nJawab singkat dan langsung (maksimal 2 kalimat).", context, question)
	}
	return fmt.Sprintf("Portfolio data:\n%s\n\nQuestion: %s\n\nAnswer briefly and directly (maximum 2 sentences).", context, question)
}
