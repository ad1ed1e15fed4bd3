package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Alitindrawan24/personal-ai-chatbot/internal/core"
	"github.com/Alitindrawan24/personal-ai-chatbot/internal/llm"
)

// ChatService is the slice of core.ChatService the handlers need.
type ChatService interface {
	ProcessQuery(ctx context.Context, question, conversationID, language string, chatHistory []llm.Message) (*core.QueryResult, error)
}

// DocumentService is the slice of core.DocumentService the handlers need.
type DocumentService interface {
	Ingest(ctx context.Context, content string, metadata core.IngestMetadata) (*core.IngestResult, error)
}

// ConversationService is the consumer surface of the conversation store.
type ConversationService interface {
	GetHistory(conversationID string) []llm.Message
	Clear(conversationID string)
	ActiveCount() int
}

type APIHandler struct {
	chatService     ChatService
	documentService DocumentService
	conversations   ConversationService
	requestTimeout  time.Duration
}

func NewAPIHandler(cs ChatService, ds DocumentService, conv ConversationService, requestTimeout time.Duration) *APIHandler {
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}
	return &APIHandler{
		chatService:     cs,
		documentService: ds,
		conversations:   conv,
		requestTimeout:  requestTimeout,
	}
}

type ChatRequest struct {
	Question       string        `json:"question"`
	ConversationID string        `json:"conversationId"`
	Language       string        `json:"language"`
	ChatHistory    []llm.Message `json:"chatHistory"`
}

func (r *ChatRequest) validate() []string {
	var details []string
	if r.Question == "" {
		details = append(details, "question is required")
	}
	switch r.Language {
	case "":
		r.Language = "en"
	case "en", "id":
	default:
		details = append(details, "language must be one of: en, id")
	}
	for i, msg := range r.ChatHistory {
		if msg.Role != llm.RoleUser && msg.Role != llm.RoleAssistant {
			details = append(details, fmt.Sprintf("chatHistory[%d].role must be 'user' or 'assistant'", i))
		}
	}
	return details
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if details := req.validate(); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	result, err := h.chatService.ProcessQuery(ctx, req.Question, req.ConversationID, req.Language, req.ChatHistory)
	if err != nil {
		log.Printf("Error processing chat query: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to process query")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type IngestDocumentRequest struct {
	Content  string              `json:"content"`
	Metadata core.IngestMetadata `json:"metadata"`
}

func (h *APIHandler) IngestDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var req IngestDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Content == "" {
		writeValidationError(w, []string{"content is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	result, err := h.documentService.Ingest(ctx, req.Content, req.Metadata)
	if err != nil {
		log.Printf("Error ingesting document: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to ingest document")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *APIHandler) CreateConversationHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]string{"conversationId": uuid.NewString()})
}

func (h *APIHandler) ActiveConversationsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"activeConversations": h.conversations.ActiveCount()})
}

func (h *APIHandler) GetConversationHandler(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	history := h.conversations.GetHistory(conversationID)
	if history == nil {
		history = []llm.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversationId": conversationID,
		"history":        history,
	})
}

func (h *APIHandler) ClearConversationHandler(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	h.conversations.Clear(conversationID)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Conversation cleared",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeValidationError(w http.ResponseWriter, details []string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "Validation error",
		"details": details,
	})
}
