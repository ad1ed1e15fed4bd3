package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort string

	// Provider selection
	LLMProvider string // "openai", "google" or "cloudflare"
	VectorStore string // "memory", "sqlite" or "qdrant"

	// Provider credentials
	OpenAIAPIKey       string
	OpenAIModel        string
	GoogleAPIKey       string
	GoogleModel        string
	CloudflareAccount  string
	CloudflareAPIToken string

	// Embedding
	EmbeddingModel      string
	EmbeddingDimensions int
	ChunkSize           int
	ChunkOverlap        int // recognized but not consumed by the paragraph chunker

	// Retrieval
	TopK                int
	SimilarityThreshold float64
	ShowSources         bool

	// Conversations
	MaxHistoryLength int
	ConversationTTL  time.Duration
	CleanupInterval  time.Duration

	// Stores
	DatabaseURL      string
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	// Request handling
	RequestTimeout time.Duration
	APIKey         string
	IPWhitelist    []string
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		HTTPPort: getEnv("PORT", "3000"),

		LLMProvider: getEnv("LLM_PROVIDER", "openai"),
		VectorStore: getEnv("VECTOR_STORE", "sqlite"),

		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4-turbo-preview"),
		GoogleAPIKey:       getEnv("GOOGLE_API_KEY", ""),
		GoogleModel:        getEnv("GOOGLE_MODEL", "gemini-1.5-flash"),
		CloudflareAccount:  getEnv("CLOUDFLARE_ACCOUNT_ID", ""),
		CloudflareAPIToken: getEnv("CLOUDFLARE_API_TOKEN", ""),

		EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 768),
		ChunkSize:           getEnvAsInt("CHUNK_SIZE", 500),
		ChunkOverlap:        getEnvAsInt("CHUNK_OVERLAP", 50),

		TopK:                getEnvAsInt("TOP_K_RESULTS", 5),
		SimilarityThreshold: getEnvAsFloat("SIMILARITY_THRESHOLD", 0.7),
		ShowSources:         getEnv("SHOW_SOURCES", "true") != "false",

		MaxHistoryLength: getEnvAsInt("MAX_HISTORY_LENGTH", 6),
		ConversationTTL:  getEnvAsDuration("CONVERSATION_TTL", time.Hour),
		CleanupInterval:  getEnvAsDuration("CLEANUP_INTERVAL", 10*time.Minute),

		DatabaseURL:      getEnv("DATABASE_URL", "chatbot.db"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:     getEnv("QDRANT_API_KEY", ""),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "portfolio"),

		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 60*time.Second),
		APIKey:         getEnv("API_KEY", ""),
		IPWhitelist:    getEnvAsList("IP_WHITELIST"),
	}

	switch AppConfig.LLMProvider {
	case "openai", "google":
		// Google deployments still embed through OpenAI, so the key is
		// required either way.
		if AppConfig.OpenAIAPIKey == "" {
			log.Fatal("OPENAI_API_KEY environment variable is required")
		}
		if AppConfig.LLMProvider == "google" && AppConfig.GoogleAPIKey == "" {
			log.Fatal("GOOGLE_API_KEY environment variable is required")
		}
	case "cloudflare":
		if AppConfig.CloudflareAccount == "" || AppConfig.CloudflareAPIToken == "" {
			log.Fatal("CLOUDFLARE_ACCOUNT_ID and CLOUDFLARE_API_TOKEN environment variables are required")
		}
	default:
		log.Fatalf("Unknown LLM_PROVIDER %q (expected openai, google or cloudflare)", AppConfig.LLMProvider)
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return nil
	}
	parts := strings.Split(valueStr, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
