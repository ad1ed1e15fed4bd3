// Package vectorstore persists embedding vectors with chunk metadata and
// answers similarity queries over them.
package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/Alitindrawan24/personal-ai-chatbot/internal/config"
)

// Metadata travels with every stored vector and is returned on query.
type Metadata struct {
	Text       string    `json:"text"`
	Source     string    `json:"source"`
	Tags       []string  `json:"tags"`
	Type       string    `json:"type"`
	ChunkIndex int       `json:"chunkIndex"`
	Version    int64     `json:"version"`
	Timestamp  time.Time `json:"timestamp"`
}

// Record is the persisted unit: a positional id, the embedding vector and the
// originating chunk's metadata. Upserting an existing id overwrites it.
type Record struct {
	ID       string
	Values   []float32
	Metadata Metadata
}

// Match is a query hit with its similarity score, ordered descending.
type Match struct {
	Record
	Score float64
}

// Info describes the configured index.
type Info struct {
	Dimension int
	Count     int
}

// Store is the vector store port. Implementations must keep upsert idempotent
// by record id and reject vectors whose dimensionality does not match the
// configured index.
type Store interface {
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
	Delete(ctx context.Context, ids []string) error
	List(ctx context.Context, limit int) ([]Record, error)
	Info(ctx context.Context) (Info, error)
	Close() error
}

// New creates a Store for the configured backend.
func New(cfg config.Config) (Store, error) {
	switch cfg.VectorStore {
	case "memory":
		return NewMemoryStore(cfg.EmbeddingDimensions), nil
	case "sqlite":
		return NewSQLiteStore(cfg.DatabaseURL, cfg.EmbeddingDimensions)
	case "qdrant":
		return NewQdrantStore(QdrantConfig{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.QdrantCollection,
			Dimension:  cfg.EmbeddingDimensions,
			Timeout:    cfg.RequestTimeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector store backend: %s", cfg.VectorStore)
	}
}
