package core

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/Alitindrawan24/personal-ai-chatbot/internal/llm"
	"github.com/Alitindrawan24/personal-ai-chatbot/internal/utils"
	"github.com/Alitindrawan24/personal-ai-chatbot/internal/vectorstore"
)

const vectorIDPrefix = "doc-chunk-"

// IngestMetadata describes the source document being ingested.
type IngestMetadata struct {
	Source string   `json:"source"`
	Tags   []string `json:"tags"`
	Type   string   `json:"type"`
}

// IngestResult reports one completed ingestion.
type IngestResult struct {
	Success         bool     `json:"success"`
	ChunksProcessed int      `json:"chunksProcessed"`
	VectorIDs       []string `json:"vectorIds"`
	Version         int64    `json:"version"`
}

// DocumentService runs the chunk → embed → store pipeline.
type DocumentService struct {
	embedder  llm.Embedder
	store     vectorstore.Store
	chunkSize int
}

func NewDocumentService(embedder llm.Embedder, store vectorstore.Store, chunkSize int) *DocumentService {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	return &DocumentService{
		embedder:  embedder,
		store:     store,
		chunkSize: chunkSize,
	}
}

// Ingest chunks the content, embeds every chunk in one batch call and upserts
// the records in one batch write. Records get positional doc-chunk-{index}
// ids and a version stamp shared across the batch, so re-ingesting the same
// document overwrites rather than duplicates. Any failure aborts with no
// partial writes visible to later queries.
func (s *DocumentService) Ingest(ctx context.Context, content string, metadata IngestMetadata) (*IngestResult, error) {
	log.Printf("Starting document ingestion (content length %d)", len(content))

	chunks := utils.SemanticChunk(content, s.chunkSize)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document produced no chunks")
	}
	log.Printf("Content chunked into %d chunks", len(chunks))

	embeddings, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	if metadata.Source == "" {
		metadata.Source = "unknown"
	}
	if metadata.Type == "" {
		metadata.Type = "text"
	}
	if metadata.Tags == nil {
		metadata.Tags = []string{}
	}

	now := time.Now()
	version := now.UnixMilli()

	records := make([]vectorstore.Record, len(chunks))
	vectorIDs := make([]string, len(chunks))
	for i, chunk := range chunks {
		id := vectorIDPrefix + strconv.Itoa(i)
		records[i] = vectorstore.Record{
			ID:     id,
			Values: embeddings[i],
			Metadata: vectorstore.Metadata{
				Text:       chunk,
				Source:     metadata.Source,
				Tags:       metadata.Tags,
				Type:       metadata.Type,
				ChunkIndex: i,
				Version:    version,
				Timestamp:  now,
			},
		}
		vectorIDs[i] = id
	}

	if err := s.store.Upsert(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to store vectors: %w", err)
	}
	log.Printf("Upserted %d vectors (version %d)", len(records), version)

	s.pruneStaleVectors(ctx, len(chunks))

	return &IngestResult{
		Success:         true,
		ChunksProcessed: len(chunks),
		VectorIDs:       vectorIDs,
		Version:         version,
	}, nil
}

// pruneStaleVectors deletes doc-chunk ids left behind when a previous version
// of the document had more chunks than the current one. The new content is
// already fully ingested at this point, so failures are logged, not fatal.
func (s *DocumentService) pruneStaleVectors(ctx context.Context, chunkCount int) {
	records, err := s.store.List(ctx, 0)
	if err != nil {
		log.Printf("Warning: could not list vectors to prune stale chunks: %v", err)
		return
	}

	var stale []string
	for _, r := range records {
		suffix, ok := strings.CutPrefix(r.ID, vectorIDPrefix)
		if !ok {
			continue
		}
		index, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if index >= chunkCount {
			stale = append(stale, r.ID)
		}
	}
	if len(stale) == 0 {
		return
	}

	if err := s.store.Delete(ctx, stale); err != nil {
		log.Printf("Warning: failed to delete %d stale vectors: %v", len(stale), err)
		return
	}
	log.Printf("Pruned %d stale vectors from previous ingestion", len(stale))
}
