package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Alitindrawan24/personal-ai-chatbot/internal/utils"
)

// MemoryStore is a brute-force cosine-similarity store. It backs tests and
// single-instance deployments that can afford to re-ingest on restart.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	records   map[string]Record
}

func NewMemoryStore(dimension int) *MemoryStore {
	return &MemoryStore{
		dimension: dimension,
		records:   make(map[string]Record),
	}
}

func (s *MemoryStore) Upsert(ctx context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if len(r.Values) != s.dimension {
			return fmt.Errorf("vector dimension mismatch for %s: got %d, index expects %d", r.ID, len(r.Values), s.dimension)
		}
	}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}

	matches := make([]Match, 0, len(s.records))
	for _, r := range s.records {
		score, err := utils.CosineSimilarity(vector, r.Values)
		if err != nil {
			return nil, fmt.Errorf("failed to score record %s: %w", r.ID, err)
		}
		matches = append(matches, Match{Record: r, Score: float64(score)})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *MemoryStore) Delete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.records, id)
	}
	return nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *MemoryStore) Info(ctx context.Context) (Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Info{Dimension: s.dimension, Count: len(s.records)}, nil
}

func (s *MemoryStore) Close() error { return nil }
