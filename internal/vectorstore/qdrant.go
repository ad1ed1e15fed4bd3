package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// QdrantStore is a minimal REST client to Qdrant. The collection is created
// with cosine distance on first use, so returned scores live in [0,1] like
// the other backends.
//
// Qdrant point ids must be integers or UUIDs, so the positional record id is
// mapped to a deterministic SHA1 UUID and carried verbatim in the payload.
type QdrantStore struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client

	ensureOnce sync.Once
	ensureErr  error
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Dimension  int
	Timeout    time.Duration
}

func NewQdrantStore(cfg QdrantConfig) *QdrantStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &QdrantStore{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		client:     &http.Client{Timeout: timeout},
	}
}

func pointID(recordID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(recordID)).String()
}

type qdrantPayload struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Source     string    `json:"source"`
	Tags       []string  `json:"tags"`
	Type       string    `json:"type"`
	ChunkIndex int       `json:"chunkIndex"`
	Version    int64     `json:"version"`
	Timestamp  time.Time `json:"timestamp"`
}

func (p qdrantPayload) metadata() Metadata {
	return Metadata{
		Text:       p.Text,
		Source:     p.Source,
		Tags:       p.Tags,
		Type:       p.Type,
		ChunkIndex: p.ChunkIndex,
		Version:    p.Version,
		Timestamp:  p.Timestamp,
	}
}

func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	s.ensureOnce.Do(func() {
		var status struct{}
		err := s.request(ctx, http.MethodGet, fmt.Sprintf("/collections/%s", s.collection), nil, &status)
		if err == nil {
			return
		}
		body := map[string]any{
			"vectors": map[string]any{
				"size":     s.dimension,
				"distance": "Cosine",
			},
		}
		s.ensureErr = s.request(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", s.collection), body, nil)
	})
	return s.ensureErr
}

func (s *QdrantStore) Upsert(ctx context.Context, records []Record) error {
	for _, r := range records {
		if len(r.Values) != s.dimension {
			return fmt.Errorf("vector dimension mismatch for %s: got %d, index expects %d", r.ID, len(r.Values), s.dimension)
		}
	}
	if err := s.ensureCollection(ctx); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	points := make([]map[string]any, len(records))
	for i, r := range records {
		points[i] = map[string]any{
			"id":     pointID(r.ID),
			"vector": r.Values,
			"payload": qdrantPayload{
				ID:         r.ID,
				Text:       r.Metadata.Text,
				Source:     r.Metadata.Source,
				Tags:       r.Metadata.Tags,
				Type:       r.Metadata.Type,
				ChunkIndex: r.Metadata.ChunkIndex,
				Version:    r.Metadata.Version,
				Timestamp:  r.Metadata.Timestamp,
			},
		}
	}
	body := map[string]any{"points": points}
	path := fmt.Sprintf("/collections/%s/points?wait=true", s.collection)
	if err := s.request(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (s *QdrantStore) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 5
	}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
		"with_vector":  false,
	}
	var result struct {
		Result []struct {
			Score   float64       `json:"score"`
			Payload qdrantPayload `json:"payload"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", s.collection)
	if err := s.request(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	matches := make([]Match, 0, len(result.Result))
	for _, hit := range result.Result {
		matches = append(matches, Match{
			Record: Record{ID: hit.Payload.ID, Metadata: hit.Payload.metadata()},
			Score:  hit.Score,
		})
	}
	return matches, nil
}

func (s *QdrantStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	points := make([]string, len(ids))
	for i, id := range ids {
		points[i] = pointID(id)
	}
	body := map[string]any{"points": points}
	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", s.collection)
	if err := s.request(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

func (s *QdrantStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 1000
	}
	body := map[string]any{
		"limit":        limit,
		"with_payload": true,
		"with_vector":  true,
	}
	var result struct {
		Result struct {
			Points []struct {
				Vector  []float32     `json:"vector"`
				Payload qdrantPayload `json:"payload"`
			} `json:"points"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/scroll", s.collection)
	if err := s.request(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, fmt.Errorf("qdrant scroll failed: %w", err)
	}

	records := make([]Record, 0, len(result.Result.Points))
	for _, p := range result.Result.Points {
		records = append(records, Record{
			ID:       p.Payload.ID,
			Values:   p.Vector,
			Metadata: p.Payload.metadata(),
		})
	}
	return records, nil
}

func (s *QdrantStore) Info(ctx context.Context) (Info, error) {
	var result struct {
		Result struct {
			PointsCount int `json:"points_count"`
			Config      struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	if err := s.request(ctx, http.MethodGet, fmt.Sprintf("/collections/%s", s.collection), nil, &result); err != nil {
		return Info{}, fmt.Errorf("qdrant collection info failed: %w", err)
	}
	return Info{Dimension: result.Result.Config.Params.Vectors.Size, Count: result.Result.PointsCount}, nil
}

func (s *QdrantStore) Close() error { return nil }

func (s *QdrantStore) request(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.url+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant returned status %d: %s", resp.StatusCode, string(detail))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
