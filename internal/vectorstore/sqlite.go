package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/Alitindrawan24/personal-ai-chatbot/internal/utils"
)

// SQLiteStore keeps vectors in a single table with the embedding serialized
// as JSON text. Similarity is computed in process over all rows, which is
// fine at portfolio-document scale.
type SQLiteStore struct {
	db        *sql.DB
	dimension int
}

func NewSQLiteStore(dataSourceName string, dimension int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db, dimension: dimension}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS vectors (
        id TEXT PRIMARY KEY,
        embedding_json TEXT NOT NULL, -- JSON string of []float32
        text TEXT NOT NULL,
        source TEXT NOT NULL,
        tags_json TEXT NOT NULL,
        type TEXT NOT NULL,
        chunk_index INTEGER NOT NULL,
        version INTEGER NOT NULL,
        created_at DATETIME NOT NULL
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Upsert(ctx context.Context, records []Record) error {
	for _, r := range records {
		if len(r.Values) != s.dimension {
			return fmt.Errorf("vector dimension mismatch for %s: got %d, index expects %d", r.ID, len(r.Values), s.dimension)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO vectors (id, embedding_json, text, source, tags_json, type, chunk_index, version, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            embedding_json = excluded.embedding_json,
            text = excluded.text,
            source = excluded.source,
            tags_json = excluded.tags_json,
            type = excluded.type,
            chunk_index = excluded.chunk_index,
            version = excluded.version,
            created_at = excluded.created_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare vector upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		embeddingJSON, err := json.Marshal(r.Values)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding for %s: %w", r.ID, err)
		}
		tags := r.Metadata.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags for %s: %w", r.ID, err)
		}
		_, err = stmt.ExecContext(ctx, r.ID, string(embeddingJSON), r.Metadata.Text, r.Metadata.Source,
			string(tagsJSON), r.Metadata.Type, r.Metadata.ChunkIndex, r.Metadata.Version, r.Metadata.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to upsert vector %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 5
	}
	records, err := s.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(records))
	for _, r := range records {
		if len(r.Values) == 0 {
			log.Printf("Skipping vector %s due to missing embedding.", r.ID)
			continue
		}
		score, err := utils.CosineSimilarity(vector, r.Values)
		if err != nil {
			return nil, fmt.Errorf("failed to score vector %s: %w", r.ID, err)
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

func (s *SQLiteStore) Delete(ctx context.Context, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM vectors WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare vector delete: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("failed to delete vector %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	query := "SELECT id, embedding_json, text, source, tags_json, type, chunk_index, version, created_at FROM vectors ORDER BY id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var embeddingJSON, tagsJSON string
		var createdAt time.Time
		if err := rows.Scan(&r.ID, &embeddingJSON, &r.Metadata.Text, &r.Metadata.Source,
			&tagsJSON, &r.Metadata.Type, &r.Metadata.ChunkIndex, &r.Metadata.Version, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan vector row: %w", err)
		}
		if err := json.Unmarshal([]byte(embeddingJSON), &r.Values); err != nil {
			log.Printf("Warning: failed to unmarshal embedding for vector %s: %v. Embedding will be empty.", r.ID, err)
			r.Values = nil
		}
		if err := json.Unmarshal([]byte(tagsJSON), &r.Metadata.Tags); err != nil {
			r.Metadata.Tags = nil
		}
		r.Metadata.Timestamp = createdAt
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Info(ctx context.Context) (Info, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vectors").Scan(&count); err != nil {
		return Info{}, fmt.Errorf("failed to count vectors: %w", err)
	}
	return Info{Dimension: s.dimension, Count: count}, nil
}
