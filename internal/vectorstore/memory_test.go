package vectorstore

import (
	"context"
	"testing"
)

func record(id string, values []float32, text string) Record {
	return Record{ID: id, Values: values, Metadata: Metadata{Text: text}}
}

func TestMemoryStoreQueryOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(3)

	err := s.Upsert(ctx, []Record{
		record("a", []float32{1, 0, 0}, "exact"),
		record("b", []float32{0.9, 0.1, 0}, "close"),
		record("c", []float32{0, 1, 0}, "orthogonal"),
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	matches, err := s.Query(ctx, []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if matches[0].ID != "a" || matches[1].ID != "b" || matches[2].ID != "c" {
		t.Errorf("matches not sorted by descending score: %s %s %s", matches[0].ID, matches[1].ID, matches[2].ID)
	}
	if matches[0].Score < 0.999 {
		t.Errorf("identical vectors must score 1.0, got %f", matches[0].Score)
	}
}

func TestMemoryStoreQueryTopK(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)

	err := s.Upsert(ctx, []Record{
		record("a", []float32{1, 0}, ""),
		record("b", []float32{0.9, 0.1}, ""),
		record("c", []float32{0.8, 0.2}, ""),
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	matches, err := s.Query(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("expected topK to cap results at 2, got %d", len(matches))
	}
}

func TestMemoryStoreUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)

	if err := s.Upsert(ctx, []Record{record("a", []float32{1, 0}, "old")}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := s.Upsert(ctx, []Record{record("a", []float32{0, 1}, "new")}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	info, err := s.Info(ctx)
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if info.Count != 1 {
		t.Errorf("re-upserting the same id must not grow the store, count %d", info.Count)
	}

	records, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if records[0].Metadata.Text != "new" {
		t.Errorf("upsert must overwrite, got text %q", records[0].Metadata.Text)
	}
}

func TestMemoryStoreUpsertDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(3)

	err := s.Upsert(ctx, []Record{
		record("ok", []float32{1, 0, 0}, ""),
		record("bad", []float32{1, 0}, ""),
	})
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}

	// The batch is rejected as a whole.
	info, _ := s.Info(ctx)
	if info.Count != 0 {
		t.Errorf("failed batch must not be partially applied, count %d", info.Count)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)

	err := s.Upsert(ctx, []Record{
		record("a", []float32{1, 0}, ""),
		record("b", []float32{0, 1}, ""),
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if err := s.Delete(ctx, []string{"a", "missing"}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	records, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "b" {
		t.Errorf("expected only record b to remain, got %+v", records)
	}
}

func TestMemoryStoreListSortedAndLimited(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(1)

	err := s.Upsert(ctx, []Record{
		record("c", []float32{1}, ""),
		record("a", []float32{1}, ""),
		record("b", []float32{1}, ""),
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	records, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 2 || records[0].ID != "a" || records[1].ID != "b" {
		t.Errorf("expected first two ids in order, got %+v", records)
	}
}
