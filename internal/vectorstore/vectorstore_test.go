package vectorstore

import (
	"context"
	"testing"
)

func TestInMemoryStore_UpsertRejectsEmptyID(t *testing.T) {
	s := NewInMemoryStore()
	err := s.Upsert(context.Background(), "", []float32{1, 0}, nil)
	if err == nil {
		t.Error("expected error for empty id")
	}
}

func TestInMemoryStore_QueryReturnsNearestFirst(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	_ = s.Upsert(ctx, "identical", []float32{1, 0, 0}, nil)
	_ = s.Upsert(ctx, "orthogonal", []float32{0, 1, 0}, nil)
	_ = s.Upsert(ctx, "opposite", []float32{-1, 0, 0}, nil)

	matches, err := s.Query(ctx, []float32{1, 0, 0}, 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if matches[0].ID != "identical" {
		t.Errorf("expected identical vector to rank first, got %q", matches[0].ID)
	}
	if matches[2].ID != "opposite" {
		t.Errorf("expected opposite vector to rank last, got %q", matches[2].ID)
	}
}

func TestInMemoryStore_QueryRespectsTopK(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	_ = s.Upsert(ctx, "a", []float32{1, 0}, nil)
	_ = s.Upsert(ctx, "b", []float32{1, 0}, nil)
	_ = s.Upsert(ctx, "c", []float32{1, 0}, nil)

	matches, err := s.Query(ctx, []float32{1, 0}, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Errorf("expected 2 matches, got %d", len(matches))
	}
}

func TestInMemoryStore_QueryFiltersByMetadata(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	_ = s.Upsert(ctx, "saas", []float32{1, 0}, map[string]any{"industry": "saas"})
	_ = s.Upsert(ctx, "retail", []float32{1, 0}, map[string]any{"industry": "retail"})

	matches, err := s.Query(ctx, []float32{1, 0}, 10, map[string]any{"industry": "saas"})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].ID != "saas" {
		t.Errorf("expected only saas match, got %+v", matches)
	}
}

func TestInMemoryStore_QueryZeroTopKReturnsEmpty(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	_ = s.Upsert(ctx, "a", []float32{1, 0}, nil)

	matches, err := s.Query(ctx, []float32{1, 0}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches for topK=0, got %d", len(matches))
	}
}

func TestCosineSimilarity_MismatchedLengthReturnsZero(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 2}, []float32{1}); got != 0 {
		t.Errorf("expected 0 for mismatched lengths, got %f", got)
	}
}
