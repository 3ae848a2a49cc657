package rag

import (
	"testing"
)

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	chunks := []string{
		"fixed deposit with 6.5 percent interest",
		"savings account details and fees",
		"premature withdrawal penalty terms",
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	ix, err := NewIndex(chunks, vectors)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	t.Cleanup(ix.Close)
	return ix
}

func TestNewIndexValidation(t *testing.T) {
	if _, err := NewIndex([]string{"a"}, nil); err == nil {
		t.Fatal("expected error for chunk/vector mismatch")
	}
	if _, err := NewIndex(nil, nil); err == nil {
		t.Fatal("expected error for empty index")
	}
}

func TestSearchOrdering(t *testing.T) {
	ix := buildTestIndex(t)

	hits := ix.Search([]float32{0.9, 0.1, 0}, 3)
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].ChunkIndex != 0 {
		t.Errorf("expected chunk 0 first, got %d", hits[0].ChunkIndex)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("hits not sorted by decreasing similarity at %d", i)
		}
		if hits[i].Rank != i+1 {
			t.Errorf("rank %d expected at position %d, got %d", i+1, i, hits[i].Rank)
		}
	}
}

func TestSearchKClamped(t *testing.T) {
	ix := buildTestIndex(t)

	if got := len(ix.Search([]float32{1, 0, 0}, 10)); got != 3 {
		t.Fatalf("expected min(k, total)=3 results, got %d", got)
	}
	if got := len(ix.Search([]float32{1, 0, 0}, 2)); got != 2 {
		t.Fatalf("expected 2 results, got %d", got)
	}
}

func TestSearchTieBreakByChunkOrder(t *testing.T) {
	chunks := []string{"first", "second", "third"}
	// Identical vectors: every chunk scores the same.
	vectors := [][]float32{{1, 1}, {1, 1}, {1, 1}}
	ix, err := NewIndex(chunks, vectors)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	defer ix.Close()

	hits := ix.Search([]float32{1, 1}, 3)
	for i, h := range hits {
		if h.ChunkIndex != i {
			t.Fatalf("tie not broken by chunk order: position %d has chunk %d", i, h.ChunkIndex)
		}
	}
}

func TestSearchDeterministic(t *testing.T) {
	ix := buildTestIndex(t)
	q := []float32{0.3, 0.3, 0.4}

	a := ix.Search(q, 3)
	b := ix.Search(q, 3)
	for i := range a {
		if a[i].ChunkIndex != b[i].ChunkIndex || a[i].Score != b[i].Score {
			t.Fatalf("search not deterministic at position %d", i)
		}
	}
}

func TestKeywordSearch(t *testing.T) {
	ix := buildTestIndex(t)

	hits, err := ix.KeywordSearch("withdrawal penalty", 3)
	if err != nil {
		t.Fatalf("KeywordSearch: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected at least one keyword hit")
	}
	if hits[0].ChunkIndex != 2 {
		t.Errorf("expected penalty chunk first, got %d", hits[0].ChunkIndex)
	}
}

func TestHybridSearch(t *testing.T) {
	ix := buildTestIndex(t)

	hits, err := ix.HybridSearch([]float32{1, 0, 0}, "interest", 3)
	if err != nil {
		t.Fatalf("HybridSearch: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected hybrid hits")
	}
	if hits[0].ChunkIndex != 0 {
		t.Errorf("expected chunk 0 to win the fusion, got %d", hits[0].ChunkIndex)
	}
}

func TestCosine(t *testing.T) {
	if got := cosine([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Errorf("identical vectors should score ~1, got %f", got)
	}
	if got := cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors should score 0, got %f", got)
	}
	if got := cosine(nil, []float32{1}); got != 0 {
		t.Errorf("empty vector should score 0, got %f", got)
	}
}
