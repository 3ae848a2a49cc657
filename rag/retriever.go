package rag

import (
	"context"
	"fmt"

	"github.com/finease/finease-backend/provider"
)

// Retriever wraps one document index and the shared embedder. It is a pure
// function of (index, question): no state is mutated by a retrieval.
type Retriever struct {
	index    *Index
	provider provider.Provider
	topK     int
}

func NewRetriever(index *Index, p provider.Provider, topK int) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{index: index, provider: p, topK: topK}
}

// Retrieve embeds the question and returns the texts of the top-K most
// similar chunks, most-similar first.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]string, error) {
	vecs, err := r.provider.CreateEmbedding(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("expected 1 query embedding, got %d", len(vecs))
	}

	hits := r.index.Search(vecs[0], r.topK)
	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Text
	}
	return texts, nil
}
