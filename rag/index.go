package rag

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/blevesearch/bleve"
)

const rrfK = 60 // reciprocal-rank-fusion constant

// Hit is one retrieved chunk with its score.
type Hit struct {
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	Rank       int     `json:"rank"`
}

// Index owns the chunks and embedding vectors of exactly one document.
// It is built once and never updated; vectors from different documents are
// never mixed. Alongside the brute-force vector search it keeps a mem-only
// BM25 index over the same chunks for keyword and hybrid lookups.
type Index struct {
	chunks  []string
	vectors [][]float32
	bm      bleve.Index
}

type indexedChunk struct {
	Text string `json:"text"`
}

// NewIndex builds an index from a parallel list of chunks and their vectors.
func NewIndex(chunks []string, vectors [][]float32) (*Index, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("chunk/vector length mismatch: %d vs %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("cannot build index from zero chunks")
	}

	bm, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("bleve: %w", err)
	}
	for i, c := range chunks {
		if err := bm.Index(chunkID(i), indexedChunk{Text: c}); err != nil {
			_ = bm.Close()
			return nil, fmt.Errorf("indexing chunk %d: %w", i, err)
		}
	}

	ix := &Index{
		chunks:  append([]string(nil), chunks...),
		vectors: vectors,
		bm:      bm,
	}
	return ix, nil
}

func (ix *Index) Len() int { return len(ix.chunks) }

// Close releases the keyword index.
func (ix *Index) Close() {
	if ix.bm != nil {
		_ = ix.bm.Close()
	}
}

// Search returns the min(k, Len) chunks most similar to qvec, most-similar
// first; equal scores keep original chunk order.
func (ix *Index) Search(qvec []float32, k int) []Hit {
	hits := make([]Hit, len(ix.chunks))
	for i := range ix.chunks {
		hits[i] = Hit{ChunkIndex: i, Text: ix.chunks[i], Score: cosine(qvec, ix.vectors[i])}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > len(hits) {
		k = len(hits)
	}
	if k < 0 {
		k = 0
	}
	hits = hits[:k]
	for i := range hits {
		hits[i].Rank = i + 1
	}
	return hits
}

// KeywordSearch runs a BM25 query over the chunks.
func (ix *Index) KeywordSearch(q string, k int) ([]Hit, error) {
	query := bleve.NewQueryStringQuery(q)
	req := bleve.NewSearchRequestOptions(query, k, 0, false)
	res, err := ix.bm.Search(req)
	if err != nil {
		return nil, err
	}
	var out []Hit
	for i, hit := range res.Hits {
		idx, err := strconv.Atoi(hit.ID)
		if err != nil || idx < 0 || idx >= len(ix.chunks) {
			continue
		}
		out = append(out, Hit{ChunkIndex: idx, Text: ix.chunks[idx], Score: hit.Score, Rank: i + 1})
		if len(out) >= k {
			break
		}
	}
	return out, nil
}

// HybridSearch fuses vector and keyword results with reciprocal-rank fusion.
func (ix *Index) HybridSearch(qvec []float32, q string, k int) ([]Hit, error) {
	vecHits := ix.Search(qvec, k)
	bmHits, err := ix.KeywordSearch(q, k)
	if err != nil {
		return nil, err
	}
	return fuseRRF(vecHits, bmHits, k), nil
}

func fuseRRF(a, b []Hit, k int) []Hit {
	type agg struct {
		item  Hit
		score float64
	}
	m := map[int]*agg{}
	add := func(list []Hit) {
		for _, h := range list {
			x, ok := m[h.ChunkIndex]
			if !ok {
				x = &agg{item: h}
				m[h.ChunkIndex] = x
			}
			x.score += 1.0 / float64(rrfK+h.Rank)
		}
	}
	add(a)
	add(b)

	fused := make([]Hit, 0, len(m))
	for _, v := range m {
		h := v.item
		h.Score = v.score
		fused = append(fused, h)
	}
	sort.SliceStable(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].ChunkIndex < fused[j].ChunkIndex
	})
	if k > len(fused) {
		k = len(fused)
	}
	fused = fused[:k]
	for i := range fused {
		fused[i].Rank = i + 1
	}
	return fused
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func chunkID(i int) string { return strconv.Itoa(i) }
