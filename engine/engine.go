// Package engine orchestrates the comparison pipeline: URL ingestion into
// per-document answer chains, and bilingual comparative question answering
// over a registered session.
package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/finease/finease-backend/config"
	"github.com/finease/finease-backend/internal/metrics"
	"github.com/finease/finease-backend/provider"
	"github.com/finease/finease-backend/rag"
	"github.com/finease/finease-backend/rag/session"
	"github.com/finease/finease-backend/tools/webfetch"
)

// synthesisPromptTemplate merges the two per-document answers into one
// comparative response. Placeholders: language, question, answer A, answer B.
const synthesisPromptTemplate = `You are a financial analyst. You have analyzed two financial products from two different websites.
Based ONLY on the information provided below, provide a clear, final answer.
First, summarize the findings for the user's question from both websites.
Then, provide a concluding comparison or recommendation.
**IMPORTANT**: Your entire final response MUST be in the following language: %[1]s

USER'S QUESTION: "%[2]s"
INFORMATION FROM WEBSITE A: "%[3]s"
INFORMATION FROM WEBSITE B: "%[4]s"

FINAL ANALYSIS (in %[1]s):`

// Service wires the fetcher, provider and session store into the two
// operations the API exposes. All dependencies are injected; Service holds
// no global state.
type Service struct {
	provider provider.Provider
	fetcher  webfetch.Fetcher
	sessions session.Store

	chunkSize    int
	chunkOverlap int
	topK         int

	log *log.Logger
}

func NewService(p provider.Provider, f webfetch.Fetcher, store session.Store, cfg config.RAGConfig) *Service {
	return &Service{
		provider:     p,
		fetcher:      f,
		sessions:     store,
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
		topK:         cfg.TopK,
		log:          log.New(log.Writer(), "[RAG] ", log.LstdFlags),
	}
}

// CreateSession ingests both URLs (concurrently), builds one answer chain
// per document and registers the pair under a fresh session ID. If either
// document fails, no session is registered.
func (s *Service) CreateSession(ctx context.Context, urlA, urlB string) (string, error) {
	chains := make([]*rag.AnswerChain, 2)
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range []string{urlA, urlB} {
		g.Go(func() error {
			chain, err := s.buildChain(gctx, u)
			if err != nil {
				return err
			}
			chains[i] = chain
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, c := range chains {
			if c != nil {
				c.Index().Close()
			}
		}
		return "", err
	}

	sess := &session.Session{
		ID:   uuid.NewString(),
		Doc1: chains[0],
		Doc2: chains[1],
	}
	s.sessions.Put(sess)
	metrics.SessionsCreated.Inc()
	s.log.Printf("session %s created (%s | %s)", sess.ID, urlA, urlB)
	return sess.ID, nil
}

// buildChain runs the per-document half of the pipeline:
// fetch -> chunk -> embed -> index -> chain.
func (s *Service) buildChain(ctx context.Context, url string) (*rag.AnswerChain, error) {
	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("processing %s: %w", url, err)
	}

	chunks := rag.SplitText(page.Text, s.chunkSize, s.chunkOverlap)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("processing %s: no chunks produced", url)
	}

	vectors, err := s.provider.CreateEmbedding(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embedding %s: %w", url, err)
	}

	index, err := rag.NewIndex(chunks, vectors)
	if err != nil {
		return nil, fmt.Errorf("indexing %s: %w", url, err)
	}
	metrics.ChunksIngested.Add(float64(len(chunks)))
	s.log.Printf("indexed %s: %d chunks", url, len(chunks))

	return rag.NewAnswerChain(index, s.provider, s.topK), nil
}

// Compare answers a question against both documents of a session and
// synthesizes a single comparative answer in the requested language. Both
// per-document calls must succeed before synthesis; either failure fails
// the whole call. No step is retried.
func (s *Service) Compare(ctx context.Context, sessionID, question, language string) (string, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return "", err
	}

	var answer1, answer2 string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		answer1, err = sess.Doc1.Answer(gctx, question, language)
		return err
	})
	g.Go(func() error {
		var err error
		answer2, err = sess.Doc2.Answer(gctx, question, language)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(synthesisPromptTemplate, language, question, answer1, answer2)
	final, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("synthesizing final answer: %w", err)
	}
	return final, nil
}

// SearchResults groups per-document hits for the debug search endpoint.
type SearchResults struct {
	Doc1 []rag.Hit `json:"doc1"`
	Doc2 []rag.Hit `json:"doc2"`
}

// Search runs a retrieval-only query against both documents of a session.
// mode "hybrid" fuses vector and keyword hits; anything else is pure
// vector search, matching what the answer chains see.
func (s *Service) Search(ctx context.Context, sessionID, query string, k int, mode string) (SearchResults, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return SearchResults{}, err
	}
	if k <= 0 || k > 50 {
		k = s.topK
	}

	vecs, err := s.provider.CreateEmbedding(ctx, []string{query})
	if err != nil {
		return SearchResults{}, fmt.Errorf("embedding query: %w", err)
	}

	var out SearchResults
	for _, d := range []struct {
		index *rag.Index
		hits  *[]rag.Hit
	}{
		{sess.Doc1.Index(), &out.Doc1},
		{sess.Doc2.Index(), &out.Doc2},
	} {
		if mode == "hybrid" {
			hits, err := d.index.HybridSearch(vecs[0], query, k)
			if err != nil {
				return SearchResults{}, err
			}
			*d.hits = hits
		} else {
			*d.hits = d.index.Search(vecs[0], k)
		}
	}
	return out, nil
}
