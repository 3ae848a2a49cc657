// Package metrics exposes a small set of Prometheus counters on /metrics.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/finease/finease-backend/provider"
)

var (
	LLMCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finease_llm_calls_total",
		Help: "External model calls by kind and outcome.",
	}, []string{"kind", "outcome"})

	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finease_sessions_created_total",
		Help: "Comparison sessions successfully created.",
	})

	ChunksIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finease_chunks_ingested_total",
		Help: "Document chunks embedded and indexed.",
	})

	MessagesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finease_chat_messages_stored_total",
		Help: "Chat messages persisted.",
	})
)

// meteredProvider counts embedding and generation calls around an inner
// provider.
type meteredProvider struct {
	inner provider.Provider
}

// MeterProvider wraps a provider so every external call is counted.
func MeterProvider(inner provider.Provider) provider.Provider {
	return &meteredProvider{inner: inner}
}

func (m *meteredProvider) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := m.inner.CreateEmbedding(ctx, texts)
	LLMCalls.WithLabelValues("embedding", outcome(err)).Inc()
	return vecs, err
}

func (m *meteredProvider) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := m.inner.Generate(ctx, prompt)
	LLMCalls.WithLabelValues("generate", outcome(err)).Inc()
	return out, err
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
