package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/finease/finease-backend/config"
	google_provider "github.com/finease/finease-backend/provider/google"
	openai_provider "github.com/finease/finease-backend/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	Google Client = "google"
	OpenAI Client = "openai"
)

// Provider is the interface that all LLM implementations must satisfy.
// CreateEmbedding returns one vector per input text, order-preserved.
// Generate sends a single prompt and returns the model's raw text output.
type Provider interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewProvider creates a new LLM client based on the provided configuration.
func NewProvider(cfg config.ProviderConfig) (Provider, error) {
	switch Client(cfg.Client) {
	case Google:
		if cfg.GoogleAPIKey == "" {
			return nil, errors.New("GOOGLE_API_KEY not set")
		}
		return google_provider.NewClient(
			cfg.GoogleAPIKey,
			cfg.CompletionModel,
			cfg.EmbeddingModel,
			cfg.Temperature,
			cfg.MaxTokens,
			cfg.Timeout,
		), nil
	case OpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY not set")
		}
		return openai_provider.NewClient(
			cfg.OpenAIAPIKey,
			cfg.CompletionModel,
			cfg.EmbeddingModel,
			cfg.Temperature,
			cfg.MaxTokens,
			cfg.Timeout,
		), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Client)
	}
}
