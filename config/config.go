package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the FinEase backend.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Provider ProviderConfig `mapstructure:"provider"`
	Fetcher  FetcherConfig  `mapstructure:"fetcher"`
	RAG      RAGConfig      `mapstructure:"rag"`
	Sessions SessionsConfig `mapstructure:"sessions"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address     string   `mapstructure:"address"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// ProviderConfig selects and configures the LLM/embedding provider.
type ProviderConfig struct {
	Client          string        `mapstructure:"client"` // google | openai
	GoogleAPIKey    string        `mapstructure:"google_api_key"`
	OpenAIAPIKey    string        `mapstructure:"openai_api_key"`
	CompletionModel string        `mapstructure:"completion_model"`
	EmbeddingModel  string        `mapstructure:"embedding_model"`
	Temperature     float64       `mapstructure:"temperature"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// FetcherConfig contains page fetching and extraction settings.
type FetcherConfig struct {
	Type        string        `mapstructure:"type"`    // http | chromedp
	ExtractMode string        `mapstructure:"extract"` // body | article
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxChars    int           `mapstructure:"max_chars"`
	UserAgent   string        `mapstructure:"user_agent"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

// RAGConfig contains chunking and retrieval parameters.
type RAGConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
	TopK         int `mapstructure:"top_k"`
}

// SessionsConfig bounds the in-memory comparison-session store.
type SessionsConfig struct {
	TTL      time.Duration `mapstructure:"ttl"`
	Capacity int           `mapstructure:"capacity"`
}

// MongoConfig contains chat persistence settings.
type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// RedisConfig configures the optional page cache. Empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoadConfig reads config.yaml (or the given path) plus FINEASE_* env
// overrides and returns the unmarshalled configuration.
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.address", ":8000")
	viper.SetDefault("server.cors_origins", []string{
		"https://fin-ease.vercel.app",
		"http://localhost:3000",
	})
	viper.SetDefault("provider.client", "google")
	viper.SetDefault("provider.completion_model", "gemini-1.5-flash-latest")
	viper.SetDefault("provider.embedding_model", "embedding-001")
	viper.SetDefault("provider.temperature", 0.3)
	viper.SetDefault("provider.max_tokens", 2048)
	viper.SetDefault("provider.timeout", 60*time.Second)
	viper.SetDefault("fetcher.type", "http")
	viper.SetDefault("fetcher.extract", "body")
	viper.SetDefault("fetcher.timeout", 30*time.Second)
	viper.SetDefault("fetcher.max_chars", 100000)
	viper.SetDefault("fetcher.user_agent", "Mozilla/5.0 (compatible; FinEaseBot/1.0)")
	viper.SetDefault("fetcher.cache_ttl", time.Hour)
	viper.SetDefault("rag.chunk_size", 1000)
	viper.SetDefault("rag.chunk_overlap", 100)
	viper.SetDefault("rag.top_k", 5)
	viper.SetDefault("sessions.ttl", 48*time.Hour)
	viper.SetDefault("sessions.capacity", 512)
	viper.SetDefault("mongo.database", "chatbotdb")

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("FINEASE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Env-only deployments have no config file; that is fine.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Bare env vars win for secrets so deployments don't need the prefix.
	if v := os.Getenv("MONGO_URL"); v != "" {
		cfg.Mongo.URL = v
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.Provider.GoogleAPIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Provider.OpenAIAPIKey = v
	}

	return &cfg, nil
}
