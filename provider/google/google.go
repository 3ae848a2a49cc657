package google_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const apiBase = "https://generativelanguage.googleapis.com/v1beta/models"

// client implements the provider interface using the Google Generative
// Language API (Gemini completions + embedding-001 embeddings).
type client struct {
	apiKey          string
	completionModel string
	embeddingModel  string
	temperature     float64
	maxTokens       int
	httpClient      *http.Client
}

// NewClient creates a new Google Generative Language client.
func NewClient(apiKey, completionModel, embeddingModel string, temperature float64, maxTokens int, timeout time.Duration) *client {
	return &client{
		apiKey:          apiKey,
		completionModel: completionModel,
		embeddingModel:  embeddingModel,
		temperature:     temperature,
		maxTokens:       maxTokens,
		httpClient:      &http.Client{Timeout: timeout},
	}
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// CreateEmbedding generates an embedding for each of the given texts using
// the batchEmbedContents endpoint, order-preserved.
func (c *client) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	type embedRequest struct {
		Model   string  `json:"model"`
		Content content `json:"content"`
	}
	reqs := make([]embedRequest, len(texts))
	model := "models/" + c.embeddingModel
	for i, t := range texts {
		reqs[i] = embedRequest{Model: model, Content: content{Parts: []part{{Text: t}}}}
	}
	body := map[string]interface{}{"requests": reqs}

	url := fmt.Sprintf("%s/%s:batchEmbedContents?key=%s", apiBase, c.embeddingModel, c.apiKey)
	raw, err := c.post(ctx, url, body)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Embeddings []struct {
			Values []float32 `json:"values"`
		} `json:"embeddings"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	vecs := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		vecs[i] = e.Values
	}
	return vecs, nil
}

// Generate sends a single prompt to the completion model and returns the
// concatenated text of the first candidate.
func (c *client) Generate(ctx context.Context, prompt string) (string, error) {
	body := map[string]interface{}{
		"contents": []content{{Parts: []part{{Text: prompt}}}},
		"generationConfig": map[string]interface{}{
			"temperature":     c.temperature,
			"maxOutputTokens": c.maxTokens,
		},
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", apiBase, c.completionModel, c.apiKey)
	raw, err := c.post(ctx, url, body)
	if err != nil {
		return "", err
	}

	var resp struct {
		Candidates []struct {
			Content content `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

func (c *client) post(ctx context.Context, url string, body interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, buf.String())
	}
	return buf.Bytes(), nil
}
