package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxResponseSize bounds the embedding response body.
const maxResponseSize = 4 * 1024 * 1024

// OllamaEmbedder generates embeddings via an Ollama server's /api/embeddings
// endpoint. The server applies the model's own token budget; the client
// additionally caps request size so oversized documents are truncated rather
// than rejected.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	dims       int
	maxBytes   int
	httpClient *http.Client
}

// NewOllamaEmbedder creates an embedder against baseURL (default
// http://localhost:11434) using the named model (default nomic-embed-text,
// 768 dimensions).
func NewOllamaEmbedder(baseURL, model string, dims int) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	if dims <= 0 {
		dims = 768
	}
	return &OllamaEmbedder{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		dims:       dims,
		maxBytes:   defaultMaxBytes,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	body, err := json.Marshal(ollamaRequest{Model: e.model, Prompt: truncate(text, e.maxBytes)})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrModelUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrModelUnavailable, err)
	}
	var out ollamaResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", ErrModelUnavailable, err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ErrModelUnavailable)
	}
	return Vector(out.Embedding), nil
}

func (e *OllamaEmbedder) Dimensions() int { return e.dims }

func (e *OllamaEmbedder) Model() string { return e.model }
