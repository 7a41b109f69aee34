// Package embeddings converts chunk text into fixed-dimension vectors, with a
// deterministic local fallback when the remote service is unreachable.
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"
)

// MaxInputChars limits input to stay within the embedding API payload limit.
const MaxInputChars = 8000

// Config holds remote embedding client configuration.
type Config struct {
	BaseURL string // e.g. "https://generativelanguage.googleapis.com/v1beta"
	APIKey  string
	Model   string // e.g. "text-embedding-004"
}

// Client calls the remote embedding API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewClient creates a new remote embedding client.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    config.BaseURL,
		apiKey:     config.APIKey,
		model:      config.Model,
	}, nil
}

// embedRequest is the request payload for the embedding API.
type embedRequest struct {
	Model    string       `json:"model"`
	Content  embedContent `json:"content"`
	TaskType string       `json:"taskType"`
}

type embedContent struct {
	Parts []embedPart `json:"parts"`
}

type embedPart struct {
	Text string `json:"text"`
}

// embedResponse covers the known response shapes of the embedding API. The
// shape is not guaranteed stable, so extraction tries a closed set of
// matchers in order rather than probing dynamically.
type embedResponse struct {
	Embedding  *embeddingValues  `json:"embedding,omitempty"`
	Embeddings []embeddingValues `json:"embeddings,omitempty"`
	Values     []float32         `json:"values,omitempty"`
	Error      *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type embeddingValues struct {
	Values []float32 `json:"values"`
}

// shapeMatchers are tried in sequence; the first one returning a vector wins.
var shapeMatchers = []func(*embedResponse) ([]float32, bool){
	func(r *embedResponse) ([]float32, bool) {
		if r.Embedding != nil && len(r.Embedding.Values) > 0 {
			return r.Embedding.Values, true
		}
		return nil, false
	},
	func(r *embedResponse) ([]float32, bool) {
		if len(r.Embeddings) > 0 && len(r.Embeddings[0].Values) > 0 {
			return r.Embeddings[0].Values, true
		}
		return nil, false
	},
	func(r *embedResponse) ([]float32, bool) {
		if len(r.Values) > 0 {
			return r.Values, true
		}
		return nil, false
	},
}

// Embed calls the remote API and returns the raw embedding vector. Text
// exceeding MaxInputChars is truncated from the end.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if len(text) > MaxInputChars {
		// Back up to a rune boundary so the cut never splits a multi-byte
		// character.
		cut := MaxInputChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	req := embedRequest{
		Model:    "models/" + c.model,
		Content:  embedContent{Parts: []embedPart{{Text: text}}},
		TaskType: "RETRIEVAL_DOCUMENT",
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var embResp embedResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if embResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", embResp.Error.Message)
	}

	for _, match := range shapeMatchers {
		if vector, ok := match(&embResp); ok {
			return vector, nil
		}
	}

	slog.Debug("embedding response matched no known shape", "model", c.model)
	return nil, fmt.Errorf("no embedding in response")
}
