package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3"
)

// ollamaClient implements the Client interface for a local Ollama server.
type ollamaClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// newOllamaClient creates a new Ollama client. No API key is needed.
func newOllamaClient(cfg Config) (Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}

	return &ollamaClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: newHTTPClient(cfg.Timeout),
	}, nil
}

// Probe lists the installed models, which is cheap and needs no inference.
func (c *ollamaClient) Probe(ctx context.Context) error {
	_, err := doRequest(ctx, c.httpClient, "ollama", http.MethodGet, c.baseURL+"/api/tags", "", nil)
	return err
}

// Generate sends a non-streaming generation request.
func (c *ollamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
	}

	body, err := doRequest(ctx, c.httpClient, "ollama", http.MethodPost, c.baseURL+"/api/generate", "", requestBody)
	if err != nil {
		return "", err
	}

	var response ollamaResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if response.Response == "" {
		return "", fmt.Errorf("no content in response")
	}

	return response.Response, nil
}

// ollamaResponse represents the Ollama generate API response structure.
type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}
