package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Veraticus/finsight/internal/common"
)

const (
	defaultCohereURL   = "https://api.cohere.ai/v1"
	defaultCohereModel = "command"

	// DefaultCohereTemperature is used when no temperature is configured.
	DefaultCohereTemperature = 0.3
)

// cohereClient implements the Client interface for the Cohere generate API.
type cohereClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

// newCohereClient creates a new Cohere API client.
func newCohereClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: cohere API key is required", common.ErrMissingConfig)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultCohereURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultCohereModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1500
	}

	return &cohereClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		httpClient:  newHTTPClient(cfg.Timeout),
	}, nil
}

// Probe lists the available models.
func (c *cohereClient) Probe(ctx context.Context) error {
	_, err := doRequest(ctx, c.httpClient, "cohere", http.MethodGet, c.baseURL+"/models", c.apiKey, nil)
	return err
}

// Generate sends a generation request.
func (c *cohereClient) Generate(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]any{
		"model":       c.model,
		"prompt":      prompt,
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
	}

	body, err := doRequest(ctx, c.httpClient, "cohere", http.MethodPost, c.baseURL+"/generate", c.apiKey, requestBody)
	if err != nil {
		return "", err
	}

	var response cohereResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Generations) > 0 && response.Generations[0].Text != "" {
		return response.Generations[0].Text, nil
	}
	if response.Text != "" {
		return response.Text, nil
	}

	return "", fmt.Errorf("no completion returned")
}

// cohereResponse represents the Cohere generate API response structure.
type cohereResponse struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Generations []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"generations"`
}
