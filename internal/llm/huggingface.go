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
	defaultHuggingFaceURL   = "https://api-inference.huggingface.co/models"
	defaultHuggingFaceModel = "mistralai/Mistral-7B-Instruct-v0.2"
)

// huggingFaceClient implements the Client interface for the Hugging Face
// inference API.
type huggingFaceClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// newHuggingFaceClient creates a new Hugging Face inference client.
func newHuggingFaceClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: hugging face API key is required", common.ErrMissingConfig)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultHuggingFaceURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultHuggingFaceModel
	}

	return &huggingFaceClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      model,
		httpClient: newHTTPClient(cfg.Timeout),
	}, nil
}

func (c *huggingFaceClient) modelURL() string {
	return c.baseURL + "/" + c.model
}

// Probe fetches the model status endpoint.
func (c *huggingFaceClient) Probe(ctx context.Context) error {
	_, err := doRequest(ctx, c.httpClient, "hugging face", http.MethodGet, c.modelURL(), c.apiKey, nil)
	return err
}

// Generate sends the prompt as the model inputs and returns only the
// completion. Text generation echoes the inputs unless return_full_text is
// off, and some deployments ignore the flag, so a leading echo is cut too.
func (c *huggingFaceClient) Generate(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]any{
		"inputs": prompt,
		"parameters": map[string]any{
			"return_full_text": false,
		},
	}

	body, err := doRequest(ctx, c.httpClient, "hugging face", http.MethodPost, c.modelURL(), c.apiKey, requestBody)
	if err != nil {
		return "", err
	}

	generated, err := parseHuggingFaceResponse(body)
	if err != nil {
		return "", err
	}

	completion := strings.TrimSpace(strings.TrimPrefix(generated, prompt))
	if completion == "" {
		return "", fmt.Errorf("no generated text beyond the prompt")
	}
	return completion, nil
}

// parseHuggingFaceResponse accepts both the list form
// [{"generated_text": ...}] and the single object form.
func parseHuggingFaceResponse(body []byte) (string, error) {
	var list []huggingFaceGeneration
	if err := json.Unmarshal(body, &list); err == nil {
		if len(list) == 0 || list[0].GeneratedText == "" {
			return "", fmt.Errorf("no generated text in response")
		}
		return list[0].GeneratedText, nil
	}

	var single huggingFaceGeneration
	if err := json.Unmarshal(body, &single); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if single.GeneratedText == "" {
		return "", fmt.Errorf("no generated text in response")
	}
	return single.GeneratedText, nil
}

// huggingFaceGeneration represents one text-generation result.
type huggingFaceGeneration struct {
	GeneratedText string `json:"generated_text"`
}
