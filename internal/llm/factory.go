package llm

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/finsight/internal/common"
)

// Supported provider identifiers for Config.Provider.
const (
	ProviderOllama      = "ollama"
	ProviderHuggingFace = "huggingface"
	ProviderCohere      = "cohere"
)

// NewClient creates an LLM client based on the provided configuration.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOllama:
		return newOllamaClient(cfg)
	case ProviderHuggingFace:
		return newHuggingFaceClient(cfg)
	case ProviderCohere:
		return newCohereClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, cfg.Provider)
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
