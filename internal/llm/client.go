package llm

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers.
type Client interface {
	// Generate sends a prompt and returns the raw text completion.
	Generate(ctx context.Context, prompt string) (string, error)
	// Probe performs a lightweight reachability check.
	Probe(ctx context.Context) error
}

// Config holds configuration for a single provider client.
type Config struct {
	Provider    string
	BaseURL     string
	Model       string
	APIKey      string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}
