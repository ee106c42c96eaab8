package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/llm"
)

// Default timeouts for provider traffic.
const (
	DefaultProbeTimeout   = 3 * time.Second
	DefaultRequestTimeout = 60 * time.Second
)

// Providers holds the settings of every analysis backend.
type Providers struct {
	Local          llm.Config
	HostedA        llm.Config
	HostedB        llm.Config
	ProbeTimeout   time.Duration
	RequestTimeout time.Duration
}

// HostedAConfigured reports whether the first hosted API has credentials.
func (p Providers) HostedAConfigured() bool {
	return p.HostedA.APIKey != ""
}

// HostedBConfigured reports whether the second hosted API has credentials.
func (p Providers) HostedBConfigured() bool {
	return p.HostedB.APIKey != ""
}

// LoadProvidersConfig loads provider configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or FINSIGHT_ env vars)
// 2. Direct environment variables (HUGGINGFACE_API_KEY, COHERE_API_KEY)
// 3. Default values
func LoadProvidersConfig() (Providers, error) {
	cfg := Providers{
		Local:          llm.Config{Provider: llm.ProviderOllama},
		HostedA:        llm.Config{Provider: llm.ProviderHuggingFace},
		HostedB:        llm.Config{Provider: llm.ProviderCohere},
		ProbeTimeout:   DefaultProbeTimeout,
		RequestTimeout: DefaultRequestTimeout,
	}

	if v := viper.GetDuration("providers.probe_timeout"); v != 0 {
		cfg.ProbeTimeout = v
	}
	if v := viper.GetDuration("providers.request_timeout"); v != 0 {
		cfg.RequestTimeout = v
	}

	cfg.Local.BaseURL = viper.GetString("providers.local.url")
	cfg.Local.Model = viper.GetString("providers.local.model")

	cfg.HostedA.BaseURL = viper.GetString("providers.hosted_a.url")
	cfg.HostedA.Model = viper.GetString("providers.hosted_a.model")
	cfg.HostedA.APIKey = viper.GetString("providers.hosted_a.api_key")

	cfg.HostedB.BaseURL = viper.GetString("providers.hosted_b.url")
	cfg.HostedB.Model = viper.GetString("providers.hosted_b.model")
	cfg.HostedB.APIKey = viper.GetString("providers.hosted_b.api_key")
	cfg.HostedB.MaxTokens = viper.GetInt("providers.hosted_b.max_tokens")
	cfg.HostedB.Temperature = llm.DefaultCohereTemperature
	if viper.IsSet("providers.hosted_b.temperature") {
		cfg.HostedB.Temperature = viper.GetFloat64("providers.hosted_b.temperature")
	}

	// Override with direct environment variables if not set
	if cfg.HostedA.APIKey == "" {
		cfg.HostedA.APIKey = os.Getenv("HUGGINGFACE_API_KEY")
	}
	if cfg.HostedB.APIKey == "" {
		cfg.HostedB.APIKey = os.Getenv("COHERE_API_KEY")
	}

	for _, c := range []*llm.Config{&cfg.Local, &cfg.HostedA, &cfg.HostedB} {
		c.Timeout = cfg.RequestTimeout
	}

	if err := cfg.Validate(); err != nil {
		return Providers{}, err
	}
	return cfg, nil
}

// Validate checks the loaded values.
func (p Providers) Validate() error {
	if p.ProbeTimeout < 0 {
		return fmt.Errorf("%w: providers.probe_timeout must be positive", common.ErrInvalidConfig)
	}
	if p.RequestTimeout < 0 {
		return fmt.Errorf("%w: providers.request_timeout must be positive", common.ErrInvalidConfig)
	}
	if p.HostedB.Temperature < 0 || p.HostedB.Temperature > 5 {
		return fmt.Errorf("%w: providers.hosted_b.temperature must be between 0 and 5", common.ErrInvalidConfig)
	}
	if p.HostedB.MaxTokens < 0 {
		return fmt.Errorf("%w: providers.hosted_b.max_tokens must not be negative", common.ErrInvalidConfig)
	}
	return nil
}
