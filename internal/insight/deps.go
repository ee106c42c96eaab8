// Package insight computes financial insight reports, either through the
// active analysis provider or from deterministic formulas.
package insight

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/finsight/internal/llm"
	"github.com/Veraticus/finsight/internal/model"
)

// DefaultRequestTimeout bounds a single provider analysis request.
const DefaultRequestTimeout = 60 * time.Second

// SimulationQuestion is the question attached to every what-if computation.
const SimulationQuestion = "what-if simulation"

// ProviderSelector exposes the provider state the engine reads and switches.
type ProviderSelector interface {
	Active() model.ProviderName
	Client() (model.ProviderName, llm.Client, bool)
	Switch(name model.ProviderName) error
}

// Deps contains the dependencies of the insight engine.
type Deps struct {
	// Selector decides which provider answers requests.
	Selector ProviderSelector
	// Prompts renders provider prompts. A default builder is used when nil.
	Prompts *PromptBuilder
	// Logger receives provider failures. Defaults to slog.Default().
	Logger *slog.Logger
	// Now stamps generated reports. Defaults to time.Now.
	Now func() time.Time
	// RequestTimeout bounds each provider call.
	RequestTimeout time.Duration
}

// Validate ensures all required dependencies are provided.
func (d *Deps) Validate() error {
	if d.Selector == nil {
		return fmt.Errorf("provider selector dependency is required")
	}
	return nil
}

// Engine produces insight reports. It holds no per-call state and is safe
// for concurrent use.
type Engine struct {
	selector       ProviderSelector
	prompts        *PromptBuilder
	logger         *slog.Logger
	now            func() time.Time
	requestTimeout time.Duration
}

// NewEngine creates an insight engine with the provided dependencies.
func NewEngine(deps Deps) (*Engine, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}

	if deps.Prompts == nil {
		prompts, err := NewPromptBuilder()
		if err != nil {
			return nil, err
		}
		deps.Prompts = prompts
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = DefaultRequestTimeout
	}

	return &Engine{
		selector:       deps.Selector,
		prompts:        deps.Prompts,
		logger:         deps.Logger,
		now:            deps.Now,
		requestTimeout: deps.RequestTimeout,
	}, nil
}
