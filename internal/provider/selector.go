// Package provider decides which analysis backend answers insight requests.
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/llm"
	"github.com/Veraticus/finsight/internal/model"
)

// DefaultProbeTimeout bounds a single reachability probe.
const DefaultProbeTimeout = 3 * time.Second

// Candidate is an external backend considered during selection.
// Client is nil when the backend is not configured.
type Candidate struct {
	Client llm.Client
	Name   model.ProviderName
}

// Options configures a Selector.
type Options struct {
	Logger       *slog.Logger
	ProbeTimeout time.Duration
}

// ProbeResult records the outcome of probing one candidate.
type ProbeResult struct {
	Err       error
	Name      model.ProviderName
	Duration  time.Duration
	Reachable bool
}

// Selector tracks the active analysis provider.
type Selector struct {
	logger       *slog.Logger
	active       model.ProviderName
	candidates   []Candidate
	probeTimeout time.Duration
	mu           sync.RWMutex
}

// NewSelector creates a selector over candidates given in priority order.
// The selector starts on the fallback provider until Initialize runs.
func NewSelector(candidates []Candidate, opts Options) *Selector {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Selector{
		candidates:   candidates,
		active:       model.ProviderFallback,
		probeTimeout: opts.ProbeTimeout,
		logger:       opts.Logger,
	}
}

// Initialize probes the candidates in priority order and activates the first
// reachable one, or the fallback when none answers. A failed probe only
// excludes that candidate; it is not retried.
func (s *Selector) Initialize(ctx context.Context) []ProbeResult {
	return s.InitializeWithProgress(ctx, nil)
}

// InitializeWithProgress behaves like Initialize and reports each probe to
// onProbe as it completes.
func (s *Selector) InitializeWithProgress(ctx context.Context, onProbe func(ProbeResult)) []ProbeResult {
	selected := model.ProviderFallback
	results := make([]ProbeResult, 0, len(s.candidates))

	for _, candidate := range s.candidates {
		result := s.probe(ctx, candidate)
		results = append(results, result)
		if onProbe != nil {
			onProbe(result)
		}

		if result.Reachable {
			selected = candidate.Name
			break
		}

		s.logger.Warn("Provider probe failed",
			"provider", candidate.Name,
			"duration", result.Duration,
			"error", result.Err)
	}

	s.mu.Lock()
	s.active = selected
	s.mu.Unlock()

	s.logger.Info("Selected analysis provider", "provider", selected)
	return results
}

func (s *Selector) probe(ctx context.Context, candidate Candidate) ProbeResult {
	result := ProbeResult{Name: candidate.Name}
	if candidate.Client == nil {
		result.Err = fmt.Errorf("%w: %s is not configured", common.ErrProviderUnavailable, candidate.Name)
		return result
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	start := time.Now()
	err := candidate.Client.Probe(probeCtx)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
		return result
	}

	result.Reachable = true
	return result
}

// Active returns the currently selected provider.
func (s *Selector) Active() model.ProviderName {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Switch makes name the active provider without probing it. A later failed
// call falls back per request.
func (s *Selector) Switch(name model.ProviderName) error {
	if _, err := model.ParseProviderName(string(name)); err != nil {
		return err
	}

	s.mu.Lock()
	previous := s.active
	s.active = name
	s.mu.Unlock()

	s.logger.Info("Switched analysis provider", "from", previous, "to", name)
	return nil
}

// Client returns the client of the active provider. It reports false when
// the fallback is active or the active provider has no configured client.
func (s *Selector) Client() (model.ProviderName, llm.Client, bool) {
	active := s.Active()
	if active == model.ProviderFallback {
		return active, nil, false
	}

	for _, candidate := range s.candidates {
		if candidate.Name == active {
			return active, candidate.Client, candidate.Client != nil
		}
	}
	return active, nil, false
}

// Candidates returns the candidate names in priority order.
func (s *Selector) Candidates() []model.ProviderName {
	names := make([]model.ProviderName, 0, len(s.candidates))
	for _, candidate := range s.candidates {
		names = append(names, candidate.Name)
	}
	return names
}

// Configured reports whether the named candidate has a client.
func (s *Selector) Configured(name model.ProviderName) bool {
	for _, candidate := range s.candidates {
		if candidate.Name == name {
			return candidate.Client != nil
		}
	}
	return false
}
