package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finsight/internal/llm"
	"github.com/Veraticus/finsight/internal/model"
)

// ComputeInsight returns the report for one snapshot and question. Provider
// failures of any kind are logged and answered with the deterministic
// report; the selector keeps its active provider.
func (e *Engine) ComputeInsight(ctx context.Context, s model.Snapshot, question string) model.InsightReport {
	base := ComputeFallbackInsight(s)
	base.GeneratedAt = e.now()

	name, client, ok := e.selector.Client()
	if !ok {
		if name != model.ProviderFallback {
			e.logger.Warn("Active provider has no client, using fallback", "provider", name)
		}
		return base
	}

	start := time.Now()
	report, err := e.askProvider(ctx, client, s, question, base)
	if err != nil {
		e.logger.Warn("Provider analysis failed, using fallback",
			"provider", name,
			"duration", time.Since(start),
			"error", err)
		return base
	}

	report.Source = name
	e.logger.Debug("Provider analysis completed",
		"provider", name,
		"duration", time.Since(start),
		"health_score", report.HealthScore)
	return report
}

func (e *Engine) askProvider(ctx context.Context, client llm.Client, s model.Snapshot, question string, base model.InsightReport) (model.InsightReport, error) {
	prompt, err := e.prompts.BuildInsightPrompt(NewPromptData(s, question))
	if err != nil {
		return model.InsightReport{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	raw, err := client.Generate(callCtx, prompt)
	if err != nil {
		return model.InsightReport{}, fmt.Errorf("provider request failed: %w", err)
	}

	return ParseReply(raw, base)
}

// ActiveProvider returns the provider currently answering requests.
func (e *Engine) ActiveProvider() model.ProviderName {
	return e.selector.Active()
}

// SwitchProvider activates name without probing it.
func (e *Engine) SwitchProvider(name model.ProviderName) error {
	return e.selector.Switch(name)
}

// TestConnection sends one real analysis request for a minimal snapshot to
// the active provider and reports whether it completed. The fallback is
// always available. The active provider is never changed.
func (e *Engine) TestConnection(ctx context.Context) bool {
	name, client, ok := e.selector.Client()
	if name == model.ProviderFallback {
		return true
	}
	if !ok {
		return false
	}

	prompt, err := e.prompts.BuildInsightPrompt(NewPromptData(connectionTestSnapshot(), "connection test"))
	if err != nil {
		e.logger.Warn("Failed to build connection test prompt", "error", err)
		return false
	}

	callCtx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	if _, err := client.Generate(callCtx, prompt); err != nil {
		e.logger.Warn("Provider connection test failed", "provider", name, "error", err)
		return false
	}
	return true
}

func connectionTestSnapshot() model.Snapshot {
	return model.Snapshot{
		Income: []model.LineItem{
			{ID: "test-income", Name: "Salary", Category: model.CategorySalary, Amount: decimal.NewFromInt(1000)},
		},
		FixedExpenses: []model.LineItem{
			{ID: "test-rent", Name: "Rent", Category: model.CategoryHousing, Amount: decimal.NewFromInt(500)},
		},
		Mood: 5,
	}
}
