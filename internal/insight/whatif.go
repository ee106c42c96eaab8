package insight

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finsight/internal/model"
)

// Simulate applies overrides to base and computes the resulting report with
// the fixed simulation question. base is not modified.
func (e *Engine) Simulate(ctx context.Context, base model.Snapshot, overrides model.Overrides) model.InsightReport {
	return e.ComputeInsight(ctx, base.Apply(overrides), SimulationQuestion)
}

// WhatIfResult pairs a baseline report with its simulated counterpart.
type WhatIfResult struct {
	Baseline         model.InsightReport `json:"baseline"`
	Simulated        model.InsightReport `json:"simulated"`
	NetBalanceDelta  decimal.Decimal     `json:"netBalanceDelta"`
	YearlyDelta      decimal.Decimal     `json:"yearlyDelta"`
	HealthScoreDelta int                 `json:"healthScoreDelta"`
}

// Compare computes the baseline and simulated reports and their differences.
func (e *Engine) Compare(ctx context.Context, base model.Snapshot, overrides model.Overrides) WhatIfResult {
	baseline := e.ComputeInsight(ctx, base, SimulationQuestion)
	simulated := e.Simulate(ctx, base, overrides)

	return WhatIfResult{
		Baseline:         baseline,
		Simulated:        simulated,
		NetBalanceDelta:  simulated.Projections.Monthly.Sub(baseline.Projections.Monthly),
		YearlyDelta:      simulated.Projections.Yearly.Sub(baseline.Projections.Yearly),
		HealthScoreDelta: simulated.HealthScore - baseline.HealthScore,
	}
}
