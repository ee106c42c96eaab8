package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/finsight/internal/insight"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/provider"
)

// Formatter renders reports for terminal display.
type Formatter struct {
	normal lipgloss.Style
}

// NewFormatter creates a formatter with the default styles.
func NewFormatter() *Formatter {
	return &Formatter{normal: lipgloss.NewStyle()}
}

// Format renders a complete insight report.
func (f *Formatter) Format(r model.InsightReport) string {
	sections := []string{
		f.formatHeader(r),
		f.formatHealthScore(r.HealthScore),
		RenderBox(BrainIcon+" Insight", lipgloss.JoinVertical(lipgloss.Left,
			r.Insight,
			SubtleStyle.Render(r.Equation),
			r.Comparison,
		)),
		f.formatProjections(r.Projections),
	}

	if len(r.HiddenCosts) > 0 {
		sections = append(sections, f.formatList("Hidden costs", r.HiddenCosts, WarningStyle))
	}
	if len(r.Recommendations) > 0 {
		sections = append(sections, f.formatNumbered("Recommendations", r.Recommendations))
	}

	sections = append(sections,
		f.formatRisk(r.RiskAssessment),
		f.formatEmotional(r.EmotionalState, r.EmotionalPatterns),
		f.formatBehavior(r.BehavioralPatterns, r.MarketComparisons),
		f.formatPredictions(r.AIPredictions),
	)

	return strings.Join(sections, "\n\n")
}

func (f *Formatter) formatHeader(r model.InsightReport) string {
	title := TitleStyle.Render(ChartIcon + " Financial Insight")
	meta := fmt.Sprintf("Source: %s", r.Source)
	if !r.GeneratedAt.IsZero() {
		meta += fmt.Sprintf("  •  Generated: %s", r.GeneratedAt.Format(time.RFC3339))
	}
	return title + "\n" + SubtleStyle.Render(meta)
}

// formatHealthScore draws the score with a bar colored by band.
func (f *Formatter) formatHealthScore(score int) string {
	var style lipgloss.Style
	switch {
	case score >= 70:
		style = SuccessStyle
	case score >= 40:
		style = WarningStyle
	default:
		style = ErrorStyle
	}

	barWidth := 30
	filled := barWidth * score / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	return style.Render(fmt.Sprintf("Health Score: %d/100", score)) + "\n" + style.Render(bar)
}

func (f *Formatter) formatProjections(p model.Projections) string {
	rows := []struct {
		label string
		value decimal.Decimal
	}{
		{"Monthly", p.Monthly},
		{"Yearly", p.Yearly},
		{"5 years", p.FiveYear},
		{"10 years", p.TenYear},
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%-10s %s", row.label+":", formatEuros(row.value)))
	}
	return SubtitleStyle.Render("Projections") + "\n" + strings.Join(lines, "\n")
}

func (f *Formatter) formatList(title string, items []string, style lipgloss.Style) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, style.Render("• "+item))
	}
	return SubtitleStyle.Render(title) + "\n" + strings.Join(lines, "\n")
}

func (f *Formatter) formatNumbered(title string, items []string) string {
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, item))
	}
	return SubtitleStyle.Render(title) + "\n" + strings.Join(lines, "\n")
}

func (f *Formatter) formatRisk(ra model.RiskAssessment) string {
	header := fmt.Sprintf("%s %s risk (score %.0f)", riskIcon(ra.Level), strings.ToUpper(string(ra.Level)), ra.Score)
	lines := []string{riskStyle(ra.Level).Render(header)}
	for i, factor := range ra.Factors {
		line := "• " + factor
		if i < len(ra.Mitigations) {
			line += SubtleStyle.Render(" → " + ra.Mitigations[i])
		}
		lines = append(lines, line)
	}
	return SubtitleStyle.Render("Risk") + "\n" + strings.Join(lines, "\n")
}

func (f *Formatter) formatEmotional(state model.EmotionalState, patterns model.EmotionalPatterns) string {
	lines := []string{fmt.Sprintf("%s (mood %d/10)", state.Archetype, state.Mood)}
	if len(patterns.Triggers) > 0 {
		lines = append(lines, "Triggers: "+strings.Join(patterns.Triggers, ", "))
	}
	for _, c := range patterns.Correlations {
		lines = append(lines, fmt.Sprintf("%-14s %+.1f", c.Emotion+":", c.Impact))
	}
	for _, s := range patterns.Suggestions {
		lines = append(lines, InfoStyle.Render("→ "+s))
	}
	return SubtitleStyle.Render("Emotional patterns") + "\n" + strings.Join(lines, "\n")
}

func (f *Formatter) formatBehavior(b model.BehavioralPatterns, m model.MarketComparisons) string {
	lines := []string{
		fmt.Sprintf("Personality: %s, %s decisions, %s risk tolerance", b.SpendingPersonality, strings.ToLower(b.DecisionMaking), b.RiskTolerance),
		fmt.Sprintf("Optimization potential: %.0f%%", b.OptimizationPotential),
		fmt.Sprintf("Peers (%s): %s, %.0fth percentile, %+.1f points", m.PeerGroup, m.Ranking, m.Percentile, m.Deviation),
	}
	return SubtitleStyle.Render("Behavior") + "\n" + strings.Join(lines, "\n")
}

func (f *Formatter) formatPredictions(p model.AIPredictions) string {
	lines := []string{
		fmt.Sprintf("Next month spending:  %s", formatEuros(p.NextMonthSpending)),
		fmt.Sprintf("Emergency fund goal:  %s", formatEuros(p.EmergencyFundNeeded)),
		fmt.Sprintf("Savings goal odds:    %.0f%%", p.SavingsGoalAchievability),
		fmt.Sprintf("Investment readiness: %.0f%%", p.InvestmentReadiness),
	}
	return SubtitleStyle.Render("Predictions") + "\n" + strings.Join(lines, "\n")
}

// FormatComparison renders a what-if result as baseline against simulation.
func (f *Formatter) FormatComparison(result insight.WhatIfResult) string {
	rows := []struct {
		label     string
		baseline  string
		simulated string
		delta     string
	}{
		{
			label:     "Health score",
			baseline:  fmt.Sprintf("%d", result.Baseline.HealthScore),
			simulated: fmt.Sprintf("%d", result.Simulated.HealthScore),
			delta:     fmt.Sprintf("%+d", result.HealthScoreDelta),
		},
		{
			label:     "Net balance",
			baseline:  formatEuros(result.Baseline.Projections.Monthly),
			simulated: formatEuros(result.Simulated.Projections.Monthly),
			delta:     formatEuros(result.NetBalanceDelta),
		},
		{
			label:     "Yearly",
			baseline:  formatEuros(result.Baseline.Projections.Yearly),
			simulated: formatEuros(result.Simulated.Projections.Yearly),
			delta:     formatEuros(result.YearlyDelta),
		},
	}

	lines := []string{SubtleStyle.Render(fmt.Sprintf("%-14s %14s %14s %14s", "", "Baseline", "What-if", "Change"))}
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%-14s %14s %14s %14s", row.label, row.baseline, row.simulated, row.delta))
	}

	var verdict string
	switch {
	case result.HealthScoreDelta > 0:
		verdict = FormatSuccess("The change improves your financial health")
	case result.HealthScoreDelta < 0:
		verdict = FormatWarning("The change weakens your financial health")
	default:
		verdict = FormatInfo("The change leaves your health score unchanged")
	}

	return strings.Join([]string{
		TitleStyle.Render(ChartIcon + " What-if Simulation"),
		BoxStyle.Render(strings.Join(lines, "\n")),
		verdict,
		f.Format(result.Simulated),
	}, "\n\n")
}

// FormatHistory renders stored reports as a table, newest first.
func (f *Formatter) FormatHistory(reports []model.StoredReport) string {
	if len(reports) == 0 {
		return SubtleStyle.Render("No reports saved yet")
	}

	lines := []string{SubtleStyle.Render(fmt.Sprintf("%-36s  %-16s  %-7s  %-14s  %5s  %12s", "ID", "Created", "Kind", "Provider", "Score", "Net"))}
	for _, r := range reports {
		lines = append(lines, fmt.Sprintf("%-36s  %-16s  %-7s  %-14s  %5d  %12s",
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Kind,
			r.Provider,
			r.HealthScore,
			formatEuros(r.NetBalance)))
	}
	return strings.Join(lines, "\n")
}

// FormatProbeResults renders provider probe outcomes with the active choice.
func (f *Formatter) FormatProbeResults(active model.ProviderName, candidates []model.ProviderName, results []provider.ProbeResult) string {
	byName := make(map[model.ProviderName]provider.ProbeResult, len(results))
	for _, r := range results {
		byName[r.Name] = r
	}

	names := make([]model.ProviderName, 0, len(candidates)+1)
	names = append(names, candidates...)
	names = append(names, model.ProviderFallback)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		marker := "  "
		if name == active {
			marker = "▶ "
		}

		var status string
		result, probed := byName[name]
		switch {
		case name == model.ProviderFallback:
			status = SuccessStyle.Render("always available")
		case !probed:
			status = SubtleStyle.Render("not probed")
		case result.Reachable:
			status = SuccessStyle.Render(fmt.Sprintf("%s reachable (%s)", SuccessIcon, result.Duration.Round(time.Millisecond)))
		default:
			status = ErrorStyle.Render(fmt.Sprintf("%s %v", ErrorIcon, result.Err))
		}

		lines = append(lines, fmt.Sprintf("%s%-16s %s", marker, name, status))
	}
	return strings.Join(lines, "\n")
}

func riskIcon(level model.RiskLevel) string {
	switch level {
	case model.RiskHigh:
		return "🚨"
	case model.RiskMedium:
		return "⚡"
	default:
		return "🛡️"
	}
}

func riskStyle(level model.RiskLevel) lipgloss.Style {
	switch level {
	case model.RiskHigh:
		return ErrorStyle
	case model.RiskMedium:
		return WarningStyle
	default:
		return SuccessStyle
	}
}

func formatEuros(d decimal.Decimal) string {
	return d.StringFixed(2) + " €"
}
