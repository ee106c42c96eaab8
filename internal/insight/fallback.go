package insight

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finsight/internal/model"
)

// Thresholds used by the deterministic rules.
const (
	variableShareLimit   = 0.35
	fixedShareLimit      = 0.55
	debtRatioLimit       = 0.3
	lowSavingsRate       = 15.0
	impulsiveMood        = 8
	lowMood              = 3
	deficitCutShare      = 0.6
	autoSaveShare        = 0.1
	spendingDriftPerMood = 0.1
	emergencyFundMonths  = 6
)

// ComputeFallbackInsight builds a complete report from formulas alone. It is
// deterministic and never mutates the snapshot.
func ComputeFallbackInsight(s model.Snapshot) model.InsightReport {
	t := ComputeTotals(s)
	archetype := ArchetypeForMood(s.Mood)

	report := model.InsightReport{
		Source:   model.ProviderFallback,
		Equation: buildEquation(t, archetype),
		Insight:  buildInsight(t, archetype),
		EmotionalState: model.EmotionalState{
			Archetype: archetype.Name,
			Mood:      s.Mood,
		},
		HealthScore:     HealthScore(t, s.Mood),
		HiddenCosts:     hiddenCosts(t, s.Mood),
		Recommendations: recommendations(t, s.Mood, archetype),
		Projections:     ProjectionsFor(t.NetBalance),
	}
	report.Comparison = buildComparison(t.NetBalance)

	stress := clampPercent(t.ratioPercent(t.EmotionalCost.Abs()))
	report.EmotionalPatterns = model.EmotionalPatterns{
		Triggers: triggers(s),
		Correlations: []model.Correlation{
			{Emotion: "Stress", Impact: round2(stress)},
			{Emotion: "Confidence", Impact: round2(100 - stress)},
			{Emotion: "Impulsiveness", Impact: float64((s.Mood - 5) * 10)},
		},
		Suggestions: emotionalSuggestions(archetype.Risk),
	}

	report.RiskAssessment = riskAssessment(t, s.Mood, stress)
	report.MarketComparisons = marketComparisons(t)
	report.BehavioralPatterns = behavioralPatterns(report.HealthScore, s.Mood, archetype)
	report.AIPredictions = predictions(t, s.Mood)

	return report
}

// HealthScore combines savings rate, balance sign, mood, and debt load into a
// single 0-100 score.
func HealthScore(t Totals, mood int) int {
	score := (t.SavingsRate + 20) * 1.5

	if t.NetBalance.IsPositive() {
		score += 25
	} else {
		score -= 25
	}

	switch {
	case mood <= 5:
		score += 15
	case mood >= impulsiveMood:
		score -= 10
	default:
		score += 5
	}

	if t.ratio(t.Debts) < debtRatioLimit {
		score += 10
	} else {
		score -= 15
	}

	return int(clampPercent(math.Round(score)))
}

// ProjectionsFor extrapolates a monthly balance over one, five, and ten years.
func ProjectionsFor(monthly decimal.Decimal) model.Projections {
	return model.Projections{
		Monthly:  monthly,
		Yearly:   monthly.Mul(decimal.NewFromInt(12)),
		FiveYear: monthly.Mul(decimal.NewFromInt(60)),
		TenYear:  monthly.Mul(decimal.NewFromInt(120)),
	}
}

func buildEquation(t Totals, a MoodArchetype) string {
	return fmt.Sprintf("%s (fixed) + %s (variable) × %.2f = %s",
		euros(t.Fixed), euros(t.Variable), a.Factor, euros(t.NetBalance))
}

func buildInsight(t Totals, a MoodArchetype) string {
	switch {
	case t.NetBalance.IsPositive():
		return fmt.Sprintf("%s: you keep a surplus of %s every month. You tend to %s, so move the surplus aside before it drifts into spending.",
			a.Name, euros(t.NetBalance), a.Tendency)
	case t.NetBalance.IsNegative():
		return fmt.Sprintf("%s: you run a deficit of %s every month. You tend to %s, which makes the gap harder to close right now.",
			a.Name, euros(t.NetBalance.Abs()), a.Tendency)
	default:
		return fmt.Sprintf("%s: income and spending cancel out exactly. You tend to %s, so any extra purchase tips you into a deficit.",
			a.Name, a.Tendency)
	}
}

func buildComparison(net decimal.Decimal) string {
	bucket := BucketFor(net)
	count := bucket.Count(net)

	if net.IsNegative() {
		return fmt.Sprintf("Your monthly deficit of %s costs as much as %d %s %s.",
			euros(net.Abs()), count, bucket.Label, bucket.Emoji)
	}
	return fmt.Sprintf("Your monthly surplus of %s is worth %d %s %s.",
		euros(net), count, bucket.Label, bucket.Emoji)
}

func hiddenCosts(t Totals, mood int) []string {
	costs := []string{}

	if t.exceedsShare(t.Variable, variableShareLimit) {
		costs = append(costs, fmt.Sprintf("Variable spending of %s is above 35%% of income", euros(t.Variable)))
	}
	if mood >= impulsiveMood {
		costs = append(costs, fmt.Sprintf("Impulsivity surcharge: your current mood adds about %s to variable spending", euros(t.EmotionalCost)))
	}
	if t.exceedsShare(t.Fixed, fixedShareLimit) {
		costs = append(costs, fmt.Sprintf("Fixed costs of %s take more than 55%% of income and leave little room to adjust", euros(t.Fixed)))
	}

	return costs
}

func recommendations(t Totals, mood int, a MoodArchetype) []string {
	var recs []string

	if t.NetBalance.IsNegative() {
		cut := t.NetBalance.Abs().Mul(decimal.NewFromFloat(deficitCutShare))
		recs = append(recs, fmt.Sprintf("Cut %s from variable spending to close most of the monthly gap", euros(cut)))
	}
	if mood >= impulsiveMood {
		recs = append(recs, "Apply a 48-hour rule: wait two days before any non-essential purchase")
	}
	if t.SavingsRate < lowSavingsRate {
		amount := t.Income.Mul(decimal.NewFromFloat(autoSaveShare))
		recs = append(recs, fmt.Sprintf("Automate a transfer of %s (10%% of income) to savings on payday", euros(amount)))
	}
	recs = append(recs, fmt.Sprintf("Optimize for your behavioral profile (%s): %s", a.Name, profileTip(a.Risk)))

	return recs
}

func profileTip(risk model.RiskLevel) string {
	switch risk {
	case model.RiskHigh:
		return "keep cards out of one-click checkouts while the mood lasts"
	case model.RiskMedium:
		return "review the budget weekly so plans and spending stay aligned"
	default:
		return "schedule one planned treat so saving stays sustainable"
	}
}

func triggers(s model.Snapshot) []string {
	result := make([]string, 0, len(s.EmotionalTags)+1)
	result = append(result, s.EmotionalTags...)

	switch {
	case s.Mood >= impulsiveMood:
		result = append(result, "high mood")
	case s.Mood <= lowMood:
		result = append(result, "low mood")
	}

	return result
}

func emotionalSuggestions(risk model.RiskLevel) []string {
	switch risk {
	case model.RiskHigh:
		return []string{
			"Write down what you want to buy and revisit the list tomorrow",
			"Set a daily spending cap while your mood is elevated",
		}
	case model.RiskMedium:
		return []string{
			"Check purchases against your monthly plan before paying",
			"Keep a small guilt-free budget for spontaneous treats",
		}
	default:
		return []string{
			"Avoid making large financial decisions until your mood lifts",
			"Spend a little on something restorative; extreme frugality rarely lasts",
		}
	}
}

func riskAssessment(t Totals, mood int, stress float64) model.RiskAssessment {
	score := round2(clampPercent(100 - stress))
	assessment := model.RiskAssessment{
		Level:       model.RiskLevelForScore(score),
		Score:       score,
		Factors:     []string{},
		Mitigations: []string{},
	}

	if t.NetBalance.IsNegative() {
		assessment.Factors = append(assessment.Factors, fmt.Sprintf("Monthly deficit of %s", euros(t.NetBalance.Abs())))
		assessment.Mitigations = append(assessment.Mitigations, "Rebuild the budget so fixed costs and debts are covered first")
	}
	if debtRatio := t.ratio(t.Debts); debtRatio >= debtRatioLimit {
		assessment.Factors = append(assessment.Factors, fmt.Sprintf("Debt payments take %.0f%% of income", debtRatio*100))
		assessment.Mitigations = append(assessment.Mitigations, "Pay down the highest-interest debt first")
	}
	if mood >= impulsiveMood {
		assessment.Factors = append(assessment.Factors, "Elevated mood increases impulsive spending")
		assessment.Mitigations = append(assessment.Mitigations, "Delay non-essential purchases until the mood settles")
	}
	if t.SavingsRate < lowSavingsRate {
		assessment.Factors = append(assessment.Factors, fmt.Sprintf("Savings rate of %.1f%% is below 15%%", t.SavingsRate))
		assessment.Mitigations = append(assessment.Mitigations, "Build an emergency fund before new commitments")
	}

	return assessment
}

type peerGroup struct {
	label       string
	upperBound  decimal.Decimal
	savingsRate float64
}

// peerGroups is ordered by ascending income bound; the last group is open.
var peerGroups = []peerGroup{
	{label: "Income under 1,500€", upperBound: decimal.NewFromInt(1500), savingsRate: 5},
	{label: "Income 1,500€ to 3,000€", upperBound: decimal.NewFromInt(3000), savingsRate: 10},
	{label: "Income 3,000€ to 5,000€", upperBound: decimal.NewFromInt(5000), savingsRate: 15},
	{label: "Income above 5,000€", savingsRate: 20},
}

func peerGroupFor(income decimal.Decimal) peerGroup {
	for _, g := range peerGroups[:len(peerGroups)-1] {
		if income.LessThan(g.upperBound) {
			return g
		}
	}
	return peerGroups[len(peerGroups)-1]
}

func marketComparisons(t Totals) model.MarketComparisons {
	group := peerGroupFor(t.Income)
	deviation := round2(t.SavingsRate - group.savingsRate)
	percentile := round2(clampPercent(50 + deviation*2))

	return model.MarketComparisons{
		PeerGroup:  group.label,
		Deviation:  deviation,
		Percentile: percentile,
		Ranking:    rankingFor(percentile),
	}
}

func rankingFor(percentile float64) string {
	switch {
	case percentile >= 90:
		return "Top 10%"
	case percentile >= 75:
		return "Top 25%"
	case percentile >= 50:
		return "Above average"
	case percentile >= 25:
		return "Below average"
	default:
		return "Bottom 25%"
	}
}

func behavioralPatterns(healthScore, mood int, a MoodArchetype) model.BehavioralPatterns {
	var personality string
	switch {
	case healthScore >= 80:
		personality = "Strategic Saver"
	case healthScore >= 60:
		personality = "Balanced Planner"
	case healthScore >= 40:
		personality = "Reactive Spender"
	default:
		personality = "Impulsive Spender"
	}

	var decisions string
	switch {
	case mood <= lowMood:
		decisions = "Cautious"
	case mood < impulsiveMood:
		decisions = "Deliberate"
	default:
		decisions = "Impulsive"
	}

	return model.BehavioralPatterns{
		SpendingPersonality:   personality,
		DecisionMaking:        decisions,
		RiskTolerance:         a.Risk,
		OptimizationPotential: float64(100 - healthScore),
	}
}

func predictions(t Totals, mood int) model.AIPredictions {
	drift := decimal.NewFromFloat(spendingDriftPerMood).Mul(decimal.NewFromInt(int64(mood - 5)))

	return model.AIPredictions{
		NextMonthSpending:        t.Variable.Mul(decimal.NewFromInt(1).Add(drift)).Round(2),
		SavingsGoalAchievability: round2(clampPercent(t.SavingsRate + 20)),
		EmergencyFundNeeded:      t.Expenses.Mul(decimal.NewFromInt(emergencyFundMonths)),
		InvestmentReadiness:      round2(clampPercent(t.ratioPercent(t.NetBalance) + 30)),
	}
}

func euros(d decimal.Decimal) string {
	return d.StringFixed(2) + "€"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
