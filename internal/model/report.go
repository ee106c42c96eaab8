package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RiskLevel is a qualitative risk grade.
type RiskLevel string

const (
	// RiskLow indicates little financial or behavioral risk.
	RiskLow RiskLevel = "low"
	// RiskMedium indicates moderate risk.
	RiskMedium RiskLevel = "medium"
	// RiskHigh indicates elevated risk.
	RiskHigh RiskLevel = "high"
)

// IsValid reports whether r is a known risk level.
func (r RiskLevel) IsValid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// RiskLevelForScore maps a 0-100 risk score (higher is safer) to a level.
func RiskLevelForScore(score float64) RiskLevel {
	switch {
	case score >= 70:
		return RiskLow
	case score >= 40:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// InsightReport is the structured result of one insight computation.
type InsightReport struct {
	GeneratedAt        time.Time          `json:"generatedAt"`
	Source             ProviderName       `json:"source"`
	Equation           string             `json:"equation"`
	Insight            string             `json:"insight"`
	Comparison         string             `json:"comparison"`
	EmotionalState     EmotionalState     `json:"emotionalState"`
	Recommendations    []string           `json:"recommendations"`
	HiddenCosts        []string           `json:"hiddenCosts"`
	Projections        Projections        `json:"projections"`
	EmotionalPatterns  EmotionalPatterns  `json:"emotionalPatterns"`
	MarketComparisons  MarketComparisons  `json:"marketComparisons"`
	RiskAssessment     RiskAssessment     `json:"riskAssessment"`
	BehavioralPatterns BehavioralPatterns `json:"behavioralPatterns"`
	AIPredictions      AIPredictions      `json:"aiPredictions"`
	HealthScore        int                `json:"healthScore"`
}

// EmotionalState names the mood archetype the report was computed for.
type EmotionalState struct {
	Archetype string `json:"archetype"`
	Mood      int    `json:"mood"`
}

// Projections extrapolates the monthly net balance.
type Projections struct {
	Monthly  decimal.Decimal `json:"monthly"`
	Yearly   decimal.Decimal `json:"yearly"`
	FiveYear decimal.Decimal `json:"fiveYear"`
	TenYear  decimal.Decimal `json:"tenYear"`
}

// EmotionalPatterns relates emotions to spending.
type EmotionalPatterns struct {
	Triggers     []string      `json:"triggers"`
	Correlations []Correlation `json:"correlations"`
	Suggestions  []string      `json:"suggestions"`
}

// Correlation is one emotion and its estimated impact.
type Correlation struct {
	Emotion string  `json:"emotion"`
	Impact  float64 `json:"impact"`
}

// MarketComparisons positions the user against a peer group.
type MarketComparisons struct {
	PeerGroup  string  `json:"peerGroup"`
	Ranking    string  `json:"ranking"`
	Deviation  float64 `json:"deviation"`
	Percentile float64 `json:"percentile"`
}

// RiskAssessment grades overall risk; Score is higher when safer.
type RiskAssessment struct {
	Level       RiskLevel `json:"level"`
	Factors     []string  `json:"factors"`
	Mitigations []string  `json:"mitigations"`
	Score       float64   `json:"score"`
}

// BehavioralPatterns summarizes the user's spending behavior.
type BehavioralPatterns struct {
	SpendingPersonality   string    `json:"spendingPersonality"`
	DecisionMaking        string    `json:"decisionMaking"`
	RiskTolerance         RiskLevel `json:"riskTolerance"`
	OptimizationPotential float64   `json:"optimizationPotential"`
}

// AIPredictions holds forward-looking estimates.
type AIPredictions struct {
	NextMonthSpending        decimal.Decimal `json:"nextMonthSpending"`
	EmergencyFundNeeded      decimal.Decimal `json:"emergencyFundNeeded"`
	SavingsGoalAchievability float64         `json:"savingsGoalAchievability"`
	InvestmentReadiness      float64         `json:"investmentReadiness"`
}
