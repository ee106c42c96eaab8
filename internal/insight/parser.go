package insight

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/finsight/internal/llm"
	"github.com/Veraticus/finsight/internal/model"
)

// Parse failures. Any of them routes the computation to the fallback.
var (
	ErrNoJSONObject     = errors.New("no JSON object in provider reply")
	ErrUnterminatedJSON = errors.New("unterminated JSON object in provider reply")
	ErrIncompleteReply  = errors.New("provider reply is missing required fields")
	ErrTemplateReply    = errors.New("provider reply repeats the response format example")
)

// schemaPlaceholders are the example values of the response format in
// templates/json_schema.tmpl. A reply carrying them is the prompt echoed back.
var schemaPlaceholders = map[string]bool{
	"one or two sentences":                              true,
	"string summarizing the arithmetic":                 true,
	"the net balance expressed as a relatable quantity": true,
}

// ExtractJSONObject returns the first balanced top-level JSON object in text.
// Braces inside string literals are ignored.
func ExtractJSONObject(text string) (string, error) {
	object, _, err := nextJSONObject(text, 0)
	return object, err
}

// nextJSONObject returns the first balanced object starting at or after from,
// along with the offset just past it.
func nextJSONObject(text string, from int) (string, int, error) {
	idx := strings.IndexByte(text[from:], '{')
	if idx < 0 {
		return "", 0, ErrNoJSONObject
	}
	start := from + idx

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], i + 1, nil
			}
		}
	}

	return "", 0, ErrUnterminatedJSON
}

// providerReply is the report shape a provider answers with. Sections are
// pointers so missing ones can be told apart from zero values.
type providerReply struct {
	HealthScore        *float64                  `json:"healthScore"`
	EmotionalPatterns  *model.EmotionalPatterns  `json:"emotionalPatterns"`
	MarketComparisons  *model.MarketComparisons  `json:"marketComparisons"`
	RiskAssessment     *model.RiskAssessment     `json:"riskAssessment"`
	BehavioralPatterns *model.BehavioralPatterns `json:"behavioralPatterns"`
	AIPredictions      *model.AIPredictions      `json:"aiPredictions"`
	Equation           string                    `json:"equation"`
	Insight            string                    `json:"insight"`
	Comparison         string                    `json:"comparison"`
	Recommendations    []string                  `json:"recommendations"`
	HiddenCosts        []string                  `json:"hiddenCosts"`
}

// ParseReply extracts and decodes a provider reply, then merges it over base.
// base must be the deterministic report of the same snapshot; it supplies
// every section the provider left out, and always the projections.
//
// Objects are tried in order until one decodes into a complete report. When
// none does, the error of the first candidate is returned.
func ParseReply(raw string, base model.InsightReport) (model.InsightReport, error) {
	text := llm.StripMarkdownFence(raw)

	var firstErr error
	offset := 0
	for {
		object, end, err := nextJSONObject(text, offset)
		if err != nil {
			if firstErr != nil {
				return model.InsightReport{}, firstErr
			}
			return model.InsightReport{}, err
		}

		reply, err := decodeReply(object)
		if err == nil {
			return reply.mergeInto(base), nil
		}
		if firstErr == nil {
			firstErr = err
		}
		offset = end
	}
}

func decodeReply(object string) (providerReply, error) {
	var reply providerReply
	if err := json.Unmarshal([]byte(object), &reply); err != nil {
		return providerReply{}, fmt.Errorf("failed to decode provider reply: %w", err)
	}

	if strings.TrimSpace(reply.Insight) == "" {
		return providerReply{}, fmt.Errorf("%w: insight", ErrIncompleteReply)
	}
	if reply.HealthScore == nil {
		return providerReply{}, fmt.Errorf("%w: healthScore", ErrIncompleteReply)
	}
	for _, field := range []string{reply.Insight, reply.Equation, reply.Comparison} {
		if schemaPlaceholders[strings.TrimSpace(field)] {
			return providerReply{}, fmt.Errorf("%w: %q", ErrTemplateReply, field)
		}
	}

	return reply, nil
}

func (r providerReply) mergeInto(base model.InsightReport) model.InsightReport {
	report := base
	report.Insight = r.Insight
	report.HealthScore = int(clampPercent(math.Round(*r.HealthScore)))

	if r.Equation != "" {
		report.Equation = r.Equation
	}
	if r.Comparison != "" {
		report.Comparison = r.Comparison
	}
	if len(r.Recommendations) > 0 {
		report.Recommendations = r.Recommendations
	}
	if r.HiddenCosts != nil {
		report.HiddenCosts = r.HiddenCosts
	}
	if r.EmotionalPatterns != nil {
		report.EmotionalPatterns = *r.EmotionalPatterns
	}
	if r.MarketComparisons != nil {
		mc := *r.MarketComparisons
		mc.Percentile = clampPercent(mc.Percentile)
		report.MarketComparisons = mc
	}
	if r.RiskAssessment != nil {
		ra := *r.RiskAssessment
		ra.Score = clampPercent(ra.Score)
		ra.Level = model.RiskLevelForScore(ra.Score)
		report.RiskAssessment = ra
	}
	if r.BehavioralPatterns != nil {
		bp := *r.BehavioralPatterns
		bp.OptimizationPotential = clampPercent(bp.OptimizationPotential)
		if !bp.RiskTolerance.IsValid() {
			bp.RiskTolerance = base.BehavioralPatterns.RiskTolerance
		}
		report.BehavioralPatterns = bp
	}
	if r.AIPredictions != nil {
		p := *r.AIPredictions
		p.SavingsGoalAchievability = clampPercent(p.SavingsGoalAchievability)
		p.InvestmentReadiness = clampPercent(p.InvestmentReadiness)
		report.AIPredictions = p
	}

	return report
}
