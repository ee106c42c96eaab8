package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finsight/internal/model"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "bare object", input: `{"a":1}`, want: `{"a":1}`},
		{name: "surrounding prose", input: `Here: {"a":{"b":2}} hope it helps {"c":3}`, want: `{"a":{"b":2}}`},
		{name: "braces inside strings", input: `{"text":"use } and { freely"}`, want: `{"text":"use } and { freely"}`},
		{name: "escaped quotes", input: `{"text":"say \"}\" now"} trailing`, want: `{"text":"say \"}\" now"}`},
		{name: "no object", input: "nothing to see", wantErr: ErrNoJSONObject},
		{name: "empty", input: "", wantErr: ErrNoJSONObject},
		{name: "unterminated", input: `{"a":{"b":1}`, wantErr: ErrUnterminatedJSON},
		{name: "unterminated string", input: `{"a":"}`, wantErr: ErrUnterminatedJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseReply(t *testing.T) {
	base := ComputeFallbackInsight(snapshotOf("3000", "1200", "400", "", 5))

	t.Run("clamps and re-derives", func(t *testing.T) {
		report, err := ParseReply(`{
			"insight": "ok",
			"healthScore": -12,
			"hiddenCosts": [],
			"marketComparisons": {"peerGroup": "x", "ranking": "y", "deviation": 3, "percentile": 130},
			"riskAssessment": {"level": "low", "score": 20, "factors": ["a"], "mitigations": ["b"]},
			"aiPredictions": {"nextMonthSpending": "410.50", "savingsGoalAchievability": 250, "emergencyFundNeeded": 9000, "investmentReadiness": -5}
		}`, base)
		require.NoError(t, err)

		assert.Equal(t, 0, report.HealthScore)
		assert.Empty(t, report.HiddenCosts)
		assert.InDelta(t, 100, report.MarketComparisons.Percentile, 0.001)
		assert.Equal(t, model.RiskHigh, report.RiskAssessment.Level)
		assert.Equal(t, "410.5", report.AIPredictions.NextMonthSpending.String())
		assert.InDelta(t, 100, report.AIPredictions.SavingsGoalAchievability, 0.001)
		assert.InDelta(t, 0, report.AIPredictions.InvestmentReadiness, 0.001)
		assert.Equal(t, base.Projections, report.Projections)
		assert.Equal(t, base.EmotionalState, report.EmotionalState)
	})

	t.Run("missing insight", func(t *testing.T) {
		_, err := ParseReply(`{"healthScore": 50}`, base)
		assert.ErrorIs(t, err, ErrIncompleteReply)
	})

	t.Run("skips braces in prose", func(t *testing.T) {
		report, err := ParseReply(`Here is the analysis {as requested}: {"insight": "steady", "healthScore": 64}`, base)
		require.NoError(t, err)
		assert.Equal(t, "steady", report.Insight)
		assert.Equal(t, 64, report.HealthScore)
	})

	t.Run("skips objects without a report", func(t *testing.T) {
		report, err := ParseReply(`{"income": 3000} then {"insight": "fine", "healthScore": 50}`, base)
		require.NoError(t, err)
		assert.Equal(t, "fine", report.Insight)
	})

	t.Run("first error when nothing decodes", func(t *testing.T) {
		_, err := ParseReply(`{"healthScore": 50} and {"oops"}`, base)
		assert.ErrorIs(t, err, ErrIncompleteReply)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseReply(`{"insight": "x", "healthScore": 50,}`, base)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode provider reply")
	})
}

func TestParseReply_RejectsResponseFormatExample(t *testing.T) {
	base := ComputeFallbackInsight(snapshotOf("3000", "1200", "400", "", 5))

	pb, err := NewPromptBuilder()
	require.NoError(t, err)
	prompt, err := pb.BuildInsightPrompt(NewPromptData(snapshotOf("3000", "1200", "400", "", 5), "question"))
	require.NoError(t, err)

	_, err = ParseReply(prompt, base)
	assert.ErrorIs(t, err, ErrTemplateReply)

	report, err := ParseReply(prompt+"\n"+`{"insight": "real answer", "healthScore": 77}`, base)
	require.NoError(t, err)
	assert.Equal(t, "real answer", report.Insight)
	assert.Equal(t, 77, report.HealthScore)
}
