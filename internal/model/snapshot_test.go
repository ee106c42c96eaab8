package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finsight/internal/common"
)

func item(id string, category Category, amount int64) LineItem {
	return LineItem{
		ID:       id,
		Name:     "item " + id,
		Category: category,
		Amount:   decimal.NewFromInt(amount),
	}
}

func validSnapshot() Snapshot {
	return Snapshot{
		Timestamp:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Income:           []LineItem{item("i1", CategorySalary, 3000)},
		FixedExpenses:    []LineItem{item("f1", CategoryHousing, 1200)},
		VariableExpenses: []LineItem{item("v1", CategoryDining, 400)},
		Debts:            []LineItem{item("d1", CategoryLoan, 150)},
		EmotionalTags:    []string{"happy"},
		Mood:             6,
	}
}

func TestSnapshot_Validate(t *testing.T) {
	tooMany := make([]LineItem, MaxItemsPerCollection+1)
	for i := range tooMany {
		tooMany[i] = item("v", CategoryGroceries, 1)
	}

	tests := []struct {
		name    string
		mutate  func(s *Snapshot)
		errMsg  string
		wantErr bool
	}{
		{
			name:   "valid snapshot",
			mutate: func(*Snapshot) {},
		},
		{
			name: "empty collections are valid",
			mutate: func(s *Snapshot) {
				s.Income, s.FixedExpenses, s.VariableExpenses, s.Debts = nil, nil, nil, nil
			},
		},
		{
			name:    "mood too low",
			mutate:  func(s *Snapshot) { s.Mood = 0 },
			wantErr: true,
			errMsg:  "mood must be between 1 and 10, got 0",
		},
		{
			name:    "mood too high",
			mutate:  func(s *Snapshot) { s.Mood = 11 },
			wantErr: true,
			errMsg:  "mood must be between 1 and 10, got 11",
		},
		{
			name: "negative amount",
			mutate: func(s *Snapshot) {
				s.Income[0].Amount = decimal.NewFromInt(-5)
			},
			wantErr: true,
			errMsg:  "income[0]: amount must be non-negative",
		},
		{
			name: "unknown category",
			mutate: func(s *Snapshot) {
				s.VariableExpenses[0].Category = "yachts"
			},
			wantErr: true,
			errMsg:  `unknown category "yachts"`,
		},
		{
			name: "category in wrong collection",
			mutate: func(s *Snapshot) {
				s.Debts[0].Category = CategoryDining
			},
			wantErr: true,
			errMsg:  `category "dining" is not a debt category`,
		},
		{
			name: "blank name",
			mutate: func(s *Snapshot) {
				s.FixedExpenses[0].Name = "   "
			},
			wantErr: true,
			errMsg:  "name is required",
		},
		{
			name:    "too many items",
			mutate:  func(s *Snapshot) { s.VariableExpenses = tooMany },
			wantErr: true,
			errMsg:  "variableExpenses has 51 items",
		},
		{
			name:    "unknown tag",
			mutate:  func(s *Snapshot) { s.EmotionalTags = []string{"hangry"} },
			wantErr: true,
			errMsg:  `unknown emotional tag "hangry"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSnapshot()
			tt.mutate(&s)

			err := s.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrInvalidSnapshot)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSnapshot_Apply(t *testing.T) {
	base := validSnapshot()
	mood := 9

	t.Run("nil overrides keep base", func(t *testing.T) {
		merged := base.Apply(Overrides{})
		assert.Equal(t, base, merged)
	})

	t.Run("collections are replaced not merged", func(t *testing.T) {
		replacement := []LineItem{item("v2", CategoryTravel, 900)}
		merged := base.Apply(Overrides{VariableExpenses: replacement, Mood: &mood})

		assert.Equal(t, replacement, merged.VariableExpenses)
		assert.Equal(t, 9, merged.Mood)
		assert.Equal(t, base.Income, merged.Income)
		assert.Equal(t, base.FixedExpenses, merged.FixedExpenses)
	})

	t.Run("empty slice clears a collection", func(t *testing.T) {
		merged := base.Apply(Overrides{Debts: []LineItem{}})
		assert.Empty(t, merged.Debts)
		assert.Len(t, base.Debts, 1, "base must not change")
	})
}

func TestSum(t *testing.T) {
	items := []LineItem{
		{Amount: decimal.RequireFromString("0.10")},
		{Amount: decimal.RequireFromString("0.20")},
	}
	assert.True(t, Sum(items).Equal(decimal.RequireFromString("0.30")))
	assert.True(t, Sum(nil).IsZero())
}

func TestParseProviderName(t *testing.T) {
	name, err := ParseProviderName("hosted-model-b")
	require.NoError(t, err)
	assert.Equal(t, ProviderHostedB, name)

	_, err = ParseProviderName("gpt")
	assert.ErrorIs(t, err, common.ErrUnknownProvider)
}

func TestRiskLevelForScore(t *testing.T) {
	assert.Equal(t, RiskLow, RiskLevelForScore(100))
	assert.Equal(t, RiskLow, RiskLevelForScore(70))
	assert.Equal(t, RiskMedium, RiskLevelForScore(69.9))
	assert.Equal(t, RiskMedium, RiskLevelForScore(40))
	assert.Equal(t, RiskHigh, RiskLevelForScore(39.9))
	assert.Equal(t, RiskHigh, RiskLevelForScore(0))
}
