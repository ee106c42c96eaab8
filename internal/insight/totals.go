package insight

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/finsight/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Totals holds the aggregate figures every insight is built from.
type Totals struct {
	Income        decimal.Decimal
	Fixed         decimal.Decimal
	Variable      decimal.Decimal
	Debts         decimal.Decimal
	Expenses      decimal.Decimal
	NetBalance    decimal.Decimal
	SavingsRate   float64
	EmotionalCost decimal.Decimal
}

// ComputeTotals sums the snapshot collections and derives the net balance,
// savings rate, and the euro effect of the current mood on variable spending.
func ComputeTotals(s model.Snapshot) Totals {
	t := Totals{
		Income:   model.Sum(s.Income),
		Fixed:    model.Sum(s.FixedExpenses),
		Variable: model.Sum(s.VariableExpenses),
		Debts:    model.Sum(s.Debts),
	}
	t.Expenses = t.Fixed.Add(t.Variable).Add(t.Debts)
	t.NetBalance = t.Income.Sub(t.Expenses)
	t.SavingsRate = t.ratioPercent(t.NetBalance)

	factor := decimal.NewFromFloat(ArchetypeForMood(s.Mood).Factor)
	t.EmotionalCost = t.Variable.Mul(factor.Sub(decimal.NewFromInt(1)))

	return t
}

// ratioPercent returns amount as a percentage of income, or 0 without income.
func (t Totals) ratioPercent(amount decimal.Decimal) float64 {
	if !t.Income.IsPositive() {
		return 0
	}
	return amount.Div(t.Income).Mul(hundred).InexactFloat64()
}

// ratio returns amount divided by income, or 0 without income.
func (t Totals) ratio(amount decimal.Decimal) float64 {
	if !t.Income.IsPositive() {
		return 0
	}
	return amount.Div(t.Income).InexactFloat64()
}

// exceedsShare reports whether amount is above share (0-1) of income. With no
// income any positive amount exceeds it.
func (t Totals) exceedsShare(amount decimal.Decimal, share float64) bool {
	if !t.Income.IsPositive() {
		return amount.IsPositive()
	}
	return amount.GreaterThan(t.Income.Mul(decimal.NewFromFloat(share)))
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
