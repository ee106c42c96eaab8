package testutil

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finsight/internal/model"
)

// SnapshotBuilder provides a fluent interface for constructing snapshots.
// Items are routed to the collection matching their category.
type SnapshotBuilder struct {
	snapshot model.Snapshot
	next     int
}

// NewSnapshot starts a snapshot with a neutral mood and a fixed timestamp.
func NewSnapshot() *SnapshotBuilder {
	return &SnapshotBuilder{
		snapshot: model.Snapshot{
			Timestamp:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			Income:           []model.LineItem{},
			FixedExpenses:    []model.LineItem{},
			VariableExpenses: []model.LineItem{},
			Debts:            []model.LineItem{},
			EmotionalTags:    []string{},
			Mood:             5,
		},
	}
}

// WithItem adds an item; amount is a decimal string such as "1200.50".
func (b *SnapshotBuilder) WithItem(name string, category model.Category, amount string) *SnapshotBuilder {
	b.next++
	item := model.LineItem{
		ID:       fmt.Sprintf("item-%d", b.next),
		Name:     name,
		Category: category,
		Amount:   decimal.RequireFromString(amount),
	}

	switch category.Type() {
	case model.CategoryTypeIncome:
		b.snapshot.Income = append(b.snapshot.Income, item)
	case model.CategoryTypeFixed:
		item.IsRecurring = true
		b.snapshot.FixedExpenses = append(b.snapshot.FixedExpenses, item)
	case model.CategoryTypeDebt:
		b.snapshot.Debts = append(b.snapshot.Debts, item)
	default:
		b.snapshot.VariableExpenses = append(b.snapshot.VariableExpenses, item)
	}
	return b
}

// WithBasicBudget adds a salary, rent, groceries and a loan payment.
func (b *SnapshotBuilder) WithBasicBudget() *SnapshotBuilder {
	return b.
		WithItem("Salary", model.CategorySalary, "3000").
		WithItem("Rent", model.CategoryHousing, "1200").
		WithItem("Groceries", model.CategoryGroceries, "400").
		WithItem("Car loan", model.CategoryLoan, "150")
}

// WithMood sets the mood rating.
func (b *SnapshotBuilder) WithMood(mood int) *SnapshotBuilder {
	b.snapshot.Mood = mood
	return b
}

// WithTags sets the emotional tags.
func (b *SnapshotBuilder) WithTags(tags ...string) *SnapshotBuilder {
	b.snapshot.EmotionalTags = tags
	return b
}

// Build returns the snapshot.
func (b *SnapshotBuilder) Build() model.Snapshot {
	return b.snapshot
}
