package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finsight/internal/common"
)

const (
	// MinMood is the lowest accepted mood rating.
	MinMood = 1
	// MaxMood is the highest accepted mood rating.
	MaxMood = 10
	// MaxItemsPerCollection bounds each snapshot collection.
	MaxItemsPerCollection = 50
	// MaxNameLength bounds line item names.
	MaxNameLength = 100
)

// EmotionalTags is the fixed vocabulary accepted in Snapshot.EmotionalTags.
var EmotionalTags = []string{
	"stressed",
	"anxious",
	"happy",
	"excited",
	"bored",
	"tired",
	"confident",
	"lonely",
	"celebrating",
	"sad",
}

// LineItem is one income, expense, or debt entry.
type LineItem struct {
	Date        *time.Time      `json:"date,omitempty"`
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    Category        `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	IsRecurring bool            `json:"isRecurring,omitempty"`
}

// Snapshot is the aggregate input of one insight computation.
type Snapshot struct {
	Timestamp        time.Time  `json:"timestamp"`
	Income           []LineItem `json:"income"`
	FixedExpenses    []LineItem `json:"fixedExpenses"`
	VariableExpenses []LineItem `json:"variableExpenses"`
	Debts            []LineItem `json:"debts"`
	EmotionalTags    []string   `json:"emotionalTags"`
	Mood             int        `json:"mood"`
}

// Overrides holds the snapshot fields a what-if simulation replaces.
// Nil fields keep the base value.
type Overrides struct {
	Timestamp        *time.Time `json:"timestamp,omitempty"`
	Mood             *int       `json:"mood,omitempty"`
	Income           []LineItem `json:"income,omitempty"`
	FixedExpenses    []LineItem `json:"fixedExpenses,omitempty"`
	VariableExpenses []LineItem `json:"variableExpenses,omitempty"`
	Debts            []LineItem `json:"debts,omitempty"`
	EmotionalTags    []string   `json:"emotionalTags,omitempty"`
}

// Apply returns a copy of s with every non-nil override replacing the
// corresponding field. Collections are replaced wholesale, never merged.
func (s Snapshot) Apply(o Overrides) Snapshot {
	merged := s
	if o.Income != nil {
		merged.Income = o.Income
	}
	if o.FixedExpenses != nil {
		merged.FixedExpenses = o.FixedExpenses
	}
	if o.VariableExpenses != nil {
		merged.VariableExpenses = o.VariableExpenses
	}
	if o.Debts != nil {
		merged.Debts = o.Debts
	}
	if o.EmotionalTags != nil {
		merged.EmotionalTags = o.EmotionalTags
	}
	if o.Mood != nil {
		merged.Mood = *o.Mood
	}
	if o.Timestamp != nil {
		merged.Timestamp = *o.Timestamp
	}
	return merged
}

// Validate checks the snapshot against the input contract the insight engine
// relies on. It is meant for the layers accepting user input.
func (s *Snapshot) Validate() error {
	if s.Mood < MinMood || s.Mood > MaxMood {
		return fmt.Errorf("%w: mood must be between %d and %d, got %d", common.ErrInvalidSnapshot, MinMood, MaxMood, s.Mood)
	}

	collections := []struct {
		name  string
		items []LineItem
		want  CategoryType
	}{
		{"income", s.Income, CategoryTypeIncome},
		{"fixedExpenses", s.FixedExpenses, CategoryTypeFixed},
		{"variableExpenses", s.VariableExpenses, CategoryTypeVariable},
		{"debts", s.Debts, CategoryTypeDebt},
	}
	for _, c := range collections {
		if len(c.items) > MaxItemsPerCollection {
			return fmt.Errorf("%w: %s has %d items (max %d)", common.ErrInvalidSnapshot, c.name, len(c.items), MaxItemsPerCollection)
		}
		for i, item := range c.items {
			if err := item.validate(c.want); err != nil {
				return fmt.Errorf("%w: %s[%d]: %v", common.ErrInvalidSnapshot, c.name, i, err)
			}
		}
	}

	for _, tag := range s.EmotionalTags {
		if !isKnownTag(tag) {
			return fmt.Errorf("%w: unknown emotional tag %q", common.ErrInvalidSnapshot, tag)
		}
	}

	return nil
}

func (i LineItem) validate(want CategoryType) error {
	name := strings.TrimSpace(i.Name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("name exceeds %d characters", MaxNameLength)
	}
	if i.Amount.IsNegative() {
		return fmt.Errorf("amount must be non-negative, got %s", i.Amount)
	}
	if !i.Category.IsValid() {
		return fmt.Errorf("unknown category %q", i.Category)
	}
	if i.Category.Type() != want {
		return fmt.Errorf("category %q is not a %s category", i.Category, want)
	}
	return nil
}

func isKnownTag(tag string) bool {
	for _, known := range EmotionalTags {
		if tag == known {
			return true
		}
	}
	return false
}

// Sum returns the total amount of items.
func Sum(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total
}
