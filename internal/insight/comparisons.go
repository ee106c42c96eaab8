package insight

import "github.com/shopspring/decimal"

// ComparisonBucket translates an amount into a relatable quantity.
type ComparisonBucket struct {
	Label     string
	Emoji     string
	Category  string
	Threshold decimal.Decimal
	UnitValue decimal.Decimal
}

// comparisonBuckets is ordered by ascending threshold.
var comparisonBuckets = []ComparisonBucket{
	{Threshold: decimal.NewFromInt(0), Label: "artisanal coffees", Emoji: "☕", UnitValue: decimal.RequireFromString("4.50"), Category: "food"},
	{Threshold: decimal.NewFromInt(50), Label: "cinema tickets", Emoji: "🎬", UnitValue: decimal.NewFromInt(12), Category: "leisure"},
	{Threshold: decimal.NewFromInt(200), Label: "restaurant dinners", Emoji: "🍽️", UnitValue: decimal.NewFromInt(45), Category: "food"},
	{Threshold: decimal.NewFromInt(600), Label: "weekend getaways", Emoji: "🧳", UnitValue: decimal.NewFromInt(250), Category: "travel"},
	{Threshold: decimal.NewFromInt(1500), Label: "smartphones", Emoji: "📱", UnitValue: decimal.NewFromInt(800), Category: "tech"},
	{Threshold: decimal.NewFromInt(5000), Label: "months of rent", Emoji: "🏠", UnitValue: decimal.NewFromInt(1100), Category: "housing"},
	{Threshold: decimal.NewFromInt(20000), Label: "used cars", Emoji: "🚗", UnitValue: decimal.NewFromInt(9000), Category: "transport"},
}

// BucketFor returns the bucket with the largest threshold not above the
// absolute amount.
func BucketFor(amount decimal.Decimal) ComparisonBucket {
	amount = amount.Abs()
	for i := len(comparisonBuckets) - 1; i >= 0; i-- {
		if comparisonBuckets[i].Threshold.LessThanOrEqual(amount) {
			return comparisonBuckets[i]
		}
	}
	return comparisonBuckets[0]
}

// Count returns how many whole units of the bucket fit in the amount.
func (b ComparisonBucket) Count(amount decimal.Decimal) int64 {
	return amount.Abs().Div(b.UnitValue).Floor().IntPart()
}
