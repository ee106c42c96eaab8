package model

// CategoryType indicates which snapshot collection a category belongs to.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income items.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeFixed represents categories for recurring fixed expenses.
	CategoryTypeFixed CategoryType = "fixed"
	// CategoryTypeVariable represents categories for discretionary spending.
	CategoryTypeVariable CategoryType = "variable"
	// CategoryTypeDebt represents categories for debt repayments.
	CategoryTypeDebt CategoryType = "debt"
)

// Category is one of the fixed line item categories.
type Category string

// Income categories.
const (
	CategorySalary      Category = "salary"
	CategoryFreelance   Category = "freelance"
	CategoryInvestment  Category = "investment"
	CategoryOtherIncome Category = "other_income"
)

// Fixed expense categories.
const (
	CategoryHousing       Category = "housing"
	CategoryUtilities     Category = "utilities"
	CategoryInsurance     Category = "insurance"
	CategorySubscriptions Category = "subscriptions"
	CategoryTransport     Category = "transport"
)

// Variable expense categories.
const (
	CategoryGroceries     Category = "groceries"
	CategoryDining        Category = "dining"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryTravel        Category = "travel"
	CategoryHealth        Category = "health"
	CategoryOther         Category = "other"
)

// Debt categories.
const (
	CategoryCreditCard Category = "credit_card"
	CategoryLoan       Category = "loan"
	CategoryMortgage   Category = "mortgage"
)

var categoryTypes = map[Category]CategoryType{
	CategorySalary:        CategoryTypeIncome,
	CategoryFreelance:     CategoryTypeIncome,
	CategoryInvestment:    CategoryTypeIncome,
	CategoryOtherIncome:   CategoryTypeIncome,
	CategoryHousing:       CategoryTypeFixed,
	CategoryUtilities:     CategoryTypeFixed,
	CategoryInsurance:     CategoryTypeFixed,
	CategorySubscriptions: CategoryTypeFixed,
	CategoryTransport:     CategoryTypeFixed,
	CategoryGroceries:     CategoryTypeVariable,
	CategoryDining:        CategoryTypeVariable,
	CategoryEntertainment: CategoryTypeVariable,
	CategoryShopping:      CategoryTypeVariable,
	CategoryTravel:        CategoryTypeVariable,
	CategoryHealth:        CategoryTypeVariable,
	CategoryOther:         CategoryTypeVariable,
	CategoryCreditCard:    CategoryTypeDebt,
	CategoryLoan:          CategoryTypeDebt,
	CategoryMortgage:      CategoryTypeDebt,
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	_, ok := categoryTypes[c]
	return ok
}

// Type returns the collection type of the category, or "" when unknown.
func (c Category) Type() CategoryType {
	return categoryTypes[c]
}
