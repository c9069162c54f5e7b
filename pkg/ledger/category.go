package ledger

// ExpenseCategory is the closed set of expense categories.
type ExpenseCategory string

const (
	CategoryRent        ExpenseCategory = "rent"
	CategorySalaries    ExpenseCategory = "salaries"
	CategoryPurchases   ExpenseCategory = "purchases"
	CategoryUtilities   ExpenseCategory = "utilities"
	CategoryMaintenance ExpenseCategory = "maintenance"
	CategoryMarketing   ExpenseCategory = "marketing"
	CategoryOther       ExpenseCategory = "other"

	// CategoryUnspecified is the sentinel used when grouping expenses that
	// were recorded without a category. It is not a valid input value.
	CategoryUnspecified ExpenseCategory = "unspecified"
)

// Categories lists all valid input categories.
func Categories() []ExpenseCategory {
	return []ExpenseCategory{
		CategoryRent,
		CategorySalaries,
		CategoryPurchases,
		CategoryUtilities,
		CategoryMaintenance,
		CategoryMarketing,
		CategoryOther,
	}
}

// IsValid reports whether c is a valid input category.
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case CategoryRent, CategorySalaries, CategoryPurchases, CategoryUtilities,
		CategoryMaintenance, CategoryMarketing, CategoryOther:
		return true
	}
	return false
}
