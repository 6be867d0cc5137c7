package core

// TotalExpenses sums every expense amount. The empty list totals zero.
func TotalExpenses(expenses []Expense) Money {
	total := Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// RemainingBalance is income minus total expenses and may be negative.
func RemainingBalance(income, totalExpenses Money) Money {
	return income.Sub(totalExpenses)
}

// Totals holds the values derived from a budget state.
type Totals struct {
	Income           Money `json:"income"`
	TotalExpenses    Money `json:"totalExpenses"`
	RemainingBalance Money `json:"remainingBalance"`
}

// Totals recomputes the derived values of s.
func (s BudgetState) Totals() Totals {
	total := TotalExpenses(s.Expenses)
	return Totals{
		Income:           s.Income,
		TotalExpenses:    total,
		RemainingBalance: RemainingBalance(s.Income, total),
	}
}

// SpendingCategories lists the categories with a positive amount, in
// display order.
func SpendingCategories(expenses []Expense) []Category {
	var out []Category
	for _, e := range expenses {
		if e.Amount.IsPositive() {
			out = append(out, e.Category)
		}
	}
	return out
}
