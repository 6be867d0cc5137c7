package core

import "testing"

func TestTotalExpenses(t *testing.T) {
	if !TotalExpenses(nil).IsZero() {
		t.Fatalf("empty list must total zero")
	}
	exp := []Expense{
		{ID: "a", Amount: NewMoney(150000)},
		{ID: "b", Amount: NewMoney(80000)},
		{ID: "c"},
	}
	if got := TotalExpenses(exp); !got.Equal(NewMoney(230000)) {
		t.Fatalf("total = %s", got)
	}
}

func TestRemainingBalance(t *testing.T) {
	cases := []struct {
		income, total, want int64
	}{
		{500000, 230000, 270000},
		{0, 0, 0},
		{100, 250, -150},
	}
	for _, tc := range cases {
		got := RemainingBalance(NewMoney(tc.income), NewMoney(tc.total))
		if !got.Equal(NewMoney(tc.want)) {
			t.Fatalf("RemainingBalance(%d, %d) = %s, want %d", tc.income, tc.total, got, tc.want)
		}
	}
}

func TestStateTotalsScenario(t *testing.T) {
	s := BudgetState{
		Income: NewMoney(500000),
		Expenses: []Expense{
			{ID: "1", Category: ParseCategory(CategoryRent), Amount: NewMoney(150000)},
			{ID: "2", Category: ParseCategory(CategoryFood), Amount: NewMoney(80000)},
		},
	}
	tot := s.Totals()
	if !tot.TotalExpenses.Equal(NewMoney(230000)) {
		t.Fatalf("total expenses = %s", tot.TotalExpenses)
	}
	if !tot.RemainingBalance.Equal(NewMoney(270000)) {
		t.Fatalf("remaining = %s", tot.RemainingBalance)
	}
}

func TestSpendingCategories(t *testing.T) {
	exp := []Expense{
		{ID: "1", Category: ParseCategory(CategoryRent), Amount: NewMoney(10)},
		{ID: "2", Category: ParseCategory(CategoryFood)},
		{ID: "3", Category: CustomCategory("Gym"), Amount: NewMoney(5)},
	}
	got := SpendingCategories(exp)
	if len(got) != 2 || got[0].String() != CategoryRent || got[1].String() != "Gym" {
		t.Fatalf("unexpected categories %v", got)
	}
}
