package core

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Known expense categories offered by default.
const (
	CategoryFood          = "Food and groceries"
	CategoryChildren      = "Children’s needs"
	CategoryRent          = "Rent or house payment"
	CategoryUtilities     = "Electricity and water"
	CategoryTransport     = "Transportation"
	CategoryCommunication = "Communication"
	CategoryEmergencyFund = "Emergency fund"
	CategorySavings       = "Savings"
	CategoryOther         = "Other"
)

var knownCategories = []string{
	CategoryFood,
	CategoryChildren,
	CategoryRent,
	CategoryUtilities,
	CategoryTransport,
	CategoryCommunication,
	CategoryEmergencyFund,
	CategorySavings,
	CategoryOther,
}

// categoryAliases maps alternate spellings onto the canonical label.
var categoryAliases = map[string]string{
	"Children's needs": CategoryChildren,
}

type (
	// Category is either one of the known labels or a custom one typed in
	// by the user. Categories are not required to be unique in a budget.
	Category struct {
		label  string
		custom bool
	}

	// Expense is one spending line of the budget. ID is assigned once and
	// never changes; Amount zero means "not entered yet".
	Expense struct {
		ID       string   `json:"id"`
		Category Category `json:"category"`
		Amount   Money    `json:"amount"`
		DueDate  *string  `json:"dueDate,omitempty"`
	}

	// MonthSnapshot records the totals of one month, keyed by a label
	// such as "Jan 2024".
	MonthSnapshot struct {
		MonthKey      string `json:"month"`
		TotalExpenses Money  `json:"totalExpenses"`
		TotalIncome   Money  `json:"totalIncome"`
	}

	// BudgetState is the whole persisted budget.
	BudgetState struct {
		Income              Money
		Expenses            []Expense
		Vision              string
		Mission             string
		History             []MonthSnapshot
		NarrationCredential string
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
)

// KnownCategories returns the closed set of category labels in display order.
func KnownCategories() []Category {
	out := make([]Category, len(knownCategories))
	for i, l := range knownCategories {
		out[i] = Category{label: l}
	}
	return out
}

// ParseCategory classifies a label. Labels matching a known category
// exactly yield the known variant, anything else is a custom category.
func ParseCategory(label string) Category {
	if canonical, ok := categoryAliases[label]; ok {
		return Category{label: canonical}
	}
	for _, k := range knownCategories {
		if k == label {
			return Category{label: k}
		}
	}
	return Category{label: label, custom: true}
}

// CustomCategory builds a user-defined category without classification.
func CustomCategory(label string) Category {
	return Category{label: label, custom: true}
}

// String returns the display label.
func (c Category) String() string { return c.label }

// IsCustom reports whether the category was supplied by the user.
func (c Category) IsCustom() bool { return c.custom }

// MarshalJSON writes the category as its plain label.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.label)
}

// UnmarshalJSON reads a plain label and classifies it.
func (c *Category) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	*c = ParseCategory(label)
	return nil
}

// DefaultExpenses returns the starting expense list: every known category
// except Other, each with a zero amount.
func DefaultExpenses() []Expense {
	defaults := knownCategories[:len(knownCategories)-1]
	out := make([]Expense, len(defaults))
	for i, l := range defaults {
		out[i] = Expense{
			ID:       strconv.Itoa(i + 1),
			Category: Category{label: l},
		}
	}
	return out
}

// DefaultState returns the state used when nothing has been persisted.
func DefaultState() BudgetState {
	return BudgetState{
		Expenses: DefaultExpenses(),
		History:  []MonthSnapshot{},
	}
}

// FindExpense returns the index of the expense with the given id, or -1.
func (s BudgetState) FindExpense(id string) int {
	for i, e := range s.Expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s BudgetState) clone() BudgetState {
	out := s
	out.Expenses = append([]Expense(nil), s.Expenses...)
	out.History = append([]MonthSnapshot(nil), s.History...)
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
