package core

import "strings"

// Field names a persisted part of the budget state. The value doubles as
// the storage key.
type Field string

const (
	FieldIncome              Field = "income"
	FieldExpenses            Field = "expenses"
	FieldVision              Field = "familyVision"
	FieldMission             Field = "familyMission"
	FieldHistory             Field = "historicalData"
	FieldNarrationCredential Field = "narrationCredential"
)

// Fields lists every persisted field.
func Fields() []Field {
	return []Field{
		FieldIncome,
		FieldExpenses,
		FieldVision,
		FieldMission,
		FieldHistory,
		FieldNarrationCredential,
	}
}

// Change reports which field a transition touched. Applied is false for
// no-op transitions, which must not be persisted.
type Change struct {
	Field   Field
	Applied bool
}

func applied(f Field) Change { return Change{Field: f, Applied: true} }

func skipped(f Field) Change { return Change{Field: f} }

// ExpensePatch carries the editable fields of an expense. Nil fields are
// left untouched.
type ExpensePatch struct {
	Amount  *Money
	DueDate *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ExpensePatch) IsEmpty() bool {
	return p.Amount == nil && p.DueDate == nil
}

// WithIncome replaces the monthly income. No validation is applied.
func (s BudgetState) WithIncome(amount Money) (BudgetState, Change) {
	next := s.clone()
	next.Income = amount
	return next, applied(FieldIncome)
}

// AddExpense appends a zero-amount expense under the given id. Blank
// category names are rejected without touching the state.
func (s BudgetState) AddExpense(category, id string) (BudgetState, Expense, error) {
	if isBlank(category) {
		return s, Expense{}, ErrEmptyCategory
	}
	e := Expense{ID: id, Category: ParseCategory(strings.TrimSpace(category))}
	next := s.clone()
	next.Expenses = append(next.Expenses, e)
	return next, e, nil
}

// UpdateExpense applies patch to the expense with the given id, keeping
// its position. Unknown ids leave the state unchanged.
func (s BudgetState) UpdateExpense(id string, patch ExpensePatch) (BudgetState, Change) {
	i := s.FindExpense(id)
	if i < 0 || patch.IsEmpty() {
		return s, skipped(FieldExpenses)
	}
	next := s.clone()
	if patch.Amount != nil {
		next.Expenses[i].Amount = *patch.Amount
	}
	if patch.DueDate != nil {
		due := *patch.DueDate
		next.Expenses[i].DueDate = &due
	}
	return next, applied(FieldExpenses)
}

// RemoveExpense drops the expense with the given id if present.
func (s BudgetState) RemoveExpense(id string) (BudgetState, Change) {
	i := s.FindExpense(id)
	if i < 0 {
		return s, skipped(FieldExpenses)
	}
	next := s.clone()
	next.Expenses = append(next.Expenses[:i:i], next.Expenses[i+1:]...)
	return next, applied(FieldExpenses)
}

// WithVision replaces the family vision verbatim.
func (s BudgetState) WithVision(text string) (BudgetState, Change) {
	next := s.clone()
	next.Vision = text
	return next, applied(FieldVision)
}

// WithMission replaces the family mission verbatim.
func (s BudgetState) WithMission(text string) (BudgetState, Change) {
	next := s.clone()
	next.Mission = text
	return next, applied(FieldMission)
}

// WithNarrationCredential replaces the speech service key verbatim.
func (s BudgetState) WithNarrationCredential(key string) (BudgetState, Change) {
	next := s.clone()
	next.NarrationCredential = key
	return next, applied(FieldNarrationCredential)
}
