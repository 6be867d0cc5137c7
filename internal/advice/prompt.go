package advice

import (
	"fmt"
	"strings"

	"familybudget/internal/core"
)

// BudgetDetails is the budget picture an advisor is asked about. It is
// captured once per request so later edits cannot leak into the prompt.
type BudgetDetails struct {
	Income           core.Money
	Expenses         []core.Expense
	RemainingBalance core.Money
}

// BuildPrompt renders the advisor instructions for the given budget.
// Only expenses with a positive amount are listed in the breakdown.
func BuildPrompt(d BudgetDetails) string {
	var breakdown []string
	for _, e := range d.Expenses {
		if e.Amount.IsPositive() {
			breakdown = append(breakdown, fmt.Sprintf("- %s: %s RWF", e.Category, e.Amount))
		}
	}
	totalExpenses := d.Income.Sub(d.RemainingBalance)

	var b strings.Builder
	b.WriteString("You are a friendly and helpful family financial advisor. Your advice should be encouraging and actionable.\n")
	b.WriteString("Analyze the following monthly budget for a family in Rwanda and provide 3-5 concise, practical tips for improvement.\n")
	b.WriteString("The currency is Rwandan Francs (RWF).\n\n")
	b.WriteString("**Budget Overview:**\n")
	fmt.Fprintf(&b, "- **Monthly Salary:** %s RWF\n", d.Income)
	fmt.Fprintf(&b, "- **Total Expenses:** %s RWF\n", totalExpenses)
	fmt.Fprintf(&b, "- **Remaining Balance:** %s RWF\n\n", d.RemainingBalance)
	b.WriteString("**Expense Breakdown:**\n")
	b.WriteString(strings.Join(breakdown, "\n"))
	b.WriteString("\n\n**Instructions:**\n")
	b.WriteString("1.  Start with an encouraging opening statement.\n")
	b.WriteString("2.  Provide 3 to 5 specific, actionable financial tips.\n")
	b.WriteString("3.  Comment on their savings and emergency fund contributions.\n")
	b.WriteString("4.  Keep the tone positive and supportive.\n")
	b.WriteString("5.  Format the output as clean, readable text. Do not use markdown.\n")
	return b.String()
}
