package report

import (
	"fmt"

	"familybudget/internal/core"
)

// Style selects how a line is drawn.
type Style int

const (
	StyleBody Style = iota
	StyleTitle
	StyleHeading
	StyleMuted
	StyleAlert
	StyleRule
)

// Line is one row of a rasterized region.
type Line struct {
	Text  string
	Style Style
}

func body(format string, args ...any) Line {
	return Line{Text: fmt.Sprintf(format, args...), Style: StyleBody}
}

func heading(text string) Line { return Line{Text: text, Style: StyleHeading} }

func rule() Line { return Line{Style: StyleRule} }

func blank() Line { return Line{} }

func fullReport(d Data) []Line {
	lines := []Line{
		{Text: "Family Budget Report", Style: StyleTitle},
		{Text: "Generated " + d.GeneratedAt.Format("2 Jan 2006"), Style: StyleMuted},
		rule(),
	}
	lines = append(lines, summaryRegion(d)...)
	lines = append(lines, rule())
	lines = append(lines, goalsSection(d)...)
	if d.AdviceText != "" {
		lines = append(lines, rule(), heading("Financial Advice"))
		for _, l := range wrap(d.AdviceText, textColumns) {
			lines = append(lines, body("%s", l))
		}
	}
	lines = append(lines, rule())
	lines = append(lines, historyRegion(d)...)
	return lines
}

func summaryRegion(d Data) []Line {
	lines := []Line{
		heading("Monthly Overview"),
		body("%-24s %20s", "Total income", FormatAmount(d.Totals.Income)),
		body("%-24s %20s", "Total expenses", FormatAmount(d.Totals.TotalExpenses)),
	}
	remaining := Line{Text: fmt.Sprintf("%-24s %20s", "Remaining balance", FormatAmount(d.Totals.RemainingBalance))}
	if d.Totals.RemainingBalance.IsNegative() {
		remaining.Text += "  over budget"
		remaining.Style = StyleAlert
	}
	lines = append(lines, remaining, blank(), heading("Expenses"))
	lines = append(lines, Line{Text: fmt.Sprintf("%-32s %20s  %s", "Category", "Amount", "Due"), Style: StyleMuted})
	for _, e := range d.Expenses {
		due := ""
		if e.DueDate != nil {
			due = *e.DueDate
		}
		lines = append(lines, body("%-32s %20s  %s", truncate(e.Category.String(), 32), formatEntered(e.Amount), due))
	}
	if len(d.Expenses) == 0 {
		lines = append(lines, Line{Text: "No expenses recorded", Style: StyleMuted})
	}
	return lines
}

func goalsSection(d Data) []Line {
	lines := []Line{heading("Family Vision")}
	lines = append(lines, textOrPlaceholder(d.Vision)...)
	lines = append(lines, blank(), heading("Family Mission"))
	lines = append(lines, textOrPlaceholder(d.Mission)...)
	return lines
}

func textOrPlaceholder(text string) []Line {
	if text == "" {
		return []Line{{Text: "Not set", Style: StyleMuted}}
	}
	var lines []Line
	for _, l := range wrap(text, textColumns) {
		lines = append(lines, body("%s", l))
	}
	return lines
}

func historyRegion(d Data) []Line {
	lines := []Line{
		heading("Monthly History"),
		{Text: fmt.Sprintf("%-10s %20s %20s %20s", "Month", "Income", "Expenses", "Balance"), Style: StyleMuted},
	}
	if len(d.History) == 0 {
		return append(lines, Line{Text: "No months saved yet", Style: StyleMuted})
	}
	for _, h := range d.History {
		balance := core.RemainingBalance(h.TotalIncome, h.TotalExpenses)
		l := body("%-10s %20s %20s %20s", h.MonthKey,
			FormatAmount(h.TotalIncome), FormatAmount(h.TotalExpenses), FormatAmount(balance))
		if balance.IsNegative() {
			l.Style = StyleAlert
		}
		lines = append(lines, l)
	}
	return lines
}
