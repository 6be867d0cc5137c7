package core

import "time"

// HistoryLimit is the number of month snapshots retained.
const HistoryLimit = 12

// monthKeyLayout renders a short month name and a four digit year.
const monthKeyLayout = "Jan 2006"

// MonthKey returns the history label for t, in t's location.
func MonthKey(t time.Time) string {
	return t.Format(monthKeyLayout)
}

// RecordMonth upserts snap into the history by month key. An existing
// entry is replaced in place; a new one is appended and the oldest
// entries are dropped so that at most HistoryLimit remain. Eviction
// follows insertion order, not calendar order.
func (s BudgetState) RecordMonth(snap MonthSnapshot) (BudgetState, Change) {
	next := s.clone()
	for i, h := range next.History {
		if h.MonthKey == snap.MonthKey {
			next.History[i] = snap
			return next, applied(FieldHistory)
		}
	}
	next.History = append(next.History, snap)
	if over := len(next.History) - HistoryLimit; over > 0 {
		next.History = append([]MonthSnapshot(nil), next.History[over:]...)
	}
	return next, applied(FieldHistory)
}

// CurrentSnapshot captures the totals of s under the given month key.
func (s BudgetState) CurrentSnapshot(monthKey string) MonthSnapshot {
	t := s.Totals()
	return MonthSnapshot{
		MonthKey:      monthKey,
		TotalExpenses: t.TotalExpenses,
		TotalIncome:   t.Income,
	}
}
