package sheets

import (
	"context"

	"familybudget/internal/core"
)

// Ports for outbound adapters.
type (
	// HistoryWriter mirrors saved months to an external sheet. Writing a
	// month that already exists replaces its row.
	HistoryWriter interface {
		UpsertMonth(ctx context.Context, snap core.MonthSnapshot) (rowRef string, err error)
	}

	HistoryReader interface {
		ListMonths(ctx context.Context) ([]core.MonthSnapshot, error)
	}
)
