package budget

import (
	"context"

	"familybudget/internal/core"
	"familybudget/internal/log"
	"familybudget/internal/report"
)

// Snapshot is a read-only view of the controller.
type Snapshot struct {
	Income           core.Money           `json:"income"`
	Expenses         []core.Expense       `json:"expenses"`
	Vision           string               `json:"familyVision"`
	Mission          string               `json:"familyMission"`
	History          []core.MonthSnapshot `json:"historicalData"`
	HasNarrationKey  bool                 `json:"hasNarrationCredential"`
	Totals           core.Totals          `json:"totals"`
	AdviceText       string               `json:"adviceText"`
	AdviceLoading    bool                 `json:"adviceLoading"`
	NarrationLoading bool                 `json:"narrationLoading"`
}

// Snapshot copies the current state together with its derived values.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := c.state
	return Snapshot{
		Income:           s.Income,
		Expenses:         append([]core.Expense{}, s.Expenses...),
		Vision:           s.Vision,
		Mission:          s.Mission,
		History:          append([]core.MonthSnapshot{}, s.History...),
		HasNarrationKey:  s.NarrationCredential != "",
		Totals:           s.Totals(),
		AdviceText:       c.adviceText,
		AdviceLoading:    c.adviceLoading,
		NarrationLoading: c.narrationLoading,
	}
}

// ExportReport renders the given region of the current budget.
func (c *Controller) ExportReport(ctx context.Context, region string) (report.Document, error) {
	if c.exporter == nil {
		return report.Document{}, ErrExportUnavailable
	}
	snap := c.Snapshot()
	doc, err := c.exporter.Export(ctx, region, report.Data{
		Income:      snap.Income,
		Expenses:    snap.Expenses,
		Vision:      snap.Vision,
		Mission:     snap.Mission,
		History:     snap.History,
		Totals:      snap.Totals,
		AdviceText:  snap.AdviceText,
		GeneratedAt: c.clock.Now(),
	})
	if err != nil {
		log.LogError(ctx, c.logger, "Report export failed", err, log.OpExport, nil)
		return report.Document{}, err
	}
	return doc, nil
}
