package budget

import (
	"context"
	"time"

	"familybudget/internal/advice"
	"familybudget/internal/core"
	"familybudget/internal/narration"
	"familybudget/internal/report"
)

// Ports the controller depends on.
type (
	Advisor interface {
		Advise(ctx context.Context, details advice.BudgetDetails) (string, error)
	}

	Narrator interface {
		Synthesize(ctx context.Context, text, credential string) (narration.Audio, error)
	}

	Exporter interface {
		Export(ctx context.Context, region string, data report.Data) (report.Document, error)
	}

	// HistoryPublisher announces saved months to downstream mirrors.
	HistoryPublisher interface {
		PublishMonthSaved(ctx context.Context, snap core.MonthSnapshot) error
	}

	Clock interface {
		Now() time.Time
	}
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
