package worker

import (
	"context"
	"errors"
	"fmt"

	"familybudget/internal/amqp"
	"familybudget/internal/log"
	"familybudget/internal/sheets"
)

// HistorySyncWorker mirrors saved months from the queue to a sheet.
type HistorySyncWorker struct {
	writer sheets.HistoryWriter
	logger *log.Logger
}

func NewHistorySyncWorker(writer sheets.HistoryWriter, logger *log.Logger) *HistorySyncWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &HistorySyncWorker{
		writer: writer,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleMonthSaved writes one month to the sheet. Errors cause the
// message to be requeued by the consumer.
func (w *HistorySyncWorker) HandleMonthSaved(ctx context.Context, msg *amqp.MonthSavedMessage) error {
	if w.writer == nil {
		return errors.New("no history writer configured")
	}

	w.logger.InfoContext(ctx, "Processing month saved message",
		log.FieldOperation, log.OpSync,
		log.FieldMonth, msg.Month)

	ref, err := w.writer.UpsertMonth(ctx, msg.Snapshot())
	if err != nil {
		return fmt.Errorf("mirror %s: %w", msg.Month, err)
	}

	w.logger.InfoContext(ctx, "Month mirrored",
		log.FieldMonth, msg.Month,
		"ref", ref)
	return nil
}
