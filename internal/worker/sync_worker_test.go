package worker

import (
	"context"
	"errors"
	"testing"

	"familybudget/internal/amqp"
	"familybudget/internal/core"
	"familybudget/internal/sheets/memory"
)

type failingWriter struct{}

func (failingWriter) UpsertMonth(ctx context.Context, snap core.MonthSnapshot) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestHistorySyncWorker_HandleMonthSaved(t *testing.T) {
	store := memory.New()
	w := NewHistorySyncWorker(store, nil)
	ctx := context.Background()

	msg := &amqp.MonthSavedMessage{Month: "Jan 2024", TotalIncome: core.NewMoney(500), TotalExpenses: core.NewMoney(200)}
	if err := w.HandleMonthSaved(ctx, msg); err != nil {
		t.Fatal(err)
	}
	msg.TotalExpenses = core.NewMoney(250)
	if err := w.HandleMonthSaved(ctx, msg); err != nil {
		t.Fatal(err)
	}

	rows, _ := store.ListMonths(ctx)
	if len(rows) != 1 || !rows[0].TotalExpenses.Equal(core.NewMoney(250)) {
		t.Errorf("rows = %+v", rows)
	}
}

func TestHistorySyncWorker_WriterFailure(t *testing.T) {
	w := NewHistorySyncWorker(failingWriter{}, nil)
	err := w.HandleMonthSaved(context.Background(), &amqp.MonthSavedMessage{Month: "Jan 2024"})
	if err == nil {
		t.Fatal("expected error so the message is requeued")
	}
}
