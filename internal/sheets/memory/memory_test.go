package memory

import (
	"context"
	"testing"

	"familybudget/internal/core"
)

func TestStore_UpsertMonth(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.UpsertMonth(ctx, core.MonthSnapshot{MonthKey: "Jan 2024", TotalIncome: core.NewMoney(500)})
	if err != nil || ref != "mem:1" {
		t.Fatalf("UpsertMonth() = %q, %v", ref, err)
	}
	_, _ = s.UpsertMonth(ctx, core.MonthSnapshot{MonthKey: "Feb 2024"})
	ref, _ = s.UpsertMonth(ctx, core.MonthSnapshot{MonthKey: "Jan 2024", TotalIncome: core.NewMoney(700)})
	if ref != "mem:1" {
		t.Errorf("update ref = %q, want mem:1", ref)
	}

	rows, _ := s.ListMonths(ctx)
	if len(rows) != 2 || !rows[0].TotalIncome.Equal(core.NewMoney(700)) {
		t.Errorf("rows = %+v", rows)
	}

	if _, err := s.UpsertMonth(ctx, core.MonthSnapshot{}); err == nil {
		t.Error("expected error for empty month")
	}
}
