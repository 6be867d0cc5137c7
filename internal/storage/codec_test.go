package storage

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"familybudget/internal/core"
	"familybudget/internal/log"
	"familybudget/internal/storage/memory"
)

func TestLoadStateDefaults(t *testing.T) {
	st, err := LoadState(context.Background(), memory.New())
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if !st.Income.IsZero() || st.Vision != "" || st.Mission != "" || st.NarrationCredential != "" {
		t.Fatalf("unexpected defaults: %+v", st)
	}
	if !reflect.DeepEqual(st.Expenses, core.DefaultExpenses()) {
		t.Fatalf("expected default expenses, got %+v", st.Expenses)
	}
	if st.History == nil || len(st.History) != 0 {
		t.Fatalf("expected empty history, got %+v", st.History)
	}
}

func TestLoadStateReadsPersistedFields(t *testing.T) {
	store := memory.NewSeeded(map[string]string{
		"income":              "500000",
		"expenses":            `[{"id":"1","category":"Rent or house payment","amount":150000},{"id":"x","category":"Gym","amount":0,"dueDate":"2024-01-10"}]`,
		"familyVision":        "Own a home",
		"familyMission":       "Save together",
		"historicalData":      `[{"month":"Jan 2024","totalExpenses":100,"totalIncome":500}]`,
		"narrationCredential": "sk-voice",
	})
	st, err := LoadState(context.Background(), store)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if !st.Income.Equal(core.NewMoney(500000)) {
		t.Fatalf("income = %s", st.Income)
	}
	if len(st.Expenses) != 2 || !st.Expenses[1].Category.IsCustom() || *st.Expenses[1].DueDate != "2024-01-10" {
		t.Fatalf("unexpected expenses %+v", st.Expenses)
	}
	if st.Vision != "Own a home" || st.Mission != "Save together" || st.NarrationCredential != "sk-voice" {
		t.Fatalf("unexpected text fields %+v", st)
	}
	if len(st.History) != 1 || st.History[0].MonthKey != "Jan 2024" {
		t.Fatalf("unexpected history %+v", st.History)
	}
}

func TestLoadStateRecoversFromCorruptJSON(t *testing.T) {
	store := memory.NewSeeded(map[string]string{
		"income":         "{not json",
		"expenses":       "[{",
		"historicalData": "oops",
		"familyVision":   "still fine",
	})
	var buf bytes.Buffer
	logger := log.New(log.Config{Component: log.ComponentBudget, Output: &buf})
	st, err := LoadState(log.NewContext(context.Background(), logger), store)
	if err != nil {
		t.Fatalf("corrupt fields must not fail loading: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "component=storage") || !strings.Contains(out, "key=income") {
		t.Fatalf("corrupt field not logged through the storage logger: %q", out)
	}
	if !st.Income.IsZero() {
		t.Fatalf("income should fall back to zero")
	}
	if !reflect.DeepEqual(st.Expenses, core.DefaultExpenses()) {
		t.Fatalf("expenses should fall back to defaults")
	}
	if len(st.History) != 0 {
		t.Fatalf("history should fall back to empty")
	}
	if st.Vision != "still fine" {
		t.Fatalf("vision = %q", st.Vision)
	}
}

func TestLoadStateDropsDuplicateIDs(t *testing.T) {
	store := memory.NewSeeded(map[string]string{
		"expenses": `[{"id":"1","category":"Savings","amount":1},{"id":"1","category":"Other","amount":2}]`,
	})
	st, err := LoadState(context.Background(), store)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if len(st.Expenses) != 1 || st.Expenses[0].Category.String() != core.CategorySavings {
		t.Fatalf("unexpected expenses %+v", st.Expenses)
	}
}

func TestSaveFieldEncodings(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	st := core.DefaultState()
	st, _ = st.WithIncome(core.NewMoney(1200))
	st, _ = st.WithVision("Dream big")
	st, _, _ = st.AddExpense("Gym", "g1")
	st, _ = st.RecordMonth(core.MonthSnapshot{MonthKey: "Feb 2024", TotalExpenses: core.NewMoney(10), TotalIncome: core.NewMoney(1200)})

	for _, f := range core.Fields() {
		if err := SaveField(ctx, store, st, f); err != nil {
			t.Fatalf("SaveField(%s): %v", f, err)
		}
	}

	snap := store.Snapshot()
	if snap["income"] != "1200" {
		t.Fatalf("income encoded as %q", snap["income"])
	}
	if snap["familyVision"] != "Dream big" {
		t.Fatalf("vision encoded as %q", snap["familyVision"])
	}
	if snap["historicalData"] != `[{"month":"Feb 2024","totalExpenses":10,"totalIncome":1200}]` {
		t.Fatalf("history encoded as %q", snap["historicalData"])
	}
	if snap["narrationCredential"] != "" {
		t.Fatalf("credential encoded as %q", snap["narrationCredential"])
	}

	back, err := LoadState(ctx, store)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if len(back.Expenses) != len(st.Expenses) || back.Expenses[len(back.Expenses)-1].ID != "g1" {
		t.Fatalf("expenses did not survive: %+v", back.Expenses)
	}
}

func TestEncodeFieldUnknown(t *testing.T) {
	if _, err := EncodeField(core.DefaultState(), core.Field("bogus")); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}
