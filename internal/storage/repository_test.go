package storage

import (
	"context"
	"path/filepath"
	"testing"

	"familybudget/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "budget.db"), nil)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepositoryGetSet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, ok, err := repo.Get(ctx, "income"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
	if err := repo.Set(ctx, "income", "100"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := repo.Set(ctx, "income", "250"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, ok, err := repo.Get(ctx, "income")
	if err != nil || !ok || v != "250" {
		t.Fatalf("Get = %q ok=%v err=%v", v, ok, err)
	}
}

func TestSQLiteRepositoryMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.db")
	first, err := NewSQLiteRepository(path, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.Set(context.Background(), "familyVision", "stay"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	first.Close()

	second, err := NewSQLiteRepository(path, nil)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()
	if second.SchemaVersion() != 1 {
		t.Errorf("SchemaVersion() = %d, want 1", second.SchemaVersion())
	}
	v, ok, err := second.Get(context.Background(), "familyVision")
	if err != nil || !ok || v != "stay" {
		t.Fatalf("value lost across reopen: %q ok=%v err=%v", v, ok, err)
	}
}

func TestSQLiteRepositoryStateRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	st := core.DefaultState()
	amt := core.NewMoney(80000)
	st, _ = st.UpdateExpense("1", core.ExpensePatch{Amount: &amt})
	st, _ = st.WithMission("Grow")
	for _, f := range core.Fields() {
		if err := SaveField(ctx, repo, st, f); err != nil {
			t.Fatalf("SaveField(%s): %v", f, err)
		}
	}

	back, err := LoadState(ctx, repo)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if !back.Expenses[0].Amount.Equal(amt) || back.Mission != "Grow" {
		t.Fatalf("state not restored: %+v", back)
	}
}
