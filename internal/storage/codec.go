package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"familybudget/internal/core"
	"familybudget/internal/log"
)

// LoadState reads every budget field from store. Missing fields take their
// defaults. A structured field holding malformed JSON is treated as
// missing and logged, so a corrupt entry never prevents startup.
func LoadState(ctx context.Context, store KeyValueStore) (core.BudgetState, error) {
	state := core.DefaultState()

	if raw, ok, err := store.Get(ctx, string(core.FieldIncome)); err != nil {
		return state, fmt.Errorf("load income: %w", err)
	} else if ok {
		var income core.Money
		if err := json.Unmarshal([]byte(raw), &income); err != nil {
			warnCorrupt(ctx, core.FieldIncome, err)
		} else {
			state.Income = income
		}
	}

	if raw, ok, err := store.Get(ctx, string(core.FieldExpenses)); err != nil {
		return state, fmt.Errorf("load expenses: %w", err)
	} else if ok {
		var expenses []core.Expense
		if err := json.Unmarshal([]byte(raw), &expenses); err != nil {
			warnCorrupt(ctx, core.FieldExpenses, err)
		} else {
			state.Expenses = dedupeExpenses(ctx, expenses)
		}
	}

	if raw, ok, err := store.Get(ctx, string(core.FieldHistory)); err != nil {
		return state, fmt.Errorf("load history: %w", err)
	} else if ok {
		var history []core.MonthSnapshot
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			warnCorrupt(ctx, core.FieldHistory, err)
		} else {
			if over := len(history) - core.HistoryLimit; over > 0 {
				history = history[over:]
			}
			if history == nil {
				history = []core.MonthSnapshot{}
			}
			state.History = history
		}
	}

	text := []struct {
		field core.Field
		dst   *string
	}{
		{core.FieldVision, &state.Vision},
		{core.FieldMission, &state.Mission},
		{core.FieldNarrationCredential, &state.NarrationCredential},
	}
	for _, f := range text {
		raw, ok, err := store.Get(ctx, string(f.field))
		if err != nil {
			return state, fmt.Errorf("load %s: %w", f.field, err)
		}
		if ok {
			*f.dst = raw
		}
	}

	return state, nil
}

// SaveField writes the current value of one field of state.
func SaveField(ctx context.Context, store KeyValueStore, state core.BudgetState, field core.Field) error {
	value, err := EncodeField(state, field)
	if err != nil {
		return err
	}
	if err := store.Set(ctx, string(field), value); err != nil {
		return fmt.Errorf("save %s: %w", field, err)
	}
	return nil
}

// EncodeField renders one field in its persisted form: JSON for income,
// expenses and history, the raw text for everything else.
func EncodeField(state core.BudgetState, field core.Field) (string, error) {
	var v any
	switch field {
	case core.FieldIncome:
		v = state.Income
	case core.FieldExpenses:
		expenses := state.Expenses
		if expenses == nil {
			expenses = []core.Expense{}
		}
		v = expenses
	case core.FieldHistory:
		history := state.History
		if history == nil {
			history = []core.MonthSnapshot{}
		}
		v = history
	case core.FieldVision:
		return state.Vision, nil
	case core.FieldMission:
		return state.Mission, nil
	case core.FieldNarrationCredential:
		return state.NarrationCredential, nil
	default:
		return "", fmt.Errorf("unknown field %q", field)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", field, err)
	}
	return string(b), nil
}

func warnCorrupt(ctx context.Context, field core.Field, err error) {
	storageLogger(ctx).WarnContext(ctx, "Discarding malformed persisted field, using default",
		log.FieldKey, string(field),
		log.FieldError, err)
}

// dedupeExpenses keeps the first expense for each id.
func dedupeExpenses(ctx context.Context, in []core.Expense) []core.Expense {
	seen := make(map[string]struct{}, len(in))
	out := make([]core.Expense, 0, len(in))
	for _, e := range in {
		if _, ok := seen[e.ID]; ok {
			storageLogger(ctx).WarnContext(ctx, "Dropping expense with duplicate id",
				"id", e.ID,
				"category", e.Category.String())
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}

func storageLogger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentStorage)
}
