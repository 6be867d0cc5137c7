package budget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"familybudget/internal/cache"
	"familybudget/internal/core"
	"familybudget/internal/log"
	"familybudget/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// User-facing messages.
const (
	AdviceFailedMessage      = "Sorry, I couldn't fetch financial advice at the moment. Please check your API key and try again."
	MissingCredentialMessage = "Please enter your ElevenLabs API key."
	NarrationFailedMessage   = "Failed to narrate the report. Please check your ElevenLabs API key and console for errors."
)

const (
	savedMonthMessageFormat  = "%s data has been saved!"
	narrationAudioPathFormat = "/narration/audio/%s"
	adviceFlightKey          = "advice"
	narrationFlightKey       = "narration"
	defaultClipCacheSize     = 16
	defaultClipCacheTTL      = 30 * time.Minute
)

var (
	ErrMissingNarrationCredential = errors.New(MissingCredentialMessage)
	ErrNarrationFailed            = errors.New(NarrationFailedMessage)
	ErrAdviceFailed               = errors.New(AdviceFailedMessage)
	ErrAdviceUnavailable          = errors.New("advice backend not configured")
	ErrNarrationUnavailable       = errors.New("narration backend not configured")
	ErrExportUnavailable          = errors.New("report exporter not configured")
)

// Controller owns the budget state. Every mutation goes through a pure
// transition in core and then persists the one field it changed.
type Controller struct {
	mu               sync.Mutex
	state            core.BudgetState
	adviceText       string
	adviceLoading    bool
	narrationLoading bool

	store     storage.KeyValueStore
	advisor   Advisor
	narrator  Narrator
	exporter  Exporter
	publisher HistoryPublisher
	clips     *cache.ClipStore
	clock     Clock
	newID     func() string
	flights   singleflight.Group
	logger    *log.Logger
}

type Option func(*Controller)

func WithAdvisor(a Advisor) Option { return func(c *Controller) { c.advisor = a } }

func WithNarrator(n Narrator) Option { return func(c *Controller) { c.narrator = n } }

func WithExporter(e Exporter) Option { return func(c *Controller) { c.exporter = e } }

func WithHistoryPublisher(p HistoryPublisher) Option {
	return func(c *Controller) { c.publisher = p }
}

func WithClipStore(s *cache.ClipStore) Option { return func(c *Controller) { c.clips = s } }

func WithClock(clock Clock) Option { return func(c *Controller) { c.clock = clock } }

// WithIDGenerator overrides how new expense ids are minted.
func WithIDGenerator(gen func() string) Option { return func(c *Controller) { c.newID = gen } }

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l.WithComponent(log.ComponentBudget) }
}

// New loads the persisted state from store and returns a ready controller.
func New(ctx context.Context, store storage.KeyValueStore, opts ...Option) (*Controller, error) {
	if store == nil {
		return nil, errors.New("budget: nil store")
	}
	c := &Controller{
		store:  store,
		clock:  systemClock{},
		newID:  uuid.NewString,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clips == nil {
		c.clips = cache.NewClipStore(defaultClipCacheSize, defaultClipCacheTTL)
	}

	state, err := storage.LoadState(log.NewContext(ctx, c.logger), store)
	if err != nil {
		return nil, fmt.Errorf("load budget state: %w", err)
	}
	c.state = state

	c.logger.InfoContext(ctx, "Budget state loaded",
		"expenses", len(state.Expenses),
		"history_months", len(state.History))
	return c, nil
}

// apply runs a transition and persists its field. The write happens under
// the lock so the store sees mutations in the order they were applied.
// On a failed write the in-memory state keeps the new value.
func (c *Controller) apply(ctx context.Context, op string, transition func(core.BudgetState) (core.BudgetState, core.Change)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, change := transition(c.state)
	if !change.Applied {
		return nil
	}
	c.state = next

	if err := storage.SaveField(ctx, c.store, next, change.Field); err != nil {
		log.LogError(ctx, c.logger, "Failed to persist budget field", err, op,
			log.LogFields{log.FieldKey: string(change.Field)})
		return fmt.Errorf("persist %s: %w", change.Field, err)
	}
	c.logger.DebugContext(ctx, "Budget field persisted",
		log.FieldOperation, op,
		log.FieldKey, string(change.Field))
	return nil
}

func (c *Controller) SetIncome(ctx context.Context, amount core.Money) error {
	return c.apply(ctx, log.OpSetIncome, func(s core.BudgetState) (core.BudgetState, core.Change) {
		return s.WithIncome(amount)
	})
}

// AddExpense appends a zero-amount expense under category and returns it.
// Blank categories fail with core.ErrEmptyCategory and change nothing.
func (c *Controller) AddExpense(ctx context.Context, category string) (core.Expense, error) {
	var (
		added  core.Expense
		addErr error
	)
	err := c.apply(ctx, log.OpAddExpense, func(s core.BudgetState) (core.BudgetState, core.Change) {
		id := c.uniqueID(s)
		next, e, err := s.AddExpense(category, id)
		if err != nil {
			addErr = err
			return s, core.Change{Field: core.FieldExpenses}
		}
		added = e
		return next, core.Change{Field: core.FieldExpenses, Applied: true}
	})
	if addErr != nil {
		return core.Expense{}, addErr
	}
	c.logger.InfoContext(ctx, "Expense added",
		log.NewFields().WithExpense(added.ID, added.Category.String(), added.Amount.String()).ToSlice()...)
	return added, err
}

// uniqueID draws ids until one is not used by any current expense.
func (c *Controller) uniqueID(s core.BudgetState) string {
	for {
		id := c.newID()
		if s.FindExpense(id) < 0 {
			return id
		}
	}
}

// UpdateExpense patches an expense in place. Unknown ids are ignored.
func (c *Controller) UpdateExpense(ctx context.Context, id string, patch core.ExpensePatch) error {
	return c.apply(ctx, log.OpUpdateExpense, func(s core.BudgetState) (core.BudgetState, core.Change) {
		return s.UpdateExpense(id, patch)
	})
}

// RemoveExpense deletes an expense. Unknown ids are ignored.
func (c *Controller) RemoveExpense(ctx context.Context, id string) error {
	return c.apply(ctx, log.OpRemoveExpense, func(s core.BudgetState) (core.BudgetState, core.Change) {
		return s.RemoveExpense(id)
	})
}

func (c *Controller) SetVision(ctx context.Context, text string) error {
	return c.apply(ctx, log.OpSetVision, func(s core.BudgetState) (core.BudgetState, core.Change) {
		return s.WithVision(text)
	})
}

func (c *Controller) SetMission(ctx context.Context, text string) error {
	return c.apply(ctx, log.OpSetMission, func(s core.BudgetState) (core.BudgetState, core.Change) {
		return s.WithMission(text)
	})
}

func (c *Controller) SetNarrationCredential(ctx context.Context, key string) error {
	return c.apply(ctx, log.OpSetCredential, func(s core.BudgetState) (core.BudgetState, core.Change) {
		return s.WithNarrationCredential(key)
	})
}

// SaveCurrentMonth records the current totals under this month's key and
// returns the snapshot with the confirmation message. Publishing to the
// history mirror is best effort.
func (c *Controller) SaveCurrentMonth(ctx context.Context) (core.MonthSnapshot, string, error) {
	var snap core.MonthSnapshot
	err := c.apply(ctx, log.OpSaveMonth, func(s core.BudgetState) (core.BudgetState, core.Change) {
		snap = s.CurrentSnapshot(core.MonthKey(c.clock.Now()))
		return s.RecordMonth(snap)
	})
	message := fmt.Sprintf(savedMonthMessageFormat, snap.MonthKey)
	if err != nil {
		return snap, message, err
	}

	c.logger.InfoContext(ctx, "Month saved",
		log.FieldOperation, log.OpSaveMonth,
		log.FieldMonth, snap.MonthKey,
		"total_expenses", snap.TotalExpenses.String())

	if c.publisher != nil {
		if err := c.publisher.PublishMonthSaved(ctx, snap); err != nil {
			c.logger.ErrorContext(ctx, "Failed to publish saved month",
				log.FieldMonth, snap.MonthKey,
				log.FieldError, err)
		}
	}
	return snap, message, nil
}

// History returns a copy of the saved months in storage order.
func (c *Controller) History() []core.MonthSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.MonthSnapshot{}, c.state.History...)
}

// Clip returns a previously narrated clip.
func (c *Controller) Clip(id string) (cache.Clip, bool) {
	return c.clips.Get(id)
}

// ClipPath is where a narrated clip can be fetched over HTTP.
func ClipPath(id string) string {
	return fmt.Sprintf(narrationAudioPathFormat, id)
}
