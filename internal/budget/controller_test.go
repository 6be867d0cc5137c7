package budget

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"familybudget/internal/advice"
	"familybudget/internal/core"
	"familybudget/internal/narration"
	"familybudget/internal/report"
	"familybudget/internal/storage/memory"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeAdvisor struct {
	mu      sync.Mutex
	text    string
	err     error
	calls   int
	got     advice.BudgetDetails
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeAdvisor) Advise(ctx context.Context, d advice.BudgetDetails) (string, error) {
	f.mu.Lock()
	f.calls++
	f.got = d
	f.mu.Unlock()
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	return f.text, f.err
}

type fakeNarrator struct {
	calls      int
	text       string
	credential string
	err        error
}

func (f *fakeNarrator) Synthesize(ctx context.Context, text, credential string) (narration.Audio, error) {
	f.calls++
	f.text = text
	f.credential = credential
	if f.err != nil {
		return narration.Audio{}, f.err
	}
	return narration.Audio{ContentType: "audio/mpeg", Data: []byte("mp3")}, nil
}

type fakePublisher struct {
	published []core.MonthSnapshot
	err       error
}

func (f *fakePublisher) PublishMonthSaved(ctx context.Context, snap core.MonthSnapshot) error {
	f.published = append(f.published, snap)
	return f.err
}

type fakeExporter struct {
	region string
	data   report.Data
}

func (f *fakeExporter) Export(ctx context.Context, region string, data report.Data) (report.Document, error) {
	if region != "report-content" {
		return report.Document{}, report.ErrRegionNotFound
	}
	f.region = region
	f.data = data
	return report.Document{Name: "r.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}, nil
}

type failingStore struct{ *memory.Store }

func (f failingStore) Set(ctx context.Context, key, value string) error {
	return errors.New("disk full")
}

func sequentialIDs() func() string {
	n := 100
	return func() string {
		n++
		return strconv.Itoa(n)
	}
}

func newController(t *testing.T, opts ...Option) (*Controller, *memory.Store) {
	t.Helper()
	store := memory.New()
	base := []Option{
		WithClock(fixedClock{t: time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)}),
		WithIDGenerator(sequentialIDs()),
	}
	c, err := New(context.Background(), store, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c, store
}

func TestNew_Defaults(t *testing.T) {
	c, store := newController(t)
	snap := c.Snapshot()

	if len(snap.Expenses) != 8 {
		t.Errorf("expected 8 default expenses, got %d", len(snap.Expenses))
	}
	if !snap.Income.IsZero() || len(snap.History) != 0 {
		t.Errorf("unexpected defaults: %+v", snap)
	}
	if store.Writes() != 0 {
		t.Errorf("loading must not write, got %d writes", store.Writes())
	}
}

func TestController_SetIncomePersists(t *testing.T) {
	c, store := newController(t)
	ctx := context.Background()

	if err := c.SetIncome(ctx, core.NewMoney(-2500)); err != nil {
		t.Fatalf("SetIncome() error = %v", err)
	}
	if got := store.Snapshot()["income"]; got != "-2500" {
		t.Errorf("persisted income = %q", got)
	}
	if got := c.Snapshot().Totals.RemainingBalance; !got.Equal(core.NewMoney(-2500)) {
		t.Errorf("remaining = %v", got)
	}
}

func TestController_AddRemoveRoundTrip(t *testing.T) {
	c, store := newController(t)
	ctx := context.Background()
	before := c.Snapshot().Expenses

	e, err := c.AddExpense(ctx, "  School fees ")
	if err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}
	if e.ID != "101" || e.Category.String() != "School fees" || !e.Category.IsCustom() || !e.Amount.IsZero() {
		t.Errorf("unexpected expense %+v", e)
	}
	if n := len(c.Snapshot().Expenses); n != len(before)+1 {
		t.Fatalf("expected %d expenses, got %d", len(before)+1, n)
	}

	if err := c.RemoveExpense(ctx, e.ID); err != nil {
		t.Fatalf("RemoveExpense() error = %v", err)
	}
	after := c.Snapshot().Expenses
	if len(after) != len(before) {
		t.Fatalf("round trip changed length: %d vs %d", len(after), len(before))
	}
	for i := range before {
		if after[i].ID != before[i].ID {
			t.Errorf("position %d: got %s, want %s", i, after[i].ID, before[i].ID)
		}
	}
	if !strings.Contains(store.Snapshot()["expenses"], `"id":"1"`) {
		t.Error("expected expenses to be persisted")
	}
}

func TestController_AddExpenseBlank(t *testing.T) {
	c, store := newController(t)

	if _, err := c.AddExpense(context.Background(), "   "); !errors.Is(err, core.ErrEmptyCategory) {
		t.Errorf("AddExpense() error = %v, want ErrEmptyCategory", err)
	}
	if store.Writes() != 0 {
		t.Error("blank category must not persist anything")
	}
}

func TestController_AddExpenseSkipsCollidingIDs(t *testing.T) {
	ids := []string{"1", "2", "fresh"}
	i := 0
	c, _ := newController(t, WithIDGenerator(func() string {
		id := ids[i]
		i++
		return id
	}))

	e, err := c.AddExpense(context.Background(), core.CategoryOther)
	if err != nil {
		t.Fatal(err)
	}
	if e.ID != "fresh" {
		t.Errorf("ID = %q, want fresh", e.ID)
	}
}

func TestController_UpdateExpense(t *testing.T) {
	c, store := newController(t)
	ctx := context.Background()
	amount := core.NewMoney(150000)
	due := "2024-02-01"

	if err := c.UpdateExpense(ctx, "3", core.ExpensePatch{Amount: &amount, DueDate: &due}); err != nil {
		t.Fatal(err)
	}
	e := c.Snapshot().Expenses[2]
	if !e.Amount.Equal(amount) || e.DueDate == nil || *e.DueDate != due {
		t.Errorf("unexpected expense %+v", e)
	}

	writes := store.Writes()
	if err := c.UpdateExpense(ctx, "missing", core.ExpensePatch{Amount: &amount}); err != nil {
		t.Fatal(err)
	}
	if store.Writes() != writes {
		t.Error("unknown id must not persist")
	}
}

func TestController_TextFieldsVerbatim(t *testing.T) {
	c, store := newController(t)
	ctx := context.Background()

	_ = c.SetVision(ctx, "  Own a house  ")
	_ = c.SetMission(ctx, "")
	_ = c.SetNarrationCredential(ctx, "xi-key")

	entries := store.Snapshot()
	if entries["familyVision"] != "  Own a house  " {
		t.Errorf("vision = %q", entries["familyVision"])
	}
	if v, ok := entries["familyMission"]; !ok || v != "" {
		t.Errorf("mission = %q, %v", v, ok)
	}
	if entries["narrationCredential"] != "xi-key" || !c.Snapshot().HasNarrationKey {
		t.Error("credential not stored")
	}
}

func TestController_SaveCurrentMonth(t *testing.T) {
	pub := &fakePublisher{}
	c, store := newController(t, WithHistoryPublisher(pub))
	ctx := context.Background()

	_ = c.SetIncome(ctx, core.NewMoney(500))
	amount := core.NewMoney(100)
	_ = c.UpdateExpense(ctx, "1", core.ExpensePatch{Amount: &amount})

	snap, msg, err := c.SaveCurrentMonth(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if msg != "Jan 2024 data has been saved!" {
		t.Errorf("message = %q", msg)
	}
	if snap.MonthKey != "Jan 2024" || !snap.TotalExpenses.Equal(amount) {
		t.Errorf("snapshot = %+v", snap)
	}

	amount = core.NewMoney(150)
	_ = c.UpdateExpense(ctx, "1", core.ExpensePatch{Amount: &amount})
	if _, _, err := c.SaveCurrentMonth(ctx); err != nil {
		t.Fatal(err)
	}

	history := c.History()
	if len(history) != 1 || !history[0].TotalExpenses.Equal(core.NewMoney(150)) {
		t.Errorf("history = %+v", history)
	}
	if !strings.Contains(store.Snapshot()["historicalData"], `"month":"Jan 2024"`) {
		t.Error("history not persisted")
	}
	if len(pub.published) != 2 {
		t.Errorf("published %d events, want 2", len(pub.published))
	}
}

func TestController_SaveCurrentMonthPublishFailureIgnored(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	c, _ := newController(t, WithHistoryPublisher(pub))

	if _, _, err := c.SaveCurrentMonth(context.Background()); err != nil {
		t.Errorf("publish failure must not fail the save: %v", err)
	}
}

func TestController_PersistFailureKeepsState(t *testing.T) {
	store := failingStore{memory.New()}
	c, err := New(context.Background(), store)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.SetIncome(context.Background(), core.NewMoney(42)); err == nil {
		t.Fatal("expected persistence error")
	}
	if !c.Snapshot().Income.Equal(core.NewMoney(42)) {
		t.Error("in-memory state should keep the new value")
	}
}

func TestController_RequestAdvice(t *testing.T) {
	advisor := &fakeAdvisor{text: "Keep saving."}
	c, _ := newController(t, WithAdvisor(advisor))
	ctx := context.Background()
	_ = c.SetIncome(ctx, core.NewMoney(500000))

	text, err := c.RequestAdvice(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if text != "Keep saving." {
		t.Errorf("text = %q", text)
	}
	snap := c.Snapshot()
	if snap.AdviceText != "Keep saving." || snap.AdviceLoading {
		t.Errorf("snapshot = %+v", snap)
	}
	if !advisor.got.RemainingBalance.Equal(core.NewMoney(500000)) || len(advisor.got.Expenses) != 8 {
		t.Errorf("advisor got %+v", advisor.got)
	}
}

func TestController_RequestAdviceFailure(t *testing.T) {
	advisor := &fakeAdvisor{err: advice.ErrMissingAPIKey}
	c, _ := newController(t, WithAdvisor(advisor))

	text, err := c.RequestAdvice(context.Background())
	if !errors.Is(err, ErrAdviceFailed) || !errors.Is(err, advice.ErrMissingAPIKey) {
		t.Errorf("error = %v", err)
	}
	if text != AdviceFailedMessage {
		t.Errorf("text = %q", text)
	}
	snap := c.Snapshot()
	if snap.AdviceText != AdviceFailedMessage || snap.AdviceLoading {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestController_RequestAdviceLoadingFlag(t *testing.T) {
	advisor := &fakeAdvisor{
		text:    "ok",
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	c, _ := newController(t, WithAdvisor(advisor))
	c.adviceText = "old advice"

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.RequestAdvice(context.Background())
	}()

	<-advisor.entered
	snap := c.Snapshot()
	if !snap.AdviceLoading || snap.AdviceText != "" {
		t.Errorf("during call: loading=%v text=%q", snap.AdviceLoading, snap.AdviceText)
	}
	close(advisor.block)
	<-done

	if c.Snapshot().AdviceLoading {
		t.Error("loading flag not cleared")
	}
}

func TestController_RequestNarrationMissingCredential(t *testing.T) {
	narrator := &fakeNarrator{}
	c, _ := newController(t, WithNarrator(narrator))

	_, err := c.RequestNarration(context.Background())
	if !errors.Is(err, ErrMissingNarrationCredential) {
		t.Errorf("error = %v", err)
	}
	if narrator.calls != 0 {
		t.Error("narrator must not be called without a credential")
	}
	if c.Snapshot().NarrationLoading {
		t.Error("loading flag must stay false")
	}
}

func TestController_RequestNarration(t *testing.T) {
	narrator := &fakeNarrator{}
	c, _ := newController(t, WithNarrator(narrator))
	ctx := context.Background()
	_ = c.SetNarrationCredential(ctx, "xi-key")

	res, err := c.RequestNarration(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if narrator.credential != "xi-key" || narrator.text != res.Text {
		t.Errorf("narrator got %q / %q", narrator.credential, narrator.text)
	}
	if res.URL != "/narration/audio/"+res.ClipID {
		t.Errorf("URL = %q", res.URL)
	}
	clip, ok := c.Clip(res.ClipID)
	if !ok || string(clip.Data) != "mp3" {
		t.Errorf("clip = %+v, %v", clip, ok)
	}
	if c.Snapshot().NarrationLoading {
		t.Error("loading flag not cleared")
	}
}

func TestController_RequestNarrationFailure(t *testing.T) {
	apiErr := &narration.APIError{StatusCode: 401, Status: "401 Unauthorized", Body: "bad key"}
	c, _ := newController(t, WithNarrator(&fakeNarrator{err: apiErr}))
	ctx := context.Background()
	_ = c.SetNarrationCredential(ctx, "xi-key")

	_, err := c.RequestNarration(ctx)
	if !errors.Is(err, ErrNarrationFailed) {
		t.Errorf("error = %v, want ErrNarrationFailed", err)
	}
	var target *narration.APIError
	if !errors.As(err, &target) {
		t.Error("expected APIError in chain")
	}
	if c.Snapshot().NarrationLoading {
		t.Error("loading flag not cleared")
	}
}

func TestNarrationSummary(t *testing.T) {
	s := core.DefaultState()
	s.Income = core.NewMoney(500000)
	s.Expenses = []core.Expense{
		{ID: "1", Category: core.ParseCategory(core.CategoryRent), Amount: core.NewMoney(150000)},
		{ID: "2", Category: core.ParseCategory(core.CategoryFood), Amount: core.NewMoney(80000)},
		{ID: "3", Category: core.ParseCategory(core.CategorySavings)},
	}

	want := "Here is your monthly financial summary. Your total income is 500000 Rwandan Francs. " +
		"You have spent a total of 230000 Rwandan Francs, leaving a balance of 270000 Rwandan Francs. " +
		"Your main expenses are in Rent or house payment, Food and groceries. Your family vision is: not set."
	if got := NarrationSummary(s); got != want {
		t.Errorf("NarrationSummary() =\n%s\nwant\n%s", got, want)
	}

	s.Vision = "A home of our own"
	if !strings.HasSuffix(NarrationSummary(s), "Your family vision is: A home of our own.") {
		t.Error("vision not included")
	}
}

func TestController_ExportReport(t *testing.T) {
	exp := &fakeExporter{}
	c, _ := newController(t, WithExporter(exp))

	doc, err := c.ExportReport(context.Background(), "report-content")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Name != "r.pdf" || exp.data.GeneratedAt.Year() != 2024 || len(exp.data.Expenses) != 8 {
		t.Errorf("unexpected export %+v / %+v", doc, exp.data)
	}

	if _, err := c.ExportReport(context.Background(), "nope"); !errors.Is(err, report.ErrRegionNotFound) {
		t.Errorf("error = %v, want ErrRegionNotFound", err)
	}
}
