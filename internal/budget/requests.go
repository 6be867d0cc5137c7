package budget

import (
	"context"
	"fmt"
	"strings"

	"familybudget/internal/advice"
	"familybudget/internal/cache"
	"familybudget/internal/core"
	"familybudget/internal/log"
)

// RequestAdvice asks the advisor about the current budget. The advice
// text is replaced either by the answer or by the fixed apology, and the
// loading flag is cleared on every path. Concurrent callers share one
// backend call.
func (c *Controller) RequestAdvice(ctx context.Context) (string, error) {
	v, err, _ := c.flights.Do(adviceFlightKey, func() (any, error) {
		return c.runAdvice(context.WithoutCancel(ctx))
	})
	text, _ := v.(string)
	return text, err
}

func (c *Controller) runAdvice(ctx context.Context) (string, error) {
	c.mu.Lock()
	c.adviceLoading = true
	c.adviceText = ""
	totals := c.state.Totals()
	details := advice.BudgetDetails{
		Income:           c.state.Income,
		Expenses:         append([]core.Expense{}, c.state.Expenses...),
		RemainingBalance: totals.RemainingBalance,
	}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.adviceLoading = false
		c.mu.Unlock()
	}()

	var (
		text string
		err  error
	)
	if c.advisor == nil {
		err = ErrAdviceUnavailable
	} else {
		text, err = c.advisor.Advise(ctx, details)
	}

	if err != nil {
		log.LogError(ctx, c.logger, "Advice request failed", err, log.OpAdvice, nil)
		c.setAdviceText(AdviceFailedMessage)
		return AdviceFailedMessage, fmt.Errorf("%w: %w", ErrAdviceFailed, err)
	}

	c.setAdviceText(text)
	return text, nil
}

func (c *Controller) setAdviceText(text string) {
	c.mu.Lock()
	c.adviceText = text
	c.mu.Unlock()
}

// NarrationSummary is the text read aloud for a budget.
func NarrationSummary(s core.BudgetState) string {
	totals := s.Totals()
	var cats []string
	for _, cat := range core.SpendingCategories(s.Expenses) {
		cats = append(cats, cat.String())
	}
	vision := s.Vision
	if vision == "" {
		vision = "not set"
	}
	return fmt.Sprintf("Here is your monthly financial summary. Your total income is %s Rwandan Francs. "+
		"You have spent a total of %s Rwandan Francs, leaving a balance of %s Rwandan Francs. "+
		"Your main expenses are in %s. Your family vision is: %s.",
		totals.Income, totals.TotalExpenses, totals.RemainingBalance,
		strings.Join(cats, ", "), vision)
}

// NarrationResult is a playable narration.
type NarrationResult struct {
	ClipID      string `json:"clipId"`
	ContentType string `json:"contentType"`
	URL         string `json:"url"`
	Text        string `json:"text"`
}

// RequestNarration reads the budget summary aloud. Without a credential
// it returns ErrMissingNarrationCredential before touching any state.
func (c *Controller) RequestNarration(ctx context.Context) (NarrationResult, error) {
	c.mu.Lock()
	credential := c.state.NarrationCredential
	c.mu.Unlock()
	if credential == "" {
		return NarrationResult{}, ErrMissingNarrationCredential
	}

	v, err, _ := c.flights.Do(narrationFlightKey, func() (any, error) {
		return c.runNarration(context.WithoutCancel(ctx))
	})
	res, _ := v.(NarrationResult)
	return res, err
}

func (c *Controller) runNarration(ctx context.Context) (NarrationResult, error) {
	c.mu.Lock()
	credential := c.state.NarrationCredential
	text := NarrationSummary(c.state)
	c.narrationLoading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.narrationLoading = false
		c.mu.Unlock()
	}()

	if c.narrator == nil {
		return NarrationResult{}, fmt.Errorf("%w: %w", ErrNarrationFailed, ErrNarrationUnavailable)
	}

	audio, err := c.narrator.Synthesize(ctx, text, credential)
	if err != nil {
		log.LogError(ctx, c.logger, "Narration failed", err, log.OpNarration, nil)
		return NarrationResult{}, fmt.Errorf("%w: %w", ErrNarrationFailed, err)
	}

	clip := c.clips.Put(audio.ContentType, audio.Data)
	c.logger.InfoContext(ctx, "Narration ready",
		log.FieldOperation, log.OpNarration,
		log.FieldClipID, clip.ID,
		"bytes", len(clip.Data))
	return clipResult(clip, text), nil
}

func clipResult(clip cache.Clip, text string) NarrationResult {
	return NarrationResult{
		ClipID:      clip.ID,
		ContentType: clip.ContentType,
		URL:         ClipPath(clip.ID),
		Text:        text,
	}
}
