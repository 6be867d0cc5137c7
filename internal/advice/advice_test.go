package advice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"familybudget/internal/core"
)

func sampleDetails() BudgetDetails {
	return BudgetDetails{
		Income: core.NewMoney(500000),
		Expenses: []core.Expense{
			{ID: "1", Category: core.ParseCategory(core.CategoryFood), Amount: core.NewMoney(150000)},
			{ID: "2", Category: core.ParseCategory(core.CategoryRent), Amount: core.NewMoney(80000)},
			{ID: "3", Category: core.ParseCategory(core.CategorySavings), Amount: core.Zero},
		},
		RemainingBalance: core.NewMoney(270000),
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(sampleDetails())

	wants := []string{
		"family financial advisor",
		"family in Rwanda",
		"Rwandan Francs (RWF)",
		"- **Monthly Salary:** 500000 RWF",
		"- **Total Expenses:** 230000 RWF",
		"- **Remaining Balance:** 270000 RWF",
		"- Food and groceries: 150000 RWF",
		"- Rent or house payment: 80000 RWF",
		"5.  Format the output as clean, readable text. Do not use markdown.",
	}
	for _, want := range wants {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "Savings:") {
		t.Error("zero amount expense should not appear in the breakdown")
	}
}

func TestBuildPrompt_TotalFromIncomeMinusRemaining(t *testing.T) {
	d := BudgetDetails{Income: core.NewMoney(100), RemainingBalance: core.NewMoney(-50)}
	if !strings.Contains(BuildPrompt(d), "- **Total Expenses:** 150 RWF") {
		t.Error("expected total expenses to be income minus remaining")
	}
}

func TestClient_MissingKey(t *testing.T) {
	c := New("  ", "")
	if _, err := c.Advise(context.Background(), sampleDetails()); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Advise() error = %v, want ErrMissingAPIKey", err)
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New("test-key", "gemini-test",
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()))
}

func TestClient_Advise(t *testing.T) {
	var gotMethod, gotPath, gotKey, gotPrompt string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		_ = json.Unmarshal(body, &req)
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"Great start! "},{"text":"Keep saving."}]}}]}`)
	})

	text, err := c.Advise(context.Background(), sampleDetails())
	if err != nil {
		t.Fatalf("Advise() error = %v", err)
	}
	if text != "Great start! Keep saving." {
		t.Errorf("Advise() = %q", text)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotPath != "/v1beta/models/gemini-test:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("key = %q, want test-key", gotKey)
	}
	if !strings.Contains(gotPrompt, "Monthly Salary:** 500000 RWF") {
		t.Errorf("prompt not forwarded: %q", gotPrompt)
	}
}

func TestClient_AdviseErrors(t *testing.T) {
	t.Run("backend failure", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"code":403,"message":"bad key"}}`, http.StatusForbidden)
		})
		_, err := c.Advise(context.Background(), sampleDetails())
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("Advise() error = %v, want *APIError", err)
		}
		if apiErr.StatusCode != http.StatusForbidden || apiErr.Message != "bad key" {
			t.Errorf("APIError = %+v", apiErr)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "not json")
		})
		_, err := c.Advise(context.Background(), sampleDetails())
		if err == nil || errors.Is(err, ErrEmptyResponse) {
			t.Errorf("Advise() error = %v, want decode error", err)
		}
	})

	t.Run("transport error hides key", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c := New("secret-key", "gemini-test", WithBaseURL(srv.URL))
		_, err := c.Advise(context.Background(), sampleDetails())
		if err == nil {
			t.Fatal("expected error")
		}
		if strings.Contains(err.Error(), "secret-key") {
			t.Errorf("error leaks the key: %v", err)
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"candidates":[]}`)
		})
		if _, err := c.Advise(context.Background(), sampleDetails()); !errors.Is(err, ErrEmptyResponse) {
			t.Errorf("Advise() error = %v, want ErrEmptyResponse", err)
		}
	})
}
