package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"familybudget/internal/core"
	"familybudget/internal/log"
	ports "familybudget/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

var (
	_ ports.HistoryWriter = (*Client)(nil)
	_ ports.HistoryReader = (*Client)(nil)
)

// Header row written to an empty history sheet.
var historyHeader = []any{"Month", "Total income", "Total expenses", "Balance"}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	historySheet  string
	logger        *log.Logger
}

// New wraps an existing Sheets service.
func New(svc *gsheet.Service, spreadsheetID, historySheet string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		historySheet:  historySheet,
		logger:        logger.WithComponent(log.ComponentSheets),
	}
}

// NewFromEnv creates a Sheets client with service account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context, spreadsheetID, historySheet string, logger *log.Logger) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if strings.TrimSpace(historySheet) == "" {
		historySheet = "History"
	}

	credentialsJSON, err := serviceAccountCredentials()
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return New(svc, spreadsheetID, historySheet, logger), nil
}

func serviceAccountCredentials() ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// UpsertMonth writes the snapshot to the row holding its month label, or
// to the first free row when the month is new.
func (c *Client) UpsertMonth(ctx context.Context, snap core.MonthSnapshot) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if snap.MonthKey == "" {
		return "", errors.New("month key is required")
	}

	rng := fmt.Sprintf("%s!A:A", c.historySheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read month column of %s: %w", c.historySheet, err)
	}

	plan := planUpsert(resp.Values, snap.MonthKey)
	if plan.writeHeader {
		header := &gsheet.ValueRange{Values: [][]any{historyHeader}}
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("%s!A1:D1", c.historySheet), header).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("write header to %s: %w", c.historySheet, err)
		}
	}

	ref := fmt.Sprintf("%s!A%d:D%d", c.historySheet, plan.row, plan.row)
	vr := &gsheet.ValueRange{Values: [][]any{historyRow(snap)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, ref, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", ref, err)
	}

	c.logger.InfoContext(ctx, "Month mirrored to sheet",
		log.FieldMonth, snap.MonthKey,
		"ref", ref,
		"updated", plan.existing)
	return ref, nil
}

// ListMonths reads every mirrored month below the header.
func (c *Client) ListMonths(ctx context.Context) ([]core.MonthSnapshot, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:C", c.historySheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseMonths(resp.Values), nil
}

type upsertPlan struct {
	row         int
	existing    bool
	writeHeader bool
}

// planUpsert picks the 1-based row for month given the values of column A.
func planUpsert(column [][]any, month string) upsertPlan {
	if len(column) == 0 {
		return upsertPlan{row: 2, writeHeader: true}
	}
	for i, row := range column {
		if i == 0 {
			continue
		}
		if len(row) > 0 && strings.TrimSpace(fmt.Sprint(row[0])) == month {
			return upsertPlan{row: i + 1, existing: true}
		}
	}
	return upsertPlan{row: len(column) + 1}
}

func historyRow(snap core.MonthSnapshot) []any {
	balance := core.RemainingBalance(snap.TotalIncome, snap.TotalExpenses)
	return []any{
		snap.MonthKey,
		snap.TotalIncome.Float64(),
		snap.TotalExpenses.Float64(),
		balance.Float64(),
	}
}

func parseMonths(values [][]any) []core.MonthSnapshot {
	var out []core.MonthSnapshot
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		month := strings.TrimSpace(fmt.Sprint(row[0]))
		if month == "" {
			continue
		}
		snap := core.MonthSnapshot{MonthKey: month}
		if len(row) > 1 {
			snap.TotalIncome = parseCell(row[1])
		}
		if len(row) > 2 {
			snap.TotalExpenses = parseCell(row[2])
		}
		out = append(out, snap)
	}
	return out
}

func parseCell(v any) core.Money {
	switch n := v.(type) {
	case float64:
		return core.NewMoneyFromFloat(n)
	default:
		m, err := core.ParseMoney(strings.ReplaceAll(strings.TrimSpace(fmt.Sprint(v)), ",", ""))
		if err != nil {
			return core.Zero
		}
		return m
	}
}
