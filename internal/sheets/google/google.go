package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/planner"
	ports "finanzas/internal/sheets"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	planSheet     string
	historySheet  string
}

// Ensure interface conformance
var (
	_ ports.PlanExporter    = (*Client)(nil)
	_ ports.HistoryExporter = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables and a
// service account.
// Required: GOOGLE_SPREADSHEET_ID
// Optional sheet names: GOOGLE_SHEET_NAME (default "Plan"),
// GOOGLE_HISTORY_SHEET_NAME (default "History").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	planBase := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if planBase == "" {
		planBase = "Plan"
	}
	historyBase := strings.TrimSpace(os.Getenv("GOOGLE_HISTORY_SHEET_NAME"))
	if historyBase == "" {
		historyBase = "History"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	year := time.Now().Year()
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		planSheet:     yearPrefixedName(planBase, year),
		historySheet:  historyBase,
	}, nil
}

// newSheetsService initializes a Sheets Service. A user OAuth token from
// cmd/sheets-auth (GOOGLE_OAUTH_CLIENT_* plus GOOGLE_OAUTH_TOKEN_*) wins over
// service account credentials (GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS).
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	clientJSON, err := envOrFile("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, err
	}
	if clientJSON != nil {
		ts, err := oauthTokenSource(ctx, clientJSON)
		if err != nil {
			return nil, err
		}
		service, err := gsheet.NewService(ctx, goption.WithTokenSource(ts))
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		slog.InfoContext(ctx, "Google Sheets service created", "auth", "oauth")
		return service, nil
	}

	credentialsJSON, err := envOrFile("GOOGLE_SERVICE_ACCOUNT_JSON", "GOOGLE_SERVICE_ACCOUNT_FILE")
	if err != nil {
		return nil, err
	}
	if credentialsJSON == nil {
		if path := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); path != "" {
			b, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read service account file: %w", err)
			}
			credentialsJSON = b
		}
	}
	if credentialsJSON == nil {
		return nil, errors.New("missing credentials (set GOOGLE_OAUTH_CLIENT_JSON with a token, GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "auth", "service_account", "credentials_size", len(credentialsJSON))
	return service, nil
}

// oauthTokenSource builds a refreshing token source from an OAuth client and
// the token saved by cmd/sheets-auth.
func oauthTokenSource(ctx context.Context, clientJSON []byte) (oauth2.TokenSource, error) {
	cfg, err := OAuthConfig(clientJSON)
	if err != nil {
		return nil, err
	}
	tokenJSON, err := envOrFile("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil {
		return nil, err
	}
	if tokenJSON == nil {
		return nil, errors.New("missing GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE (run sheets-auth)")
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}
	return cfg.TokenSource(ctx, &tok), nil
}

// OAuthConfig parses an OAuth client JSON for spreadsheet access.
func OAuthConfig(clientJSON []byte) (*oauth2.Config, error) {
	cfg, err := googleoauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	return cfg, nil
}

// envOrFile returns the inline value of jsonKey, else the contents of the file
// named by fileKey, else nil.
func envOrFile(jsonKey, fileKey string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(jsonKey)); v != "" {
		return []byte(v), nil
	}
	path := strings.TrimSpace(os.Getenv(fileKey))
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileKey, err)
	}
	return b, nil
}

// ExportPlan replaces the plan sheet with the report's schedule and estimates.
func (c *Client) ExportPlan(ctx context.Context, report planner.Report) error {
	if err := c.replaceSheet(ctx, c.planSheet, planValues(report)); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Exported plan to sheet",
		"sheet", c.planSheet,
		"strategy", report.Schedule.Strategy,
		"periods", report.Schedule.Periods())
	return nil
}

func (c *Client) ExportHistory(ctx context.Context, points []core.HistoryPoint) error {
	if err := c.replaceSheet(ctx, c.historySheet, historyValues(points)); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Exported history to sheet", "sheet", c.historySheet, "points", len(points))
	return nil
}

func (c *Client) replaceSheet(ctx context.Context, sheet string, values [][]any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:Z", sheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}

	target := fmt.Sprintf("%s!A1", sheet)
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, target, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", target, err)
	}
	return nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
