package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

var ErrMissingSpreadsheetID = errors.New("missing spreadsheet id")

// Client writes values to one spreadsheet through the Sheets v4 API.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ ValueWriter = (*Client)(nil)

// NewClient authenticates with service account credentials. Extra options are
// appended after the credentials, so tests can point the client at a fake endpoint.
func NewClient(ctx context.Context, spreadsheetID string, credentialsJSON []byte, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, ErrMissingSpreadsheetID
	}

	var all []goption.ClientOption
	if len(credentialsJSON) > 0 {
		all = append(all,
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}
	all = append(all, opts...)

	slog.InfoContext(ctx, "Creating Google Sheets service",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	svc, err := gsheet.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// WriteSheet replaces the content of sheet with rows.
func (c *Client) WriteSheet(ctx context.Context, sheet string, rows [][]any) error {
	if err := c.ensureSheet(ctx, sheet); err != nil {
		return err
	}

	rng := quoteSheet(sheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", sheet, err)
	}

	vr := &gsheet.ValueRange{Values: toInterfaces(rows)}
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng+"!A1", vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", sheet, err)
	}

	slog.DebugContext(ctx, "Sheet updated",
		"sheet", sheet,
		"updated_range", resp.UpdatedRange,
		"updated_cells", resp.UpdatedCells)
	return nil
}

func (c *Client) ensureSheet(ctx context.Context, sheet string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == sheet {
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: sheet},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", sheet, err)
	}
	slog.InfoContext(ctx, "Created sheet", "sheet", sheet)
	return nil
}

// quoteSheet returns the A1 notation for a whole sheet whose title may contain spaces.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func toInterfaces(rows [][]any) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}
