package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bookfairhq/pos-backend/pkg/config"
	"github.com/bookfairhq/pos-backend/pkg/logger"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Row is one record of a worksheet, keyed by the header row. Missing cells
// are simply absent; Row.Get defaults them to the empty string.
type Row map[string]string

// Get returns the named field or an empty string when the cell is missing.
func (r Row) Get(field string) string {
	return strings.TrimSpace(r[field])
}

var errClientNotInitialized = errors.New("sheets client not initialized")

// Client provides typed row access to one spreadsheet. Each worksheet is a
// named collection whose first row carries the field names.
type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

// New builds a Sheets client from config and verifies the spreadsheet is
// reachable.
func New(ctx context.Context, cfg config.SheetsConfig, logg *logger.Logger) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}

	opts := []option.ClientOption{option.WithScopes(sheetsapi.SpreadsheetsScope)}
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	client := &Client{svc: svc, spreadsheetID: spreadsheetID}

	if _, err := svc.Spreadsheets.Get(spreadsheetID).Fields("spreadsheetId").Context(ctx).Do(); err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "sheets client initialized")
	}
	return client, nil
}

// ListRecords reads every record of the named worksheet. The first row is
// treated as the header; shorter data rows leave trailing fields unset.
func (c *Client) ListRecords(ctx context.Context, worksheet string) ([]Row, error) {
	if c == nil || c.svc == nil {
		return nil, errClientNotInitialized
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, worksheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %q: %w", worksheet, err)
	}
	if len(resp.Values) < 2 {
		return nil, nil
	}

	header := make([]string, 0, len(resp.Values[0]))
	for _, cell := range resp.Values[0] {
		header = append(header, strings.TrimSpace(fmt.Sprint(cell)))
	}

	rows := make([]Row, 0, len(resp.Values)-1)
	for _, raw := range resp.Values[1:] {
		row := make(Row, len(header))
		for i, field := range header {
			if field == "" || i >= len(raw) {
				continue
			}
			row[field] = fmt.Sprint(raw[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// AppendRow appends one record as a new row at the bottom of the worksheet.
func (c *Client) AppendRow(ctx context.Context, worksheet string, values []any) error {
	if c == nil || c.svc == nil {
		return errClientNotInitialized
	}
	payload := &sheetsapi.ValueRange{Values: [][]any{values}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, worksheet, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("appending to worksheet %q: %w", worksheet, err)
	}
	return nil
}

var quotaReasons = map[string]struct{}{
	"ratelimitexceeded":     {},
	"userratelimitexceeded": {},
	"quotaexceeded":         {},
}

// IsRateLimited reports whether err is a rate-limit or quota error worth
// retrying. Every other error class is treated as permanent.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	if apiErr.Code != http.StatusForbidden {
		return false
	}
	for _, item := range apiErr.Errors {
		if _, ok := quotaReasons[strings.ToLower(item.Reason)]; ok {
			return true
		}
	}
	return false
}
