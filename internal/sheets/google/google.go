package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/log"
	ports "fintrack/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Options configures a Sheets-backed mirror. One of CredentialsJSON or
// CredentialsFile must be set unless ClientOptions already carry auth.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string

	// ClientOptions are appended after the credential options.
	ClientOptions []goption.ClientOption
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger

	// mu serializes writes; row positions shift on delete.
	mu      sync.Mutex
	sheetID *int64
}

// Ensure interface conformance
var _ ports.TransactionMirror = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = log.Default(log.ComponentSheets)
	}
	svc, err := newSheetsService(ctx, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, opts.SpreadsheetID, opts.SheetName, logger), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string, logger *log.Logger) *Client {
	if sheetName == "" {
		sheetName = "Transactions"
	}
	if logger == nil {
		logger = log.Default(log.ComponentSheets)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, opts Options, logger *log.Logger) (*gsheet.Service, error) {
	clientOpts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}

	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		logger.InfoContext(ctx, "Using inline JSON credentials")
		clientOpts = append(clientOpts, goption.WithCredentialsJSON([]byte(opts.CredentialsJSON)))
	case strings.TrimSpace(opts.CredentialsFile) != "":
		logger.InfoContext(ctx, "Reading credentials from file", "path", opts.CredentialsFile)
		data, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		clientOpts = append(clientOpts, goption.WithCredentialsJSON(data))
	case len(opts.ClientOptions) == 0:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
	clientOpts = append(clientOpts, opts.ClientOptions...)

	service, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets service created", "sheet", opts.SheetName)
	return service, nil
}

// Upsert rewrites the row holding v.ID, or appends one when absent. An
// empty sheet gets the header row first.
func (c *Client) Upsert(ctx context.Context, v core.TransactionView) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ids, err := c.readIDs(ctx)
	if err != nil {
		return err
	}
	row := transactionRow(v)

	if idx := indexOf(ids, v.ID); idx >= 0 {
		rng := rowRange(c.sheetName, idx)
		vr := &gsheet.ValueRange{Values: [][]interface{}{row}}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("update row %s: %w", rng, err)
		}
		c.logger.DebugContext(ctx, "Mirror row updated", log.FieldTransactionID, v.ID, "range", rng)
		return nil
	}

	values := [][]interface{}{row}
	if len(ids) == 0 {
		values = append([][]interface{}{headerRow()}, values...)
	}
	rng := fmt.Sprintf("%s!A:F", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	updated := ""
	if resp != nil && resp.Updates != nil {
		updated = resp.Updates.UpdatedRange
	}
	c.logger.DebugContext(ctx, "Mirror row appended", log.FieldTransactionID, v.ID, "range", updated)
	return nil
}

// Remove deletes the row holding id. A missing row is not an error.
func (c *Client) Remove(ctx context.Context, id string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ids, err := c.readIDs(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(ids, id)
	if idx < 0 {
		c.logger.DebugContext(ctx, "Mirror row already absent", log.FieldTransactionID, id)
		return nil
	}

	gridID, err := c.gridID(ctx)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:         gridID,
					Dimension:       "ROWS",
					StartIndex:      int64(idx),
					EndIndex:        int64(idx + 1),
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d: %w", idx+1, err)
	}
	c.logger.DebugContext(ctx, "Mirror row deleted", log.FieldTransactionID, id, "row", idx+1)
	return nil
}

func (c *Client) readIDs(ctx context.Context) ([]string, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read ids: %w", err)
	}
	ids := make([]string, len(resp.Values))
	for i, r := range resp.Values {
		if len(r) > 0 {
			ids[i] = fmt.Sprint(r[0])
		}
	}
	return ids, nil
}

// gridID resolves and caches the numeric id of the mirror sheet.
func (c *Client) gridID(ctx context.Context) (int64, error) {
	if c.sheetID != nil {
		return *c.sheetID, nil
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == c.sheetName {
			id := s.Properties.SheetId
			c.sheetID = &id
			return id, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", c.sheetName)
}
