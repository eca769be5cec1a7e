package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"driverdash/internal/auth"
	"driverdash/internal/cache"
)

const (
	DefaultDriversSheet = "Drivers"
	tableTTL            = 5 * time.Minute
	tableKey            = "drivers"
)

// Config locates the credential spreadsheet and its service account.
type Config struct {
	SpreadsheetID      string
	DriversSheet       string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// valuesReader fetches a range of cell values.
type valuesReader interface {
	Values(ctx context.Context, spreadsheetID, rng string) ([][]any, error)
}

type sheetsAPI struct {
	svc *gsheet.Service
}

func (s sheetsAPI) Values(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// Client verifies drivers against a sheet with ID, Password and Name columns.
// The table is cached for a few minutes.
type Client struct {
	api           valuesReader
	spreadsheetID string
	driversSheet  string
	table         *cache.LRUCache[*auth.StaticTable]
}

var _ auth.Verifier = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(sheetsAPI{svc: svc}, cfg), nil
}

func newClient(api valuesReader, cfg Config) *Client {
	sheet := strings.TrimSpace(cfg.DriversSheet)
	if sheet == "" {
		sheet = DefaultDriversSheet
	}
	return &Client{
		api:           api,
		spreadsheetID: cfg.SpreadsheetID,
		driversSheet:  sheet,
		table:         cache.NewLRUCache[*auth.StaticTable](1, tableTTL),
	}
}

// newSheetsService builds a read-only Sheets service from inline JSON, a
// credentials file or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	credentialsFile := strings.TrimSpace(cfg.ServiceAccountFile)
	if cfg.ServiceAccountJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case cfg.ServiceAccountJSON != "":
		credentialsJSON = []byte(cfg.ServiceAccountJSON)
	case credentialsFile != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "credentials_size", len(credentialsJSON))
	return svc, nil
}

// Verify implements auth.Verifier.
func (c *Client) Verify(ctx context.Context, id, secret string) (auth.Driver, error) {
	table, err := c.loadTable(ctx)
	if err != nil {
		return auth.Driver{}, err
	}
	return table.Verify(ctx, id, secret)
}

// Ping reads the sheet to confirm access.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.loadTable(ctx)
	return err
}

func (c *Client) loadTable(ctx context.Context) (*auth.StaticTable, error) {
	if t, ok := c.table.Get(tableKey); ok {
		return t, nil
	}
	rng := fmt.Sprintf("%s!A:C", c.driversSheet)
	values, err := c.api.Values(ctx, c.spreadsheetID, rng)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	creds, err := parseDrivers(values)
	if err != nil {
		return nil, err
	}
	t := auth.NewStaticTable(creds)
	c.table.Set(tableKey, t)
	slog.DebugContext(ctx, "Loaded driver table from sheet", "sheet", c.driversSheet, "drivers", len(creds))
	return t, nil
}
