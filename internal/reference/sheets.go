package reference

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Default sheet names inside the reference spreadsheet.
const (
	DefaultPeriodicSheet = "定期便DB"
	DefaultVendorSheet   = "事業者DB"
)

// ValuesGetter fetches a cell range as rows.
type ValuesGetter interface {
	Values(ctx context.Context, spreadsheetID, rng string) ([][]string, error)
}

// SheetsSource reads reference data from a Google spreadsheet.
type SheetsSource struct {
	SpreadsheetID string
	PeriodicSheet string
	VendorSheet   string
	Getter        ValuesGetter
}

// NewSheetsSource connects to the Sheets API with service account credentials.
func NewSheetsSource(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (*SheetsSource, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsSource{
		SpreadsheetID: spreadsheetID,
		PeriodicSheet: DefaultPeriodicSheet,
		VendorSheet:   DefaultVendorSheet,
		Getter:        sheetsGetter{svc: svc},
	}, nil
}

// Load implements Source.
func (s *SheetsSource) Load(ctx context.Context) (*Data, error) {
	periodicSheet := or(s.PeriodicSheet, DefaultPeriodicSheet)
	vendorSheet := or(s.VendorSheet, DefaultVendorSheet)

	rows, err := s.Getter.Values(ctx, s.SpreadsheetID, sheetRange(periodicSheet))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", periodicSheet, err)
	}
	periodic, err := ParsePeriodic(periodicSheet, rows)
	if err != nil {
		return nil, err
	}

	rows, err = s.Getter.Values(ctx, s.SpreadsheetID, sheetRange(vendorSheet))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", vendorSheet, err)
	}
	vendors, err := ParseVendors(vendorSheet, rows)
	if err != nil {
		return nil, err
	}
	return &Data{Periodic: periodic, Vendors: vendors}, nil
}

func sheetRange(sheet string) string { return sheet + "!A1:ZZ" }

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

type sheetsGetter struct{ svc *sheets.Service }

func (g sheetsGetter) Values(ctx context.Context, id, rng string) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(id, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = fmt.Sprint(cell)
		}
	}
	return rows, nil
}
