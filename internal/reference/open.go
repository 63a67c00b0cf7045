package reference

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/makoto1101/check-publication-status/internal/config"
)

// Open builds the source selected by cfg: Google Sheets when a spreadsheet
// is configured, local files otherwise. The result is cached for
// cfg.CacheTTL.
func Open(ctx context.Context, cfg config.ReferenceConfig) (Source, error) {
	if !cfg.UsesSheets() {
		if cfg.PeriodicFile == "" && cfg.VendorFile == "" {
			slog.Warn("no reference data configured; periodic flags and vendor names will be empty")
		}
		return NewCached(FileSource{PeriodicPath: cfg.PeriodicFile, VendorPath: cfg.VendorFile}, cfg.CacheTTL), nil
	}

	creds := []byte(cfg.CredentialsJSON)
	if len(creds) == 0 {
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials: %w", err)
		}
		creds = b
	}
	src, err := NewSheetsSource(ctx, cfg.SheetsID, creds)
	if err != nil {
		return nil, err
	}
	src.PeriodicSheet = cfg.PeriodicSheet
	src.VendorSheet = cfg.VendorSheet
	return NewCached(src, cfg.CacheTTL), nil
}
