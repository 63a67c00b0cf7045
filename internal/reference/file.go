package reference

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// FileSource reads reference data from local CSV or XLSX files. An empty
// path yields an empty set or directory.
type FileSource struct {
	PeriodicPath string
	VendorPath   string
}

// Load implements Source.
func (s FileSource) Load(ctx context.Context) (*Data, error) {
	data := Empty()
	if s.PeriodicPath != "" {
		rows, err := readRows(s.PeriodicPath)
		if err != nil {
			return nil, err
		}
		if data.Periodic, err = ParsePeriodic(filepath.Base(s.PeriodicPath), rows); err != nil {
			return nil, err
		}
	}
	if s.VendorPath != "" {
		rows, err := readRows(s.VendorPath)
		if err != nil {
			return nil, err
		}
		if data.Vendors, err = ParseVendors(filepath.Base(s.VendorPath), rows); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func readRows(path string) ([][]string, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".xlsx" || ext == ".xlsm" {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		return f.GetRows(f.GetSheetName(0))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var text io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		text = transform.NewReader(text, japanese.ShiftJIS.NewDecoder())
	}
	r := csv.NewReader(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}
