// Package reference loads the lookup data every run joins against: the set
// of periodic (subscription) items and the vendor directory.
package reference

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/makoto1101/check-publication-status/internal/listing"
)

// Sheet header names.
const (
	HeaderPeriodicCode = "定期便番号"
	HeaderVendorCode   = "事業者コード"
	HeaderVendorName   = "事業者名"
	HeaderMunicipality = "自治体名"
)

var (
	periodicHeaders = []string{HeaderPeriodicCode}
	vendorHeaders   = []string{HeaderVendorCode, HeaderVendorName, HeaderMunicipality}
)

// ErrMissingHeader is returned when a reference sheet lacks an expected column.
var ErrMissingHeader = errors.New("reference sheet is missing a column")

// PeriodicSet holds canonical codes of items shipped on a recurring schedule.
type PeriodicSet map[string]struct{}

// Contains reports whether code is a periodic item.
func (p PeriodicSet) Contains(code string) bool {
	_, ok := p[listing.NormalizeCode(code)]
	return ok
}

// Vendor is one vendor directory entry.
type Vendor struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Municipality string `json:"municipality"`
}

// VendorDirectory maps vendor codes to vendors. The first entry of a code wins.
type VendorDirectory map[string]Vendor

// VendorName returns the display name of a vendor, "" when unknown.
func (d VendorDirectory) VendorName(code string) string {
	return d[strings.TrimSpace(code)].Name
}

// Data is the reference data of one run.
type Data struct {
	Periodic PeriodicSet
	Vendors  VendorDirectory
}

// Empty returns reference data without entries.
func Empty() *Data {
	return &Data{Periodic: PeriodicSet{}, Vendors: VendorDirectory{}}
}

// Source loads reference data.
type Source interface {
	Load(ctx context.Context) (*Data, error)
}

// Static serves fixed data; a nil Data serves empty data.
type Static struct{ Data *Data }

// Load implements Source.
func (s Static) Load(context.Context) (*Data, error) {
	if s.Data == nil {
		return Empty(), nil
	}
	return s.Data, nil
}

// ParsePeriodic builds the periodic set from a sheet whose first row is the header.
func ParsePeriodic(sheet string, rows [][]string) (PeriodicSet, error) {
	cols, err := columns(sheet, rows, periodicHeaders)
	if err != nil {
		return nil, err
	}
	set := PeriodicSet{}
	for _, row := range rows[1:] {
		if code := listing.NormalizeCode(at(row, cols[0])); code != "" {
			set[code] = struct{}{}
		}
	}
	return set, nil
}

// ParseVendors builds the vendor directory from a sheet whose first row is the header.
func ParseVendors(sheet string, rows [][]string) (VendorDirectory, error) {
	cols, err := columns(sheet, rows, vendorHeaders)
	if err != nil {
		return nil, err
	}
	dir := VendorDirectory{}
	for _, row := range rows[1:] {
		v := Vendor{
			Code:         strings.TrimSpace(at(row, cols[0])),
			Name:         strings.TrimSpace(at(row, cols[1])),
			Municipality: strings.TrimSpace(at(row, cols[2])),
		}
		if v.Code == "" {
			continue
		}
		if _, dup := dir[v.Code]; !dup {
			dir[v.Code] = v
		}
	}
	return dir, nil
}

// columns locates the expected headers in the first row.
func columns(sheet string, rows [][]string, expected []string) ([]int, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: sheet is empty: %w", sheet, ErrMissingHeader)
	}
	header := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(strings.ReplaceAll(h, "\ufeff", ""))
		if _, dup := header[h]; !dup {
			header[h] = i
		}
	}
	cols := make([]int, len(expected))
	for i, name := range expected {
		idx, ok := header[name]
		if !ok {
			return nil, fmt.Errorf("%s: %q: %w", sheet, name, ErrMissingHeader)
		}
		cols[i] = idx
	}
	return cols, nil
}

func at(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
