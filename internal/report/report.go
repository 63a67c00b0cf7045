// Package report turns reconciled rows into the export table: column layout,
// display filters, file naming and the XLSX and CSV encoders.
package report

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/makoto1101/check-publication-status/internal/listing"
)

// Fixed column titles.
const (
	ColCode       = "返礼品コード"
	ColName       = "返礼品名"
	ColVendorCode = "事業者コード"
	ColVendorName = "事業者名"
	ColCheck      = "チェック"
	ColPeriodic   = "定期便フラグ"
	ColPublished  = "公開中の数"
)

// Periodic flag cell values.
const (
	PeriodicYes = "〇"
	PeriodicNo  = "×"
)

// Column is one export column. Channel is set for status columns.
type Column struct {
	Title   string
	Channel listing.Channel
}

// Status reports whether the column holds a channel status.
func (c Column) Status() bool { return c.Channel != "" }

// Layout returns the export columns: item and vendor columns, the base
// channel, the other active portals in portal order, then the utility columns.
func Layout(base listing.Channel, channels []listing.Channel) []Column {
	cols := []Column{{Title: ColCode}, {Title: ColName}, {Title: ColVendorCode}, {Title: ColVendorName}}

	ordered := append([]listing.Channel(nil), channels...)
	listing.PortalOrder(ordered)
	if def, ok := listing.Lookup(base); ok && def.Portal() {
		cols = append(cols, Column{Title: def.Label, Channel: base})
	}
	for _, ch := range ordered {
		def, ok := listing.Lookup(ch)
		if !ok || !def.Portal() || ch == base {
			continue
		}
		cols = append(cols, Column{Title: def.Label, Channel: ch})
	}
	return append(cols, Column{Title: ColCheck}, Column{Title: ColPeriodic}, Column{Title: ColPublished})
}

// Titles returns the header row of a layout.
func Titles(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Title
	}
	return out
}

// Cells renders one row in layout order.
func Cells(cols []Column, row listing.Row) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		if c.Status() {
			out[i] = row.Status(c.Channel).Label()
			continue
		}
		switch c.Title {
		case ColCode:
			out[i] = row.Code
		case ColName:
			out[i] = row.Name
		case ColVendorCode:
			out[i] = row.VendorCode
		case ColVendorName:
			out[i] = row.VendorName
		case ColCheck:
			out[i] = row.Check.String()
		case ColPeriodic:
			out[i] = PeriodicFlag(row.Periodic)
		case ColPublished:
			out[i] = strconv.Itoa(row.Published)
		}
	}
	return out
}

// PeriodicFlag renders the periodic marker.
func PeriodicFlag(periodic bool) string {
	if periodic {
		return PeriodicYes
	}
	return PeriodicNo
}

// Filter narrows the rows shown or exported. Zero fields match everything.
type Filter struct {
	Text       string             `json:"text,omitempty"`
	VendorCode string             `json:"vendor_code,omitempty"`
	Check      *listing.CheckFlag `json:"check,omitempty"`
	Periodic   *bool              `json:"periodic,omitempty"`
}

// Match reports whether row passes every set criterion. Text matches the
// item code, item name or vendor name, ignoring case.
func (f Filter) Match(row listing.Row) bool {
	if f.Text != "" {
		needle := strings.ToLower(f.Text)
		if !strings.Contains(strings.ToLower(row.Code), needle) &&
			!strings.Contains(strings.ToLower(row.Name), needle) &&
			!strings.Contains(strings.ToLower(row.VendorName), needle) {
			return false
		}
	}
	if f.VendorCode != "" && row.VendorCode != f.VendorCode {
		return false
	}
	if f.Check != nil && row.Check != *f.Check {
		return false
	}
	if f.Periodic != nil && row.Periodic != *f.Periodic {
		return false
	}
	return true
}

// Apply returns the matching rows in their original order.
func (f Filter) Apply(rows []listing.Row) []listing.Row {
	if f == (Filter{}) {
		return rows
	}
	out := make([]listing.Row, 0, len(rows))
	for _, r := range rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// VendorCodes lists the distinct vendor codes of rows, sorted.
func VendorCodes(rows []listing.Row) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		if _, ok := seen[r.VendorCode]; ok {
			continue
		}
		seen[r.VendorCode] = struct{}{}
		out = append(out, r.VendorCode)
	}
	slices.Sort(out)
	return out
}

// DefaultPageSize is the number of rows per result page.
const DefaultPageSize = 500

// Page returns the 1-based page of rows and the total page count. Out of
// range pages are clamped.
func Page(rows []listing.Row, page, size int) ([]listing.Row, int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if len(rows) == 0 {
		return nil, 0
	}
	pages := (len(rows) + size - 1) / size
	page = min(max(page, 1), pages)
	start := (page - 1) * size
	return rows[start:min(start+size, len(rows))], pages
}

// Format is an export encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "xlsx" or "csv" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatXLSX, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// FileName builds the export name from the export date, the base channel
// label and the as-of date.
func FileName(today time.Time, baseLabel, asOf string, f Format) string {
	return fmt.Sprintf("掲載状況データ_%s（target_%s_%s）.%s", today.Format("20060102"), baseLabel, asOf, f)
}
