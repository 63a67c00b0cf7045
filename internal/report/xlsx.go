package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/makoto1101/check-publication-status/internal/listing"
)

const (
	sheetName = "Sheet1"
	fontName  = "游ゴシック"
)

type colors struct{ fill, font string }

var statusColors = map[listing.Status]colors{
	listing.Published:    {"22A579", "FFFFFF"},
	listing.Unregistered: {"111111", "FFFFFF"},
	listing.Closed:       {"6C757D", "FFFFFF"},
	listing.Hidden:       {"6C757D", "FFFFFF"},
	listing.OutOfStock:   {"6C757D", "FFFFFF"},
	listing.Warehouse:    {"6C757D", "FFFFFF"},
	listing.NotYetOpen:   {"FFC107", "000000"},
}

var reviewColors = colors{"FA6C78", "000000"}

// Column widths in characters.
const (
	widthName       = 60
	widthVendorName = 25
	widthDefault    = 15
	widthStatus     = 13
)

func columnWidth(c Column) float64 {
	switch {
	case c.Status(), c.Title == ColCheck, c.Title == ColPeriodic, c.Title == ColPublished:
		return widthStatus
	case c.Title == ColName:
		return widthName
	case c.Title == ColVendorName:
		return widthVendorName
	}
	return widthDefault
}

type styles struct {
	header, plain, review int
	status                map[listing.Status]int
}

func newStyles(f *excelize.File) (*styles, error) {
	var (
		s   = &styles{status: make(map[listing.Status]int, len(statusColors))}
		err error
	)
	if s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Family: fontName, Bold: true}}); err != nil {
		return nil, err
	}
	if s.plain, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Family: fontName}}); err != nil {
		return nil, err
	}
	if s.review, err = colored(f, reviewColors); err != nil {
		return nil, err
	}
	for st, c := range statusColors {
		if s.status[st], err = colored(f, c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func colored(f *excelize.File, c colors) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: fontName, Color: c.font},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{c.fill}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
}

// WriteXLSX writes rows as a styled workbook with a bold header, colored
// status and review cells and fixed column widths.
func WriteXLSX(w io.Writer, cols []Column, rows []listing.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("create styles: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}
	for i, c := range cols {
		if err := sw.SetColWidth(i+1, i+1, columnWidth(c)); err != nil {
			return err
		}
	}

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = excelize.Cell{StyleID: st.header, Value: c.Title}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for r, row := range rows {
		values := Cells(cols, row)
		cells := make([]any, len(cols))
		for i, c := range cols {
			cell := excelize.Cell{StyleID: st.plain, Value: values[i]}
			switch {
			case c.Status():
				if id, ok := st.status[row.Status(c.Channel)]; ok {
					cell.StyleID = id
				}
			case c.Title == ColCheck && row.Check == listing.NeedsReview:
				cell.StyleID = st.review
			case c.Title == ColPublished:
				cell.Value = row.Published
			}
			cells[i] = cell
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
