package report

import (
	"encoding/csv"
	"io"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/makoto1101/check-publication-status/internal/listing"
)

// Charset selects the CSV text encoding.
type Charset string

const (
	// CP932 is the Windows Japanese code page; unmappable runes become '?'.
	CP932 Charset = "cp932"
	UTF8  Charset = "utf-8"
)

// ParseCharset maps a request value to a charset, defaulting to CP932.
func ParseCharset(s string) Charset {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "utf-8", "utf8":
		return UTF8
	}
	return CP932
}

// WriteCSV writes the header and rows as CSV in the given charset.
func WriteCSV(w io.Writer, cols []Column, rows []listing.Row, cs Charset) error {
	if cs == UTF8 {
		return writeCSV(w, cols, rows, nil)
	}
	tw := transform.NewWriter(w, japanese.ShiftJIS.NewEncoder())
	if err := writeCSV(tw, cols, rows, cp932Safe); err != nil {
		_ = tw.Close()
		return err
	}
	return tw.Close()
}

func writeCSV(w io.Writer, cols []Column, rows []listing.Row, clean func(string) string) error {
	cw := csv.NewWriter(w)
	write := func(rec []string) error {
		if clean != nil {
			for i := range rec {
				rec[i] = clean(rec[i])
			}
		}
		return cw.Write(rec)
	}
	if err := write(Titles(cols)); err != nil {
		return err
	}
	for _, row := range rows {
		if err := write(Cells(cols, row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// cp932Safe replaces runes that have no CP932 mapping with '?'.
func cp932Safe(s string) string {
	enc := japanese.ShiftJIS.NewEncoder()
	if _, err := enc.String(s); err == nil {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if _, err := enc.String(string(r)); err != nil {
			b.WriteByte('?')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
