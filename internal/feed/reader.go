package feed

// reader.go decodes uploaded exports.
//
// Channel exports arrive either as UTF-8 (often with a BOM written by
// spreadsheet software) or as Shift_JIS. Text is decoded before CSV parsing:
//
//   - BOMSkippingReader: removes the UTF-8 BOM (0xEF 0xBB 0xBF)
//   - decodeText: picks UTF-8 or Shift_JIS
//
// Spreadsheets (.xlsx) are read with excelize; the first sheet is used.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/makoto1101/check-publication-status/internal/listing"
)

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type BOMSkippingReader struct {
	reader  io.Reader
	checked bool
	pending []byte
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader. On the first read, it checks for and skips the BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true

		var buf [3]byte
		n, err := io.ReadFull(r.reader, buf[:])
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return 0, err
		}
		if !(n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF) {
			r.pending = append(r.pending, buf[:n]...)
		}
	}

	if len(r.pending) > 0 {
		copied := copy(p, r.pending)
		r.pending = r.pending[copied:]
		return copied, nil
	}
	return r.reader.Read(p)
}

// decodeText returns a UTF-8 reader for data. Valid UTF-8 is read as is,
// anything else is decoded as Shift_JIS.
func decodeText(data []byte) io.Reader {
	if utf8.Valid(data) {
		return NewBOMSkippingReader(bytes.NewReader(data))
	}
	return transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder())
}

// ReadAll reads at most maxBytes from r. A maxBytes of 0 disables the limit.
func ReadAll(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("exceeds %d bytes: %w", maxBytes, ErrFileTooLarge)
	}
	return data, nil
}

// Parse decodes one export of the given channel. Headerless channels keep
// every row as data; all others use the first row as header.
func Parse(def listing.Definition, fileName string, data []byte) (*Table, error) {
	rows, err := parseRows(fileName, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fileName, err)
	}

	t := &Table{Channel: def.Channel, FileName: fileName}
	rows = dropEmptyRows(rows)
	if def.Headerless {
		t.Rows = rows
		return t, nil
	}
	if len(rows) == 0 {
		t.Header = []string{}
		return t, nil
	}
	t.Header = cleanHeader(rows[0])
	t.Rows = rows[1:]
	return t, nil
}

func parseRows(fileName string, data []byte) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(data)
	case ".csv":
		return readDelimited(data, ',')
	case ".tsv", ".txt":
		return readDelimited(data, '\t')
	default:
		return nil, fmt.Errorf("%q: %w", filepath.Ext(fileName), ErrUnsupportedType)
	}
}

func readDelimited(data []byte, sep rune) ([][]string, error) {
	r := csv.NewReader(decodeText(data))
	r.Comma = sep
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

func cleanHeader(row []string) []string {
	out := make([]string, len(row))
	for i, h := range row {
		out[i] = trim(h)
	}
	return out
}

func trim(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\ufeff", ""))
}

func dropEmptyRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		if !isEmptyRow(row) {
			out = append(out, row)
		}
	}
	return out
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
