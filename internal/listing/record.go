package listing

import (
	"strconv"
	"strings"
)

type fieldKind uint8

const (
	fieldNone fieldKind = iota
	fieldPosition
	fieldName
)

// FieldID identifies a cell either by column position (headerless feeds) or
// by header name. The zero value identifies nothing.
type FieldID struct {
	kind fieldKind
	pos  int
	name string
}

// Pos identifies the i-th column (0-based).
func Pos(i int) FieldID { return FieldID{kind: fieldPosition, pos: i} }

// Name identifies a column by its header.
func Name(s string) FieldID { return FieldID{kind: fieldName, name: s} }

// IsZero reports whether f identifies no column.
func (f FieldID) IsZero() bool { return f.kind == fieldNone }

func (f FieldID) String() string {
	switch f.kind {
	case fieldPosition:
		return "#" + strconv.Itoa(f.pos)
	case fieldName:
		return f.name
	default:
		return ""
	}
}

// Header maps column names to positions. The first occurrence of a
// duplicated name wins.
type Header struct {
	names []string
	index map[string]int
}

// NewHeader builds a header from the first row of a feed.
func NewHeader(names []string) *Header {
	h := &Header{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, n := range names {
		n = strings.TrimSpace(strings.ReplaceAll(n, bom, ""))
		h.names[i] = n
		if _, dup := h.index[n]; !dup && n != "" {
			h.index[n] = i
		}
	}
	return h
}

// Names returns the cleaned column names in file order.
func (h *Header) Names() []string {
	if h == nil {
		return nil
	}
	return h.names
}

// Lookup returns the position of a column.
func (h *Header) Lookup(name string) (int, bool) {
	if h == nil {
		return 0, false
	}
	i, ok := h.index[name]
	return i, ok
}

// Record is one feed row. Records of the same feed share one Header; records
// of headerless feeds have a nil Header and can only be read by position.
type Record struct {
	header *Header
	cells  []string
}

// NewRecord wraps one row of cells.
func NewRecord(h *Header, cells []string) Record {
	return Record{header: h, cells: cells}
}

// NewRecords wraps every row of a feed with the same header.
func NewRecords(h *Header, rows [][]string) []Record {
	out := make([]Record, len(rows))
	for i, row := range rows {
		out[i] = Record{header: h, cells: row}
	}
	return out
}

func (r Record) position(f FieldID) (int, bool) {
	switch f.kind {
	case fieldPosition:
		return f.pos, f.pos >= 0 && f.pos < len(r.cells)
	case fieldName:
		i, ok := r.header.Lookup(f.name)
		return i, ok && i < len(r.cells)
	default:
		return 0, false
	}
}

// Get returns the trimmed value of a cell, or "" when the field is absent.
func (r Record) Get(f FieldID) string {
	i, ok := r.position(f)
	if !ok {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

// Has reports whether the record's feed carries the column at all.
func (r Record) Has(f FieldID) bool {
	switch f.kind {
	case fieldPosition:
		return f.pos >= 0 && f.pos < len(r.cells)
	case fieldName:
		_, ok := r.header.Lookup(f.name)
		return ok
	default:
		return false
	}
}

// Cells returns the raw cells. The slice must not be modified.
func (r Record) Cells() []string { return r.cells }

// Header returns the shared header, nil for headerless feeds.
func (r Record) Header() *Header { return r.header }
