// Package feed turns uploaded channel exports into tables the listing engine
// can index.
//
// A feed goes through three steps before indexing:
//
//  1. [Parse] decodes CSV, TSV, TXT or XLSX bytes (UTF-8 or Shift_JIS).
//  2. [Normalize] applies channel-specific header and row fixes.
//  3. [Filter.Apply] keeps only the rows matching the requested codes.
//
// [JoinChoiceStock] then links the headerless choice stock feed to item codes.
package feed

import (
	"errors"

	"github.com/makoto1101/check-publication-status/internal/listing"
)

var (
	ErrUnknownFile      = errors.New("cannot determine channel from file name")
	ErrDuplicateChannel = errors.New("more than one file for the same channel")
	ErrMissingPair      = errors.New("paired feeds must be uploaded together")
	ErrUnsupportedType  = errors.New("unsupported file type")
	ErrFileTooLarge     = errors.New("file too large")
)

// Table is one decoded feed. Header is nil for headerless feeds.
type Table struct {
	Channel  listing.Channel
	FileName string
	Header   []string
	Rows     [][]string
}

// Records wraps the rows for indexing. All records share one header.
func (t *Table) Records() []listing.Record {
	var h *listing.Header
	if t.Header != nil {
		h = listing.NewHeader(t.Header)
	}
	return listing.NewRecords(h, t.Rows)
}

// Column returns the position of a header, -1 when absent.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}
