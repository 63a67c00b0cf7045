package web

import (
	"github.com/makoto1101/check-publication-status/internal/listing"
	"github.com/makoto1101/check-publication-status/internal/report"
	"github.com/makoto1101/check-publication-status/internal/store"
)

// runView is the JSON form of a run: its summary plus one page of report
// rows, laid out exactly as the export.
type runView struct {
	store.Summary
	Channels []listing.Channel `json:"channels"`
	Files    []store.File      `json:"files"`
	Warnings []string          `json:"warnings"`
	Vendors  []string          `json:"vendors"`

	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Matched int        `json:"matched"`
	Page    int        `json:"page"`
	Pages   int        `json:"pages"`
}

func newRunView(run *store.Run, filter report.Filter, page int) runView {
	cols := report.Layout(run.Base, run.Channels)
	matched := filter.Apply(run.Rows)
	rows, pages := report.Page(matched, page, report.DefaultPageSize)

	v := runView{
		Summary:  run.Summarize(),
		Channels: nonNil(run.Channels),
		Files:    nonNil(run.Files),
		Warnings: nonNil(run.Warnings),
		Vendors:  nonNil(report.VendorCodes(run.Rows)),
		Columns:  report.Titles(cols),
		Rows:     make([][]string, 0, len(rows)),
		Matched:  len(matched),
		Page:     min(max(page, 1), max(pages, 1)),
		Pages:    pages,
	}
	for _, row := range rows {
		v.Rows = append(v.Rows, report.Cells(cols, row))
	}
	return v
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
