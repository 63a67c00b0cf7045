package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/makoto1101/check-publication-status/internal/config"
	"github.com/makoto1101/check-publication-status/internal/listing"
	"github.com/makoto1101/check-publication-status/internal/listing/channels"
	"github.com/makoto1101/check-publication-status/internal/reconcile"
	"github.com/makoto1101/check-publication-status/internal/reference"
	"github.com/makoto1101/check-publication-status/internal/report"
	"github.com/makoto1101/check-publication-status/internal/store"
)

type runFlags struct {
	job         string
	base        string
	asOf        string
	out         string
	format      string
	charset     string
	itemCodes   []string
	vendorCodes []string
	periodic    string
	vendors     string
	sheetsID    string
	credentials string
	workers     int
	reviewOnly  bool
}

func newRunCommand() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Reconcile channel exports and write a report",
		Long: `Reconcile listing exports of several channels against a base channel
and write the combined status report as XLSX or CSV.

The channel of each file is recognised from its name. Feeds that come in
pairs (チョイス and チョイス在庫, さとふる and さとふる在庫, 百選 and 百選在庫)
must be passed together.`,
		Example: `  listingcheck run チョイス_20250401.csv チョイス在庫_20250401.csv amazon.csv
  listingcheck run --base rakuten --date 20250401 --format csv *.csv
  listingcheck run --job jobs/weekly.yaml --vendor-code 12ABCD`,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := f.merge(cmd, args)
			if err != nil {
				return err
			}
			return execute(cmd, job, f.workers, f.reviewOnly)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.job, "job", "", "YAML job file; flags override its values")
	fl.StringVarP(&f.base, "base", "b", string(channels.Choice), "base channel")
	fl.StringVarP(&f.asOf, "date", "d", "", "as-of date YYYYMMDD (default today)")
	fl.StringVarP(&f.out, "out", "o", "", "output path (default: generated name in the current directory)")
	fl.StringVarP(&f.format, "format", "f", string(report.FormatXLSX), "output format: xlsx or csv")
	fl.StringVar(&f.charset, "charset", string(report.CP932), "CSV charset: cp932 or utf-8")
	fl.StringSliceVar(&f.itemCodes, "item-code", nil, "only report these item codes (repeatable)")
	fl.StringSliceVar(&f.vendorCodes, "vendor-code", nil, "only report these vendor codes (repeatable)")
	fl.StringVar(&f.periodic, "periodic-file", "", "CSV/XLSX file listing periodic item codes")
	fl.StringVar(&f.vendors, "vendor-file", "", "CSV/XLSX vendor directory")
	fl.StringVar(&f.sheetsID, "sheets-id", "", "read reference data from this Google spreadsheet")
	fl.StringVar(&f.credentials, "credentials", "", "service account key for --sheets-id")
	fl.IntVarP(&f.workers, "workers", "w", 4, "classification workers")
	fl.BoolVar(&f.reviewOnly, "review-only", false, "only write items flagged 要確認")
	return cmd
}

// merge combines the job file, positional files and explicitly set flags.
func (f *runFlags) merge(cmd *cobra.Command, args []string) (*Job, error) {
	job := &Job{}
	if f.job != "" {
		loaded, err := LoadJob(f.job)
		if err != nil {
			return nil, err
		}
		job = loaded
	}

	changed := cmd.Flags().Changed
	job.Files = append(job.Files, args...)
	if job.Base == "" || changed("base") {
		job.Base = f.base
	}
	if changed("date") {
		job.AsOf = f.asOf
	}
	if changed("item-code") {
		job.ItemCodes = f.itemCodes
	}
	if changed("vendor-code") {
		job.VendorCodes = f.vendorCodes
	}
	if changed("periodic-file") {
		job.Reference.PeriodicFile = f.periodic
	}
	if changed("vendor-file") {
		job.Reference.VendorFile = f.vendors
	}
	if changed("sheets-id") {
		job.Reference.SheetsID = f.sheetsID
	}
	if changed("credentials") {
		job.Reference.CredentialsFile = f.credentials
	}
	if changed("out") {
		job.Output.Path = f.out
	}
	if job.Output.Format == "" || changed("format") {
		job.Output.Format = f.format
	}
	if job.Output.Charset == "" || changed("charset") {
		job.Output.Charset = f.charset
	}

	if len(job.Files) == 0 {
		return nil, fmt.Errorf("no input files: pass them as arguments or list them in --job")
	}
	if job.Reference.SheetsID != "" && job.Reference.CredentialsFile == "" {
		return nil, fmt.Errorf("--sheets-id requires --credentials")
	}
	return job, nil
}

func execute(cmd *cobra.Command, job *Job, workers int, reviewOnly bool) error {
	ctx := cmd.Context()
	format, err := report.ParseFormat(job.Output.Format)
	if err != nil {
		return err
	}

	uploads := make([]reconcile.Upload, 0, len(job.Files))
	for _, path := range job.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		uploads = append(uploads, reconcile.Upload{Name: filepath.Base(path), Data: data})
	}

	ref, err := reference.Open(ctx, config.ReferenceConfig{
		PeriodicFile:    job.Reference.PeriodicFile,
		VendorFile:      job.Reference.VendorFile,
		SheetsID:        job.Reference.SheetsID,
		CredentialsFile: job.Reference.CredentialsFile,
		PeriodicSheet:   reference.DefaultPeriodicSheet,
		VendorSheet:     reference.DefaultVendorSheet,
	})
	if err != nil {
		return err
	}

	svc := reconcile.NewService(store.NewMemory(1), ref, reconcile.NewRunLimiter(1, time.Second), reconcile.Options{Workers: workers})
	run, err := svc.Run(ctx, reconcile.Request{
		Files:       uploads,
		Base:        listing.Channel(job.Base),
		AsOf:        job.AsOf,
		ItemCodes:   job.ItemCodes,
		VendorCodes: job.VendorCodes,
	})
	if err != nil {
		return fmt.Errorf("%s\n  detail: %w", reconcile.FormatUserError(err), err)
	}

	var filter report.Filter
	if reviewOnly {
		review := listing.NeedsReview
		filter.Check = &review
	}
	rows := filter.Apply(run.Rows)
	cols := report.Layout(run.Base, run.Channels)

	var buf bytes.Buffer
	if format == report.FormatCSV {
		err = report.WriteCSV(&buf, cols, rows, report.ParseCharset(job.Output.Charset))
	} else {
		err = report.WriteXLSX(&buf, cols, rows)
	}
	if err != nil {
		return err
	}

	path := job.Output.Path
	if path == "" {
		label := job.Base
		if def, ok := listing.Lookup(run.Base); ok {
			label = def.Label
		}
		path = report.FileName(time.Now(), label, run.AsOf, format)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), run, len(rows), path)
	return nil
}

func printSummary(w io.Writer, run *store.Run, written int, path string) {
	s := run.Summarize()
	fmt.Fprintf(w, "as of %s, base %s\n", run.AsOf, run.Base)
	for _, f := range run.Files {
		fmt.Fprintf(w, "  %-14s %6d rows  %s\n", f.Channel, f.Rows, f.Name)
	}
	for _, warn := range run.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	fmt.Fprintf(w, "%d items, %d need review; wrote %d rows to %s\n", s.Items, s.NeedsReview, written, path)
}
