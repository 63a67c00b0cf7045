// Package reconcile runs one reconciliation end to end: it validates the
// request, decodes and prepares the uploaded feeds, loads reference data,
// aggregates statuses across channels and persists the run.
//
// Runs are bounded by a [RunLimiter]; errors are mapped to user-facing
// messages by [MapError].
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/makoto1101/check-publication-status/internal/feed"
	"github.com/makoto1101/check-publication-status/internal/listing"
	"github.com/makoto1101/check-publication-status/internal/listing/channels"
	"github.com/makoto1101/check-publication-status/internal/logging"
	"github.com/makoto1101/check-publication-status/internal/metrics"
	"github.com/makoto1101/check-publication-status/internal/reference"
	"github.com/makoto1101/check-publication-status/internal/store"
)

// Upload is one uploaded feed file.
type Upload struct {
	Name string `json:"name" validate:"required"`
	Data []byte `json:"-"`
}

// Request describes one run.
type Request struct {
	Files []Upload        `json:"files" validate:"required,min=1,dive"`
	Base  listing.Channel `json:"base" validate:"required,portal"`
	// AsOf is YYYYMMDD; empty means today.
	AsOf        string   `json:"as_of" validate:"omitempty,len=8,numeric"`
	ItemCodes   []string `json:"item_codes" validate:"dive,max=64"`
	VendorCodes []string `json:"vendor_codes" validate:"dive,max=16"`
}

// Options tunes the service.
type Options struct {
	MaxFileSize  int64
	Workers      int
	Timeout      time.Duration
	ParentMarker string
}

// Service executes and stores runs.
type Service struct {
	store    store.Store
	ref      reference.Source
	limiter  *RunLimiter
	validate *validator.Validate
	opts     Options
	now      func() time.Time
}

// NewService wires a service. A nil limiter allows DefaultMaxConcurrentRuns.
func NewService(st store.Store, ref reference.Source, limiter *RunLimiter, opts Options) *Service {
	if limiter == nil {
		limiter = NewRunLimiter(0, 0)
	}
	if ref == nil {
		ref = reference.Static{}
	}
	return &Service{
		store:    st,
		ref:      ref,
		limiter:  limiter,
		validate: newValidator(),
		opts:     opts,
		now:      time.Now,
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("portal", isPortal)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func isPortal(fl validator.FieldLevel) bool {
	def, ok := listing.Lookup(listing.Channel(fl.Field().String()))
	return ok && def.Portal()
}

// Limiter exposes the run limiter for shutdown and monitoring.
func (s *Service) Limiter() *RunLimiter { return s.limiter }

// Run executes a request and stores the result.
func (s *Service) Run(ctx context.Context, req Request) (*store.Run, error) {
	start := time.Now()
	run, err := s.run(ctx, req)
	if err != nil {
		metrics.Runs.WithLabelValues(MapError(err).Code).Inc()
		return nil, err
	}
	metrics.Runs.WithLabelValues("ok").Inc()
	metrics.RunDuration.Observe(time.Since(start).Seconds())
	return run, nil
}

func (s *Service) run(ctx context.Context, req Request) (*store.Run, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid run request: %w", err)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	run := &store.Run{ID: uuid.New(), AsOf: req.AsOf, Base: req.Base}
	if run.AsOf == "" {
		run.AsOf = s.now().Format("20060102")
	}
	log := logging.WithFields(ctx, "run_id", run.ID, "base", run.Base, "as_of", run.AsOf)
	log.Info("run started", "files", len(req.Files))

	tables, err := s.readFeeds(ctx, req.Files)
	if err != nil {
		return nil, err
	}
	if err := feed.CheckSet(tables); err != nil {
		return nil, err
	}

	ref, err := s.ref.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}

	filter := feed.Filter{ItemCodes: req.ItemCodes, VendorCodes: req.VendorCodes}
	ready := make([]*feed.Table, 0, len(tables))
	for _, t := range tables {
		run.Files = append(run.Files, store.File{Channel: t.Channel, Name: t.FileName, Rows: len(t.Rows)})
		metrics.FeedRows.WithLabelValues(string(t.Channel)).Add(float64(len(t.Rows)))

		var schemaErr *listing.SchemaError
		if err := feed.Normalize(t); errors.As(err, &schemaErr) {
			run.Warnings = append(run.Warnings, fmt.Sprintf("%s: %v", t.FileName, err))
			metrics.SchemaErrors.WithLabelValues(string(t.Channel)).Inc()
			log.Warn("feed skipped", "file", t.FileName, "missing", schemaErr.Missing)
			continue
		} else if err != nil {
			return nil, err
		}
		if !filter.Empty() && filter.Applies(t.Channel) {
			filter.Apply(t)
		}
		ready = append(ready, t)
	}
	joinChoiceStock(ready)

	lctx := listing.NewContext(run.AsOf)
	if s.opts.ParentMarker != "" {
		lctx.ParentMarker = s.opts.ParentMarker
	}
	for _, t := range ready {
		def, _ := listing.Lookup(t.Channel)
		lctx.Load(def, t.Records())
		if def.Portal() {
			run.Channels = append(run.Channels, t.Channel)
		}
	}
	listing.PortalOrder(run.Channels)

	run.Rows, err = listing.Aggregate(ctx, listing.AggregateInput{
		Base:     run.Base,
		Channels: run.Channels,
		Context:  lctx,
		Periodic: ref.Periodic,
		Vendors:  ref.Vendors,
		Workers:  s.opts.Workers,
	})
	if err != nil {
		return nil, err
	}
	record(run)

	if err := s.store.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}
	summary := run.Summarize()
	log.Info("run finished", "items", summary.Items, "needs_review", summary.NeedsReview, "warnings", len(run.Warnings))
	return run, nil
}

// readFeeds detects the channel of every file and decodes the files concurrently.
func (s *Service) readFeeds(ctx context.Context, files []Upload) ([]*feed.Table, error) {
	defs := make([]listing.Definition, len(files))
	for i, f := range files {
		def, err := feed.Detect(f.Name)
		if err != nil {
			return nil, err
		}
		defs[i] = def
	}

	tables := make([]*feed.Table, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.opts.Workers, 2))
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if s.opts.MaxFileSize > 0 && int64(len(f.Data)) > s.opts.MaxFileSize {
				return fmt.Errorf("%s: %w", f.Name, feed.ErrFileTooLarge)
			}
			t, err := feed.Parse(defs[i], f.Name, f.Data)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

func joinChoiceStock(tables []*feed.Table) {
	var choice, stock *feed.Table
	for _, t := range tables {
		switch t.Channel {
		case channels.Choice:
			choice = t
		case channels.ChoiceStock:
			stock = t
		}
	}
	if choice != nil && stock != nil {
		feed.JoinChoiceStock(choice, stock)
	}
}

func record(run *store.Run) {
	for _, row := range run.Rows {
		for _, ch := range run.Channels {
			metrics.Statuses.WithLabelValues(string(ch), row.Status(ch).Label()).Inc()
		}
		if row.Check == listing.NeedsReview {
			metrics.ReviewItems.Inc()
		}
	}
}

// Get loads a stored run.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*store.Run, error) {
	return s.store.Get(ctx, id)
}

// List returns recent runs, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]store.Summary, error) {
	return s.store.List(ctx, limit)
}

// Delete removes a stored run.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}
