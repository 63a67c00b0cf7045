package listing

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrBaseChannelMissing stops a run whose base channel has no index.
var ErrBaseChannelMissing = errors.New("base channel not loaded")

// PeriodicSet tells whether an item ships on a recurring schedule.
type PeriodicSet interface {
	Contains(code string) bool
}

// VendorDirectory resolves vendor codes to display names.
type VendorDirectory interface {
	VendorName(vendorCode string) string
}

// Row is the reconciled result for one base-channel item.
type Row struct {
	Code       string
	Name       string
	VendorCode string
	VendorName string

	Channels []Channel // active channels in portal order
	Statuses map[Channel]Status

	Check     CheckFlag
	Periodic  bool
	Published int
}

// Status returns the status of the item in ch.
func (r Row) Status(ch Channel) Status { return r.Statuses[ch] }

// AggregateInput configures one aggregation.
type AggregateInput struct {
	Base     Channel
	Channels []Channel // active channels; sorted into portal order
	Context  *Context
	Periodic PeriodicSet
	Vendors  VendorDirectory

	// Workers > 1 classifies items concurrently. Row order is unchanged.
	Workers int
}

// Aggregate classifies every item of the base channel in every active channel.
func Aggregate(ctx context.Context, in AggregateInput) ([]Row, error) {
	if in.Context == nil {
		return nil, fmt.Errorf("aggregate %s: %w", in.Base, ErrBaseChannelMissing)
	}
	base := in.Context.Index(in.Base)
	if base == nil {
		return nil, fmt.Errorf("aggregate %s: %w", in.Base, ErrBaseChannelMissing)
	}
	baseDef, _ := Lookup(in.Base)

	channels := append([]Channel(nil), in.Channels...)
	PortalOrder(channels)

	codes := base.Codes()
	rows := make([]Row, len(codes))
	build := func(i int) {
		rows[i] = buildRow(codes[i], baseDef, base, channels, in)
	}

	if in.Workers <= 1 || len(codes) < 2 {
		for i := range codes {
			if i%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			build(i)
		}
		return rows, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.Workers)
	chunk := (len(codes) + in.Workers - 1) / in.Workers
	for start := 0; start < len(codes); start += chunk {
		end := min(start+chunk, len(codes))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				build(i)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func buildRow(code string, baseDef Definition, base *Index, channels []Channel, in AggregateInput) Row {
	row := Row{
		Code:       code,
		VendorCode: VendorCode(code),
		Channels:   channels,
		Statuses:   make(map[Channel]Status, len(channels)),
	}
	if rec, ok := base.Lookup(code); ok && !baseDef.NameField.IsZero() {
		row.Name = rec.Get(baseDef.NameField)
	}
	if in.Vendors != nil && row.VendorCode != "" {
		row.VendorName = in.Vendors.VendorName(row.VendorCode)
	}
	if in.Periodic != nil {
		row.Periodic = in.Periodic.Contains(code)
	}

	statuses := make([]Status, len(channels))
	for i, ch := range channels {
		st := Classify(ch, code, in.Context)
		statuses[i] = st
		row.Statuses[ch] = st
		if st == Published {
			row.Published++
		}
	}
	row.Check = Check(statuses)
	return row
}
