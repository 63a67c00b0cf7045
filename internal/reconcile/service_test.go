package reconcile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makoto1101/check-publication-status/internal/feed"
	"github.com/makoto1101/check-publication-status/internal/listing"
	"github.com/makoto1101/check-publication-status/internal/listing/channels"
	"github.com/makoto1101/check-publication-status/internal/reference"
	"github.com/makoto1101/check-publication-status/internal/store"
)

func csvBytes(t *testing.T, rows ...[]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.WriteAll(rows))
	return buf.Bytes()
}

// choiceRow builds a headerless choice export row.
func choiceRow(manage, code, name, display, end string) []string {
	row := make([]string, 103)
	row[1] = manage
	row[2] = name
	row[97] = display
	row[99] = end
	row[102] = code
	return row
}

func sampleUploads(t *testing.T) []Upload {
	return []Upload{
		{Name: "チョイス_20250401.csv", Data: csvBytes(t,
			choiceRow("M1", "12abcd001", "りんご", "1", "20991231"),
			choiceRow("M2", "12ABCD002", "みかん", "1", "20200101"),
		)},
		{Name: "チョイス在庫_20250401.csv", Data: csvBytes(t,
			[]string{"x", "M1", "りんご", "5"},
			[]string{"y", "M2", "みかん", "5"},
		)},
		{Name: "amazon_inventory.csv", Data: csvBytes(t,
			[]string{"sku", "quantity"},
			[]string{"12ABCD001", "3"},
		)},
	}
}

func newTestService(opts Options) (*Service, *store.Memory) {
	mem := store.NewMemory(0)
	ref := reference.Static{Data: &reference.Data{
		Periodic: reference.PeriodicSet{"12ABCD001": {}},
		Vendors:  reference.VendorDirectory{"12ABCD": {Code: "12ABCD", Name: "山田農園"}},
	}}
	svc := NewService(mem, ref, NewRunLimiter(2, 50*time.Millisecond), opts)
	svc.now = func() time.Time { return time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC) }
	return svc, mem
}

func TestRun(t *testing.T) {
	svc, mem := newTestService(Options{Workers: 2})

	run, err := svc.Run(t.Context(), Request{Files: sampleUploads(t), Base: channels.Choice})
	require.NoError(t, err)

	assert.Equal(t, "20250401", run.AsOf)
	assert.Equal(t, []listing.Channel{channels.Choice, channels.Amazon}, run.Channels)
	assert.Len(t, run.Files, 3)
	assert.Empty(t, run.Warnings)
	require.Len(t, run.Rows, 2)

	first := run.Rows[0]
	assert.Equal(t, "12ABCD001", first.Code)
	assert.Equal(t, "りんご", first.Name)
	assert.Equal(t, "山田農園", first.VendorName)
	assert.True(t, first.Periodic)
	assert.Equal(t, listing.Published, first.Status(channels.Choice))
	assert.Equal(t, listing.Published, first.Status(channels.Amazon))
	assert.Equal(t, listing.CheckOK, first.Check)
	assert.Equal(t, 2, first.Published)

	second := run.Rows[1]
	assert.Equal(t, listing.Closed, second.Status(channels.Choice))
	assert.Equal(t, listing.Unregistered, second.Status(channels.Amazon))
	assert.Equal(t, listing.NeedsReview, second.Check)

	stored, err := mem.Get(t.Context(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, stored.ID)

	list, err := svc.List(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].NeedsReview)
}

func TestRunFilter(t *testing.T) {
	svc, _ := newTestService(Options{})
	run, err := svc.Run(t.Context(), Request{
		Files:     sampleUploads(t),
		Base:      channels.Choice,
		AsOf:      "20250401",
		ItemCodes: []string{"abcd002"},
	})
	require.NoError(t, err)
	require.Len(t, run.Rows, 1)
	assert.Equal(t, "12ABCD002", run.Rows[0].Code)
}

func TestRunSchemaErrorSkipsChannel(t *testing.T) {
	svc, _ := newTestService(Options{})
	files := append(sampleUploads(t), Upload{
		Name: "楽天_normal-item.csv",
		Data: csvBytes(t, []string{"商品番号"}, []string{"12ABCD001"}),
	})

	run, err := svc.Run(t.Context(), Request{Files: files, Base: channels.Choice})
	require.NoError(t, err)
	assert.NotContains(t, run.Channels, channels.Rakuten)
	require.Len(t, run.Warnings, 1)
	assert.Contains(t, run.Warnings[0], "missing required columns")
}

func TestRunErrors(t *testing.T) {
	uploads := sampleUploads(t)

	tests := []struct {
		name     string
		opts     Options
		req      Request
		wantErr  error
		wantCode string
	}{
		{
			name:     "no files",
			req:      Request{Base: channels.Choice},
			wantCode: "RUN003",
		},
		{
			name:     "unknown base",
			req:      Request{Files: uploads, Base: "mercari"},
			wantCode: "RUN003",
		},
		{
			name:     "stock feed as base",
			req:      Request{Files: uploads, Base: channels.ChoiceStock},
			wantCode: "RUN003",
		},
		{
			name:     "malformed date",
			req:      Request{Files: uploads, Base: channels.Choice, AsOf: "2025-04-01"},
			wantCode: "RUN003",
		},
		{
			name:     "base not uploaded",
			req:      Request{Files: uploads, Base: channels.Rakuten},
			wantErr:  listing.ErrBaseChannelMissing,
			wantCode: "RUN002",
		},
		{
			name:     "unknown file",
			req:      Request{Files: append(uploads[:3:3], Upload{Name: "export.csv"}), Base: channels.Choice},
			wantErr:  feed.ErrUnknownFile,
			wantCode: "FEED001",
		},
		{
			name:     "missing pair",
			req:      Request{Files: []Upload{uploads[0], uploads[2]}, Base: channels.Choice},
			wantErr:  feed.ErrMissingPair,
			wantCode: "FEED003",
		},
		{
			name:     "duplicate channel",
			req:      Request{Files: append(uploads[:3:3], Upload{Name: "amazon_2.csv", Data: uploads[2].Data}), Base: channels.Choice},
			wantErr:  feed.ErrDuplicateChannel,
			wantCode: "FEED002",
		},
		{
			name:     "file too large",
			opts:     Options{MaxFileSize: 16},
			req:      Request{Files: uploads, Base: channels.Choice},
			wantErr:  feed.ErrFileTooLarge,
			wantCode: "FEED005",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(tt.opts)
			_, err := svc.Run(t.Context(), tt.req)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.wantCode, MapError(err).Code)
		})
	}
}

func TestRunLimiterBusy(t *testing.T) {
	svc, _ := newTestService(Options{})
	require.True(t, svc.Limiter().TryAcquire())
	require.True(t, svc.Limiter().TryAcquire())
	defer svc.Limiter().Release()
	defer svc.Limiter().Release()

	_, err := svc.Run(t.Context(), Request{Files: sampleUploads(t), Base: channels.Choice})
	assert.ErrorIs(t, err, ErrTooManyRuns)
	assert.Equal(t, "RUN001", MapError(err).Code)
}

type failingSource struct{}

func (failingSource) Load(context.Context) (*reference.Data, error) {
	return nil, errors.New("sheets: 503 backend unavailable")
}

func TestRunReferenceFailure(t *testing.T) {
	svc := NewService(store.NewMemory(0), failingSource{}, nil, Options{})
	_, err := svc.Run(t.Context(), Request{Files: sampleUploads(t), Base: channels.Choice})
	require.Error(t, err)
	assert.Equal(t, "REF002", MapError(err).Code)
}
