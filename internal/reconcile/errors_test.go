package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/makoto1101/check-publication-status/internal/feed"
	"github.com/makoto1101/check-publication-status/internal/listing"
	"github.com/makoto1101/check-publication-status/internal/reference"
	"github.com/makoto1101/check-publication-status/internal/store"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"limiter", ErrTooManyRuns, "RUN001"},
		{"base missing", fmt.Errorf("aggregate rakuten: %w", listing.ErrBaseChannelMissing), "RUN002"},
		{"run not found", store.ErrRunNotFound, "RUN004"},
		{"deadline", context.DeadlineExceeded, "RUN005"},
		{"unknown file", fmt.Errorf("x.csv: %w", feed.ErrUnknownFile), "FEED001"},
		{"unsupported type", fmt.Errorf("parse x.pdf: %w", feed.ErrUnsupportedType), "FEED004"},
		{"schema", &listing.SchemaError{Channel: "rakuten", Missing: []string{"商品番号"}}, "FEED006"},
		{"reference header", fmt.Errorf("load reference data: 事業者DB: %w", reference.ErrMissingHeader), "REF001"},
		{"database", errors.New("save run: dial tcp: connection refused"), "DB001"},
		{"case insensitive", errors.New("RATE LIMIT exceeded"), "RATE001"},
		{"unknown error returns default", errors.New("some random internal error"), "ERR000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err); got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrTooManyRuns)
	want := "The system is busy with other runs (Code: RUN001). Please wait a moment and try again"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil error is not user facing")
	}
	if !IsUserFacing(feed.ErrMissingPair) {
		t.Error("known error should be user facing")
	}
	if IsUserFacing(errors.New("random internal error xyz")) {
		t.Error("unknown error should not be user facing")
	}
}

func TestNewUserError(t *testing.T) {
	if got := NewUserError(nil); got != nil {
		t.Errorf("NewUserError(nil) = %v, want nil", got)
	}

	techErr := fmt.Errorf("a.csv and b.csv: %w", feed.ErrDuplicateChannel)
	userErr := NewUserError(techErr)
	if userErr.Error() != "Two files were uploaded for the same channel" {
		t.Errorf("Error() = %q, want user message", userErr.Error())
	}
	if !errors.Is(userErr, feed.ErrDuplicateChannel) {
		t.Error("Unwrap() should return original error")
	}
}
