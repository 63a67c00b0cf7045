// Package store persists reconciliation runs so results can be listed,
// reloaded and exported after the request that produced them.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/makoto1101/check-publication-status/internal/listing"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// File describes one uploaded feed of a run.
type File struct {
	Channel listing.Channel `json:"channel"`
	Name    string          `json:"name"`
	Rows    int             `json:"rows"`
}

// Run is one completed reconciliation.
type Run struct {
	ID        uuid.UUID
	CreatedAt time.Time
	AsOf      string
	Base      listing.Channel
	Channels  []listing.Channel
	Files     []File
	Warnings  []string
	Rows      []listing.Row
}

// Summary is the list view of a run.
type Summary struct {
	ID          uuid.UUID       `json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	AsOf        string          `json:"as_of"`
	Base        listing.Channel `json:"base"`
	Items       int             `json:"items"`
	NeedsReview int             `json:"needs_review"`
}

// Summarize counts the rows of run.
func (r *Run) Summarize() Summary {
	s := Summary{ID: r.ID, CreatedAt: r.CreatedAt, AsOf: r.AsOf, Base: r.Base, Items: len(r.Rows)}
	for _, row := range r.Rows {
		if row.Check == listing.NeedsReview {
			s.NeedsReview++
		}
	}
	return s
}

// Store saves and loads runs.
type Store interface {
	// Save assigns an ID and creation time when they are unset.
	Save(ctx context.Context, run *Run) error
	Get(ctx context.Context, id uuid.UUID) (*Run, error)
	// List returns the newest runs first.
	List(ctx context.Context, limit int) ([]Summary, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

func prepare(run *Run, now time.Time) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
}
