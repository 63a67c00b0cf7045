package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/makoto1101/check-publication-status/internal/listing"
)

//go:embed schema.sql
var schema string

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Postgres stores runs in PostgreSQL. Result rows are bulk loaded with COPY.
type Postgres struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgres wraps an open pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, now: time.Now}
}

// Migrate creates the run tables when they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

var rowColumns = []string{
	"run_id", "position", "code", "name", "vendor_code", "vendor_name",
	"statuses", "check_flag", "periodic", "published",
}

func (p *Postgres) Save(ctx context.Context, run *Run) error {
	prepare(run, p.now())

	files, err := json.Marshal(run.Files)
	if err != nil {
		return fmt.Errorf("encode files: %w", err)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	_, err = tx.Exec(ctx, `
		INSERT INTO listing_runs (id, created_at, as_of, base_channel, channels, files, warnings)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.CreatedAt, run.AsOf, string(run.Base), channelStrings(run.Channels), string(files), nonNil(run.Warnings),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	copyRows := make([][]any, len(run.Rows))
	for i, r := range run.Rows {
		statuses, err := json.Marshal(r.Statuses)
		if err != nil {
			return fmt.Errorf("encode statuses of %s: %w", r.Code, err)
		}
		copyRows[i] = []any{
			run.ID, i, r.Code, r.Name, r.VendorCode, r.VendorName,
			string(statuses), r.Check.String(), r.Periodic, r.Published,
		}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"listing_run_rows"}, rowColumns, pgx.CopyFromRows(copyRows)); err != nil {
		return fmt.Errorf("copy rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	run, err := getRun(ctx, p.pool, id)
	if err != nil {
		return nil, err
	}
	if run.Rows, err = getRows(ctx, p.pool, id); err != nil {
		return nil, err
	}
	return run, nil
}

func getRun(ctx context.Context, db DBTX, id uuid.UUID) (*Run, error) {
	var (
		run      = &Run{ID: id}
		base     string
		channels []string
		files    []byte
	)
	err := db.QueryRow(ctx, `
		SELECT created_at, as_of, base_channel, channels, files, warnings
		FROM listing_runs WHERE id = $1`, id,
	).Scan(&run.CreatedAt, &run.AsOf, &base, &channels, &files, &run.Warnings)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	run.Base = listing.Channel(base)
	for _, ch := range channels {
		run.Channels = append(run.Channels, listing.Channel(ch))
	}
	if err := json.Unmarshal(files, &run.Files); err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}
	return run, nil
}

func getRows(ctx context.Context, db DBTX, id uuid.UUID) ([]listing.Row, error) {
	rows, err := db.Query(ctx, `
		SELECT code, name, vendor_code, vendor_name, statuses, check_flag, periodic, published
		FROM listing_run_rows WHERE run_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var out []listing.Row
	for rows.Next() {
		var (
			r        listing.Row
			statuses []byte
			check    string
		)
		if err := rows.Scan(&r.Code, &r.Name, &r.VendorCode, &r.VendorName, &statuses, &check, &r.Periodic, &r.Published); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(statuses, &r.Statuses); err != nil {
			return nil, fmt.Errorf("decode statuses of %s: %w", r.Code, err)
		}
		if err := r.Check.UnmarshalText([]byte(check)); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := p.pool.Query(ctx, `
		SELECT r.id, r.created_at, r.as_of, r.base_channel,
		       COUNT(x.position), COUNT(x.position) FILTER (WHERE x.check_flag = $2)
		FROM listing_runs r
		LEFT JOIN listing_run_rows x ON x.run_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC
		LIMIT $1`, limit, listing.NeedsReview.String())
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			s    Summary
			base string
		)
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.AsOf, &base, &s.Items, &s.NeedsReview); err != nil {
			return nil, err
		}
		s.Base = listing.Channel(base)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM listing_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

func channelStrings(chs []listing.Channel) []string {
	out := make([]string, len(chs))
	for i, ch := range chs {
		out[i] = string(ch)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
