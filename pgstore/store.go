// Package pgstore implements finance.Store and finance.Locker on PostgreSQL.
//
// Amounts are NUMERIC columns read back as text so that no precision is lost,
// dates are ISO-8601 TEXT columns that sort like the dates they hold.
package pgstore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a finance.Store backed by a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Open connects to url, applies pending migrations and returns the Store.
func Open(ctx context.Context, url string, log zerolog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot reach database: %w", err)
	}
	s := &Store{pool: pool, log: log}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases every pooled connection.
func (s *Store) Close() { s.pool.Close() }

// Migrate brings the schema up to date.
func (s *Store) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("cannot load migrations: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("cannot migrate database: %w", err)
	}
	for _, r := range results {
		s.log.Info().Str("migration", r.Source.Path).Dur("took", r.Duration).Msg("applied migration")
	}
	return nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, finance.ErrNotFound)
}

// one maps pgx.ErrNoRows to ErrNotFound.
func one[T any](v T, err error, kind, id string) (T, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return v, notFound(kind, id)
	}
	return v, err
}

// mustAffect returns ErrNotFound when a write touched no row.
func mustAffect(tag interface{ RowsAffected() int64 }, kind, id string) error {
	if tag.RowsAffected() == 0 {
		return notFound(kind, id)
	}
	return nil
}

// collect scans every row with scan.
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	var res []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

func quantity(s string) (finance.Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return finance.Quantity{}, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	return finance.Q(d), nil
}

func day(s string) (date.Date, error) {
	if s == "" {
		return date.Date{}, nil
	}
	return date.Parse(s)
}

// decoder accumulates the first decoding error of a row.
type decoder struct{ err error }

func (d *decoder) money(s string) finance.Money {
	v, err := finance.ParseMoney(s)
	d.keep(err)
	return v
}

func (d *decoder) quantity(s string) finance.Quantity {
	v, err := quantity(s)
	d.keep(err)
	return v
}

func (d *decoder) decimal(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	d.keep(err)
	return v
}

func (d *decoder) date(s string) date.Date {
	v, err := day(s)
	d.keep(err)
	return v
}

func (d *decoder) month(s string) date.Month {
	v, err := date.ParseMonth(s)
	d.keep(err)
	return v
}

func (d *decoder) keep(err error) {
	if d.err == nil && err != nil {
		d.err = err
	}
}

var _ finance.Store = (*Store)(nil)
