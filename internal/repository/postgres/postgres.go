package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/lib/pq"

	"advent-raffle-backend/internal/domain/calendar"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema files in name order. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		body, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}

// conn carries the shared handle and the per-call timeout of every repository.
type conn struct {
	db      *sql.DB
	timeout time.Duration
}

func (c conn) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.timeout)
}

// Option configures a repository.
type Option func(*conn)

// WithQueryTimeout bounds every repository call.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *conn) { c.timeout = d }
}

func newConn(db *sql.DB, opts []Option) conn {
	c := conn{db: db}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translate maps driver errors to calendar sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return calendar.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation, pgForeignKeyViolation:
			return fmt.Errorf("%s: %w", pqErr.Constraint, calendar.ErrConflict)
		}
	}
	return err
}

var (
	_ calendar.ParticipantRepository = (*ParticipantRepository)(nil)
	_ calendar.PrizeRepository       = (*PrizeRepository)(nil)
	_ calendar.WinnerRepository      = (*WinnerRepository)(nil)
	_ calendar.MintRepository        = (*MintRepository)(nil)
	_ calendar.WhitelistRepository   = (*WhitelistRepository)(nil)
)
