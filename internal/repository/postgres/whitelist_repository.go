package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

// WhitelistRepository is the table-backed allow-list.
type WhitelistRepository struct {
	conn
}

func NewWhitelistRepository(db *sql.DB, opts ...Option) *WhitelistRepository {
	return &WhitelistRepository{conn: newConn(db, opts)}
}

func (r *WhitelistRepository) Contains(ctx context.Context, wallet string) (bool, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	var ok bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM whitelist WHERE wallet=$1)`, wallet).Scan(&ok)
	return ok, err
}

// Add inserts wallets, ignoring those already present, and reports how many were new.
func (r *WhitelistRepository) Add(ctx context.Context, wallets ...string) (int, error) {
	if len(wallets) == 0 {
		return 0, nil
	}
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO whitelist (wallet) SELECT DISTINCT unnest($1::text[]) ON CONFLICT (wallet) DO NOTHING`,
		pq.Array(wallets))
	if err != nil {
		return 0, translate(err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
