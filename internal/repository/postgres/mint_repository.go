package postgres

import (
	"context"
	"database/sql"

	"advent-raffle-backend/internal/domain/calendar"
)

// MintRepository stores opened doors.
type MintRepository struct {
	conn
}

func NewMintRepository(db *sql.DB, opts ...Option) *MintRepository {
	return &MintRepository{conn: newConn(db, opts)}
}

const mintColumns = `id, wallet_address, door_number, nft_address, is_eligible_for_raffle, minted_at`

func scanMint(row interface{ Scan(...any) error }) (calendar.MintRecord, error) {
	var m calendar.MintRecord
	err := row.Scan(&m.ID, &m.Wallet, &m.Door, &m.NFTReference, &m.IsEligibleForRaffle, &m.MintedAt)
	return m, err
}

func (r *MintRepository) Get(ctx context.Context, wallet string, door int) (*calendar.MintRecord, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	m, err := scanMint(r.db.QueryRowContext(ctx,
		`SELECT `+mintColumns+` FROM mints WHERE wallet_address=$1 AND door_number=$2`, wallet, door))
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *MintRepository) Create(ctx context.Context, m *calendar.MintRecord) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	const q = `
	INSERT INTO mints (id, wallet_address, door_number, nft_address, is_eligible_for_raffle, minted_at)
	VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, q, m.ID, m.Wallet, m.Door, m.NFTReference, m.IsEligibleForRaffle, m.MintedAt)
	return translate(err)
}

func (r *MintRepository) ListByWallet(ctx context.Context, wallet string) ([]calendar.MintRecord, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+mintColumns+` FROM mints WHERE wallet_address=$1 ORDER BY door_number`, wallet)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []calendar.MintRecord
	for rows.Next() {
		m, err := scanMint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
