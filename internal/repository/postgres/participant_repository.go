package postgres

import (
	"context"
	"database/sql"
	"time"

	"advent-raffle-backend/internal/domain/calendar"
)

// ParticipantRepository stores registrations in the participants table.
type ParticipantRepository struct {
	conn
}

func NewParticipantRepository(db *sql.DB, opts ...Option) *ParticipantRepository {
	return &ParticipantRepository{conn: newConn(db, opts)}
}

const participantColumns = `wallet_address, is_active, registered_at, registration_nft`

func scanParticipant(row interface{ Scan(...any) error }) (calendar.Participant, error) {
	var p calendar.Participant
	err := row.Scan(&p.Wallet, &p.Active, &p.RegisteredAt, &p.RegistrationNFT)
	return p, err
}

func (r *ParticipantRepository) Get(ctx context.Context, wallet string) (*calendar.Participant, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	p, err := scanParticipant(r.db.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE wallet_address=$1`, wallet))
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Create inserts a participant; an existing wallet fails with calendar.ErrConflict.
func (r *ParticipantRepository) Create(ctx context.Context, p *calendar.Participant) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	if p.RegisteredAt.IsZero() {
		p.RegisteredAt = time.Now().UTC()
	}
	const q = `
	INSERT INTO participants (wallet_address, is_active, registered_at, registration_nft)
	VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, q, p.Wallet, p.Active, p.RegisteredAt, p.RegistrationNFT)
	return translate(err)
}

func (r *ParticipantRepository) ListActive(ctx context.Context) ([]calendar.Participant, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	return listParticipants(ctx, r.db, `SELECT `+participantColumns+` FROM participants WHERE is_active ORDER BY wallet_address`)
}

func (r *ParticipantRepository) SetActive(ctx context.Context, wallet string, active bool) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE participants SET is_active=$2 WHERE wallet_address=$1`, wallet, active)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return calendar.ErrNotFound
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listParticipants(ctx context.Context, q querier, query string, args ...any) ([]calendar.Participant, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []calendar.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
