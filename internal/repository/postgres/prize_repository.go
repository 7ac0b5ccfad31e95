package postgres

import (
	"context"
	"database/sql"

	"advent-raffle-backend/internal/domain/calendar"
)

// PrizeRepository stores the per-door catalog.
type PrizeRepository struct {
	conn
}

func NewPrizeRepository(db *sql.DB, opts ...Option) *PrizeRepository {
	return &PrizeRepository{conn: newConn(db, opts)}
}

const prizeColumns = `id, door_number, quantity, name, message, sponsor, position`

func scanPrize(row interface{ Scan(...any) error }) (calendar.Prize, error) {
	var p calendar.Prize
	err := row.Scan(&p.ID, &p.Door, &p.Quantity, &p.Name, &p.Message, &p.Sponsor, &p.Position)
	return p, err
}

func (r *PrizeRepository) ListByDoor(ctx context.Context, door int) ([]calendar.Prize, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	return listPrizes(ctx, r.db, `SELECT `+prizeColumns+` FROM prizes WHERE door_number=$1 ORDER BY position`, door)
}

func (r *PrizeRepository) Get(ctx context.Context, id string) (*calendar.Prize, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	p, err := scanPrize(r.db.QueryRowContext(ctx, `SELECT `+prizeColumns+` FROM prizes WHERE id=$1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Save upserts the given prizes in one transaction. Known ids keep their position.
func (r *PrizeRepository) Save(ctx context.Context, prizes []calendar.Prize) (err error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const q = `
	INSERT INTO prizes (id, door_number, quantity, name, message, sponsor)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		door_number = EXCLUDED.door_number,
		quantity = EXCLUDED.quantity,
		name = EXCLUDED.name,
		message = EXCLUDED.message,
		sponsor = EXCLUDED.sponsor`
	for _, p := range prizes {
		if _, err = tx.ExecContext(ctx, q, p.ID, p.Door, p.Quantity, p.Name, p.Message, p.Sponsor); err != nil {
			return translate(err)
		}
	}
	return tx.Commit()
}

func listPrizes(ctx context.Context, q querier, query string, args ...any) ([]calendar.Prize, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []calendar.Prize
	for rows.Next() {
		p, err := scanPrize(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
