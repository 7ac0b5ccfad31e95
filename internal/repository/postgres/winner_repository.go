package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"advent-raffle-backend/internal/domain/calendar"
)

// WinnerRepository stores raffle results.
type WinnerRepository struct {
	conn
}

func NewWinnerRepository(db *sql.DB, opts ...Option) *WinnerRepository {
	return &WinnerRepository{conn: newConn(db, opts)}
}

const winnerColumns = `id, wallet_address, door_number, prize_id, claimed, day_date, created_at`

func scanWinner(row interface{ Scan(...any) error }) (calendar.WinnerAssignment, error) {
	var (
		w       calendar.WinnerAssignment
		dayDate time.Time
	)
	if err := row.Scan(&w.ID, &w.Wallet, &w.Door, &w.PrizeID, &w.Claimed, &dayDate, &w.CreatedAt); err != nil {
		return w, err
	}
	w.DayDate = dayDate.Format(time.DateOnly)
	return w, nil
}

func (r *WinnerRepository) CountByDoor(ctx context.Context, door int) (int, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM winners WHERE door_number=$1`, door).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *WinnerRepository) ListByDoor(ctx context.Context, door int) ([]calendar.WinnerAssignment, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	return listWinners(ctx, r.db, `SELECT `+winnerColumns+` FROM winners WHERE door_number=$1 ORDER BY id`, door)
}

func (r *WinnerRepository) FindByWalletAndDoor(ctx context.Context, wallet string, door int) (*calendar.WinnerAssignment, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	w, err := scanWinner(r.db.QueryRowContext(ctx,
		`SELECT `+winnerColumns+` FROM winners WHERE wallet_address=$1 AND door_number=$2`, wallet, door))
	if err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

// AllocateDoor runs plan inside one transaction. The door's prize rows are
// locked first so a concurrent run for the same door waits, then observes the
// committed winners in its snapshot. The unique (wallet, door) constraint
// rejects anything that slips past.
func (r *WinnerRepository) AllocateDoor(ctx context.Context, door int, plan calendar.AllocationPlan) (created []calendar.WinnerAssignment, err error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	snapshot := calendar.DoorSnapshot{Door: door}
	snapshot.Prizes, err = listPrizes(ctx, tx,
		`SELECT `+prizeColumns+` FROM prizes WHERE door_number=$1 ORDER BY position FOR UPDATE`, door)
	if err != nil {
		return nil, err
	}
	snapshot.Existing, err = listWinners(ctx, tx,
		`SELECT `+winnerColumns+` FROM winners WHERE door_number=$1 ORDER BY id`, door)
	if err != nil {
		return nil, err
	}
	snapshot.Participants, err = listParticipants(ctx, tx,
		`SELECT `+participantColumns+` FROM participants WHERE is_active ORDER BY wallet_address`)
	if err != nil {
		return nil, err
	}

	planned, err := plan(snapshot)
	if err != nil {
		return nil, err
	}
	if len(planned) == 0 {
		return nil, tx.Commit()
	}

	wallets := make([]string, len(planned))
	prizeIDs := make([]string, len(planned))
	dayDates := make([]string, len(planned))
	for i, w := range planned {
		wallets[i] = w.Wallet
		prizeIDs[i] = w.PrizeID
		dayDates[i] = w.DayDate
	}

	const q = `
	INSERT INTO winners (wallet_address, door_number, prize_id, day_date)
	SELECT t.wallet, $1, t.prize, COALESCE(NULLIF(t.day, '')::date, CURRENT_DATE)
	FROM unnest($2::text[], $3::text[], $4::text[]) WITH ORDINALITY AS t(wallet, prize, day, ord)
	ORDER BY t.ord
	RETURNING ` + winnerColumns
	created, err = listWinners(ctx, tx, q, door, pq.Array(wallets), pq.Array(prizeIDs), pq.Array(dayDates))
	if err != nil {
		err = translate(err)
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = translate(err)
		return nil, err
	}
	return created, nil
}

func listWinners(ctx context.Context, q querier, query string, args ...any) ([]calendar.WinnerAssignment, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []calendar.WinnerAssignment
	for rows.Next() {
		w, err := scanWinner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
