package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"advent-raffle-backend/internal/domain/calendar"
)

type walletDoor struct {
	wallet string
	door   int
}

// Store is an in-process implementation of every calendar repository.
// It backs tests and STORAGE_DRIVER=memory runs; all state is lost on exit.
type Store struct {
	mu sync.RWMutex

	participants map[string]calendar.Participant
	prizes       map[string]calendar.Prize
	nextPosition int64
	winners      []calendar.WinnerAssignment
	nextWinnerID int64
	mints        map[walletDoor]calendar.MintRecord
	whitelist    map[string]struct{}
}

func New() *Store {
	return &Store{
		participants: make(map[string]calendar.Participant),
		prizes:       make(map[string]calendar.Prize),
		mints:        make(map[walletDoor]calendar.MintRecord),
		whitelist:    make(map[string]struct{}),
	}
}

func (s *Store) Participants() *ParticipantRepository { return &ParticipantRepository{s} }
func (s *Store) Prizes() *PrizeRepository             { return &PrizeRepository{s} }
func (s *Store) Winners() *WinnerRepository           { return &WinnerRepository{s} }
func (s *Store) Mints() *MintRepository               { return &MintRepository{s} }
func (s *Store) Whitelist() *WhitelistRepository      { return &WhitelistRepository{s} }

var (
	_ calendar.ParticipantRepository = (*ParticipantRepository)(nil)
	_ calendar.PrizeRepository       = (*PrizeRepository)(nil)
	_ calendar.WinnerRepository      = (*WinnerRepository)(nil)
	_ calendar.MintRepository        = (*MintRepository)(nil)
	_ calendar.WhitelistRepository   = (*WhitelistRepository)(nil)
)

func (s *Store) activeParticipants() []calendar.Participant {
	out := make([]calendar.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Wallet < out[j].Wallet })
	return out
}

func (s *Store) doorPrizes(door int) []calendar.Prize {
	var out []calendar.Prize
	for _, p := range s.prizes {
		if p.Door == door {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (s *Store) doorWinners(door int) []calendar.WinnerAssignment {
	var out []calendar.WinnerAssignment
	for _, w := range s.winners {
		if w.Door == door {
			out = append(out, w)
		}
	}
	return out
}

// ParticipantRepository is the registration ledger view of a Store.
type ParticipantRepository struct{ s *Store }

func (r *ParticipantRepository) Get(ctx context.Context, wallet string) (*calendar.Participant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.participants[wallet]
	if !ok {
		return nil, calendar.ErrNotFound
	}
	return &p, nil
}

func (r *ParticipantRepository) Create(ctx context.Context, p *calendar.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.participants[p.Wallet]; ok {
		return fmt.Errorf("participant %s: %w", p.Wallet, calendar.ErrConflict)
	}
	r.s.participants[p.Wallet] = *p
	return nil
}

func (r *ParticipantRepository) ListActive(ctx context.Context) ([]calendar.Participant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.activeParticipants(), nil
}

func (r *ParticipantRepository) SetActive(ctx context.Context, wallet string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[wallet]
	if !ok {
		return calendar.ErrNotFound
	}
	p.Active = active
	r.s.participants[wallet] = p
	return nil
}

// PrizeRepository is the catalog view of a Store.
type PrizeRepository struct{ s *Store }

func (r *PrizeRepository) ListByDoor(ctx context.Context, door int) ([]calendar.Prize, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.doorPrizes(door), nil
}

func (r *PrizeRepository) Get(ctx context.Context, id string) (*calendar.Prize, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.prizes[id]
	if !ok {
		return nil, calendar.ErrNotFound
	}
	return &p, nil
}

func (r *PrizeRepository) Save(ctx context.Context, prizes []calendar.Prize) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range prizes {
		if old, ok := r.s.prizes[p.ID]; ok {
			p.Position = old.Position
		} else {
			r.s.nextPosition++
			p.Position = r.s.nextPosition
		}
		r.s.prizes[p.ID] = p
	}
	return nil
}

// Delete removes a catalog entry and leaves winner rows that reference it.
// Only tests use it, to produce stale references.
func (r *PrizeRepository) Delete(id string) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.prizes, id)
}

// WinnerRepository is the raffle result view of a Store.
type WinnerRepository struct{ s *Store }

func (r *WinnerRepository) CountByDoor(ctx context.Context, door int) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.doorWinners(door)), nil
}

func (r *WinnerRepository) ListByDoor(ctx context.Context, door int) ([]calendar.WinnerAssignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.doorWinners(door), nil
}

func (r *WinnerRepository) FindByWalletAndDoor(ctx context.Context, wallet string, door int) (*calendar.WinnerAssignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, w := range r.s.winners {
		if w.Wallet == wallet && w.Door == door {
			return &w, nil
		}
	}
	return nil, calendar.ErrNotFound
}

// Insert stores assignments directly, bypassing allocation. Tests use it to seed partial state.
func (r *WinnerRepository) Insert(assignments ...calendar.WinnerAssignment) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range assignments {
		r.s.nextWinnerID++
		w.ID = r.s.nextWinnerID
		r.s.winners = append(r.s.winners, w)
	}
}

// AllocateDoor holds the write lock for the whole plan, which serialises
// concurrent allocations the way the Postgres row locks do.
func (r *WinnerRepository) AllocateDoor(ctx context.Context, door int, plan calendar.AllocationPlan) ([]calendar.WinnerAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snapshot := calendar.DoorSnapshot{
		Door:         door,
		Prizes:       r.s.doorPrizes(door),
		Participants: r.s.activeParticipants(),
		Existing:     r.s.doorWinners(door),
	}
	planned, err := plan(snapshot)
	if err != nil {
		return nil, err
	}

	// Same guarantees as the unique (wallet, door) constraint and the prize FK.
	taken := make(map[string]struct{}, len(snapshot.Existing)+len(planned))
	for _, w := range snapshot.Existing {
		taken[w.Wallet] = struct{}{}
	}
	for _, w := range planned {
		if _, dup := taken[w.Wallet]; dup {
			return nil, fmt.Errorf("wallet %s already won door %d: %w", w.Wallet, door, calendar.ErrConflict)
		}
		if _, ok := r.s.prizes[w.PrizeID]; !ok {
			return nil, fmt.Errorf("unknown prize %q: %w", w.PrizeID, calendar.ErrConflict)
		}
		taken[w.Wallet] = struct{}{}
	}

	now := time.Now().UTC()
	created := make([]calendar.WinnerAssignment, 0, len(planned))
	for _, w := range planned {
		r.s.nextWinnerID++
		w.ID = r.s.nextWinnerID
		w.Door = door
		w.CreatedAt = now
		created = append(created, w)
	}
	r.s.winners = append(r.s.winners, created...)
	return created, nil
}

// MintRepository is the mint ledger view of a Store.
type MintRepository struct{ s *Store }

func (r *MintRepository) Get(ctx context.Context, wallet string, door int) (*calendar.MintRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.mints[walletDoor{wallet, door}]
	if !ok {
		return nil, calendar.ErrNotFound
	}
	return &m, nil
}

func (r *MintRepository) Create(ctx context.Context, m *calendar.MintRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := walletDoor{m.Wallet, m.Door}
	if _, ok := r.s.mints[key]; ok {
		return fmt.Errorf("mint %s/%d: %w", m.Wallet, m.Door, calendar.ErrConflict)
	}
	r.s.mints[key] = *m
	return nil
}

func (r *MintRepository) ListByWallet(ctx context.Context, wallet string) ([]calendar.MintRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []calendar.MintRecord
	for k, m := range r.s.mints {
		if k.wallet == wallet {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Door < out[j].Door })
	return out, nil
}

// WhitelistRepository is the allow-list view of a Store.
type WhitelistRepository struct{ s *Store }

func (r *WhitelistRepository) Contains(ctx context.Context, wallet string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.whitelist[wallet]
	return ok, nil
}

func (r *WhitelistRepository) Add(ctx context.Context, wallets ...string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	added := 0
	for _, w := range wallets {
		if _, ok := r.s.whitelist[w]; !ok {
			r.s.whitelist[w] = struct{}{}
			added++
		}
	}
	return added, nil
}
