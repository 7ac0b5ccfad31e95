package memory

import (
	"context"
	"sync"
	"time"

	"advent-raffle-backend/internal/domain/calendar"
)

type ticket struct {
	wallet    string
	expiresAt time.Time
}

// TicketStore keeps eligibility tickets in process for memory-driver runs.
type TicketStore struct {
	mu      sync.Mutex
	tickets map[string]ticket
	now     func() time.Time
}

func NewTicketStore() *TicketStore {
	return &TicketStore{tickets: make(map[string]ticket), now: time.Now}
}

func (s *TicketStore) Save(ctx context.Context, t, wallet string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[t] = ticket{wallet: wallet, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *TicketStore) Consume(ctx context.Context, t string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tk, ok := s.tickets[t]
	delete(s.tickets, t)
	if !ok || !s.now().Before(tk.expiresAt) {
		return "", calendar.ErrNotFound
	}
	return tk.wallet, nil
}
