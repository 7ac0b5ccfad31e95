package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"advent-raffle-backend/internal/domain/calendar"
	rplatform "advent-raffle-backend/internal/platform/redis"
)

const keyPrefixTicket = "eligibility_ticket:"

// TicketStore keeps registration tickets until they are used or expire.
type TicketStore struct {
	client *rplatform.Client
}

func NewTicketStore(client *rplatform.Client) *TicketStore {
	return &TicketStore{client: client}
}

// Save binds ticket to wallet for ttl.
func (s *TicketStore) Save(ctx context.Context, ticket, wallet string, ttl time.Duration) error {
	return s.client.Set(ctx, keyPrefixTicket+ticket, wallet, ttl).Err()
}

// Consume returns the ticket's wallet and deletes it atomically.
// Unknown or expired tickets yield calendar.ErrNotFound.
func (s *TicketStore) Consume(ctx context.Context, ticket string) (string, error) {
	wallet, err := s.client.GetDel(ctx, keyPrefixTicket+ticket).Result()
	if errors.Is(err, redis.Nil) {
		return "", calendar.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return wallet, nil
}
