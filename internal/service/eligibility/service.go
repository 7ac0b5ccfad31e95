package eligibility

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Whitelist,TicketStore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	apperrors "advent-raffle-backend/internal/common/errors"
	"advent-raffle-backend/internal/common/logger"
	"advent-raffle-backend/internal/domain/calendar"
	"advent-raffle-backend/internal/utils/wallet"
)

// Reasons a wallet is not eligible.
const (
	ReasonNotWhitelisted    = "not_whitelisted"
	ReasonAlreadyRegistered = "already_registered"
)

const (
	ticketBytes      = 32
	defaultTicketTTL = 5 * time.Minute
)

// Whitelist answers allow-list membership. It may be a table or a spreadsheet export.
type Whitelist interface {
	Contains(ctx context.Context, wallet string) (bool, error)
}

// TicketStore keeps issued registration tickets.
type TicketStore interface {
	Save(ctx context.Context, ticket, wallet string, ttl time.Duration) error
}

// Eligibility is the gate's verdict for one wallet.
type Eligibility struct {
	Wallet      string     `json:"wallet"`
	Eligible    bool       `json:"eligible"`
	Whitelisted bool       `json:"whitelisted"`
	Registered  bool       `json:"registered"`
	MintedDoors []int      `json:"mintedDoors"`
	Reason      string     `json:"reason,omitempty"`
	Ticket      string     `json:"ticket,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// Service decides who may register.
type Service struct {
	whitelist    Whitelist
	participants calendar.ParticipantRepository
	mints        calendar.MintRepository
	tickets      TicketStore
	ttl          time.Duration
	log          zerolog.Logger
}

type Option func(*Service)

func WithTicketTTL(d time.Duration) Option { return func(s *Service) { s.ttl = d } }
func WithLogger(l zerolog.Logger) Option   { return func(s *Service) { s.log = l } }

func NewService(whitelist Whitelist, participants calendar.ParticipantRepository, mints calendar.MintRepository, tickets TicketStore, opts ...Option) *Service {
	s := &Service{
		whitelist:    whitelist,
		participants: participants,
		mints:        mints,
		tickets:      tickets,
		ttl:          defaultTicketTTL,
		log:          logger.Component("eligibility"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ttl <= 0 {
		s.ttl = defaultTicketTTL
	}
	return s
}

// Check reports the wallet's state and, when it may register, issues a
// single-use ticket bound to it.
func (s *Service) Check(ctx context.Context, addr string, now time.Time) (*Eligibility, error) {
	if now.IsZero() {
		now = time.Now()
	}
	w, err := wallet.Normalize(addr)
	if err != nil {
		return nil, apperrors.NewValidationError("publicKey", "must be a base58 encoded 32-byte public key")
	}
	res := &Eligibility{Wallet: w, MintedDoors: []int{}}

	res.Whitelisted, err = s.whitelist.Contains(ctx, w)
	if err != nil {
		return nil, apperrors.NewStoreError("whitelist lookup", err)
	}

	p, err := s.participants.Get(ctx, w)
	switch {
	case err == nil:
		res.Registered = p.Active
	case !errors.Is(err, calendar.ErrNotFound):
		return nil, apperrors.NewStoreError("get participant", err)
	}

	mints, err := s.mints.ListByWallet(ctx, w)
	if err != nil {
		return nil, apperrors.NewStoreError("list mints", err)
	}
	for _, m := range mints {
		res.MintedDoors = append(res.MintedDoors, m.Door)
	}

	switch {
	case !res.Whitelisted:
		res.Reason = ReasonNotWhitelisted
		return res, nil
	case p != nil:
		// Deactivated wallets cannot register again either.
		res.Reason = ReasonAlreadyRegistered
		return res, nil
	}

	ticket, err := newTicket()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to issue ticket")
	}
	if err := s.tickets.Save(ctx, ticket, w, s.ttl); err != nil {
		return nil, apperrors.NewStoreError("save ticket", err)
	}
	expires := now.Add(s.ttl).UTC()
	res.Eligible = true
	res.Ticket = ticket
	res.ExpiresAt = &expires
	s.log.Debug().Str("wallet", w).Time("expires_at", expires).Msg("registration ticket issued")
	return res, nil
}

func newTicket() (string, error) {
	b := make([]byte, ticketBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random ticket: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
