package registration

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "advent-raffle-backend/internal/common/errors"
	"advent-raffle-backend/internal/common/logger"
	"advent-raffle-backend/internal/domain/calendar"
	"advent-raffle-backend/internal/platform/metrics"
	"advent-raffle-backend/internal/platform/minter"
	"advent-raffle-backend/internal/service/eligibility"
	"advent-raffle-backend/internal/utils/wallet"
)

// TicketConsumer redeems eligibility tickets.
type TicketConsumer interface {
	Consume(ctx context.Context, ticket string) (string, error)
}

// Cache holds recent registration lookups.
type Cache interface {
	Get(ctx context.Context, wallet string) (registered, found bool, err error)
	Set(ctx context.Context, wallet string, registered bool) error
	Invalidate(ctx context.Context, wallet string) error
}

// Service is the registration ledger.
type Service struct {
	participants calendar.ParticipantRepository
	whitelist    eligibility.Whitelist
	tickets      TicketConsumer
	minter       minter.Minter
	cache        Cache
	log          zerolog.Logger
	metrics      *metrics.Metrics
}

type Option func(*Service)

func WithCache(c Cache) Option              { return func(s *Service) { s.cache = c } }
func WithLogger(l zerolog.Logger) Option     { return func(s *Service) { s.log = l } }
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func NewService(participants calendar.ParticipantRepository, whitelist eligibility.Whitelist, tickets TicketConsumer, m minter.Minter, opts ...Option) *Service {
	s := &Service{
		participants: participants,
		whitelist:    whitelist,
		tickets:      tickets,
		minter:       m,
		log:          logger.Component("registration"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalize(addr string) (string, error) {
	w, err := wallet.Normalize(addr)
	if err != nil {
		return "", apperrors.NewValidationError("publicKey", "must be a base58 encoded 32-byte public key")
	}
	return w, nil
}

// IsRegistered reports whether wallet holds an active registration.
func (s *Service) IsRegistered(ctx context.Context, addr string) (bool, error) {
	w, err := normalize(addr)
	if err != nil {
		return false, err
	}
	if s.cache != nil {
		registered, found, err := s.cache.Get(ctx, w)
		if err != nil {
			s.log.Warn().Err(err).Str("wallet", w).Msg("registration cache read failed")
		} else if found {
			return registered, nil
		}
	}

	p, err := s.participants.Get(ctx, w)
	registered := err == nil && p.Active
	if err != nil && !errors.Is(err, calendar.ErrNotFound) {
		return false, apperrors.NewStoreError("get participant", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, w, registered); err != nil {
			s.log.Warn().Err(err).Str("wallet", w).Msg("registration cache write failed")
		}
	}
	return registered, nil
}

// RegisterRequest carries the ticket issued by the eligibility gate.
type RegisterRequest struct {
	Wallet string `json:"publicKey"`
	Ticket string `json:"ticket"`
}

// Register redeems a ticket, mints the registration NFT and records the participant.
func (s *Service) Register(ctx context.Context, req RegisterRequest, now time.Time) (*calendar.Participant, error) {
	w, err := normalize(req.Wallet)
	if err != nil {
		return nil, err
	}
	ticket := strings.TrimSpace(req.Ticket)
	if ticket == "" {
		return nil, apperrors.NewValidationError("ticket", "is required")
	}
	if now.IsZero() {
		now = time.Now()
	}
	log := s.log.With().Str("wallet", w).Logger()

	owner, err := s.tickets.Consume(ctx, ticket)
	switch {
	case errors.Is(err, calendar.ErrNotFound):
		return nil, apperrors.New(apperrors.ErrCodeInvalidTicket, "ticket is unknown or expired")
	case err != nil:
		return nil, apperrors.NewStoreError("consume ticket", err)
	case owner != w:
		log.Warn().Msg("ticket presented by a different wallet")
		return nil, apperrors.New(apperrors.ErrCodeInvalidTicket, "ticket was issued to another wallet")
	}

	ok, err := s.whitelist.Contains(ctx, w)
	if err != nil {
		return nil, apperrors.NewStoreError("whitelist lookup", err)
	}
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeNotWhitelisted, "wallet is not whitelisted")
	}

	if _, err := s.participants.Get(ctx, w); err == nil {
		return nil, apperrors.New(apperrors.ErrCodeAlreadyRegistered, "wallet is already registered")
	} else if !errors.Is(err, calendar.ErrNotFound) {
		return nil, apperrors.NewStoreError("get participant", err)
	}

	nft, err := s.minter.MintRegistration(ctx, w)
	if err != nil {
		log.Error().Err(err).Msg("registration mint failed")
		return nil, apperrors.Wrap(err, apperrors.ErrCodeMintFailed, "failed to mint registration NFT")
	}

	p := &calendar.Participant{Wallet: w, Active: true, RegisteredAt: now.UTC(), RegistrationNFT: nft}
	if err := s.participants.Create(ctx, p); err != nil {
		if errors.Is(err, calendar.ErrConflict) {
			return nil, apperrors.New(apperrors.ErrCodeAlreadyRegistered, "wallet is already registered")
		}
		log.Error().Err(err).Str("nft", nft).Msg("registration minted but not saved")
		return nil, apperrors.NewStoreError("create participant", err)
	}
	s.invalidate(ctx, w)
	s.metrics.IncRegistrations()
	log.Info().Str("nft", nft).Msg("wallet registered")
	return p, nil
}

// Deactivate revokes a registration. The row is kept.
func (s *Service) Deactivate(ctx context.Context, addr string) error {
	w, err := normalize(addr)
	if err != nil {
		return err
	}
	if err := s.participants.SetActive(ctx, w, false); err != nil {
		if errors.Is(err, calendar.ErrNotFound) {
			return apperrors.New(apperrors.ErrCodeNotRegistered, "wallet is not registered")
		}
		return apperrors.NewStoreError("deactivate participant", err)
	}
	s.invalidate(ctx, w)
	s.log.Info().Str("wallet", w).Msg("registration deactivated")
	return nil
}

func (s *Service) invalidate(ctx context.Context, w string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, w); err != nil {
		s.log.Warn().Err(err).Str("wallet", w).Msg("registration cache invalidation failed")
	}
}
