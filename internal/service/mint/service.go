package mint

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "advent-raffle-backend/internal/common/errors"
	"advent-raffle-backend/internal/common/logger"
	"advent-raffle-backend/internal/domain/calendar"
	"advent-raffle-backend/internal/platform/metrics"
	"advent-raffle-backend/internal/platform/minter"
	"advent-raffle-backend/internal/utils/wallet"
)

// Result is a mint and whether this call created it.
type Result struct {
	Record  *calendar.MintRecord `json:"mint"`
	Created bool                 `json:"created"`
}

// Service is the mint ledger: one opened door per wallet and day.
type Service struct {
	participants calendar.ParticipantRepository
	mints        calendar.MintRepository
	minter       minter.Minter
	window       calendar.Window
	log          zerolog.Logger
	metrics      *metrics.Metrics
}

type Option func(*Service)

func WithLogger(l zerolog.Logger) Option   { return func(s *Service) { s.log = l } }
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func NewService(participants calendar.ParticipantRepository, mints calendar.MintRepository, m minter.Minter, window calendar.Window, opts ...Option) *Service {
	s := &Service{
		participants: participants,
		mints:        mints,
		minter:       m,
		window:       window,
		log:          logger.Component("mint"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordMint opens door for wallet. Doors can only be opened on their own
// day; repeating the call returns the existing record.
func (s *Service) RecordMint(ctx context.Context, addr string, door int, now time.Time) (*Result, error) {
	if now.IsZero() {
		now = time.Now()
	}
	w, err := wallet.Normalize(addr)
	if err != nil {
		return nil, apperrors.NewValidationError("wallet", "must be a base58 encoded 32-byte public key")
	}
	if !calendar.ValidDoor(door) {
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidDoor, "door must be between 1 and %d", calendar.DoorCount).
			WithDetail("door", door)
	}

	p, err := s.participants.Get(ctx, w)
	switch {
	case errors.Is(err, calendar.ErrNotFound):
		return nil, apperrors.New(apperrors.ErrCodeNotRegistered, "wallet is not registered")
	case err != nil:
		return nil, apperrors.NewStoreError("get participant", err)
	case !p.Active:
		return nil, apperrors.New(apperrors.ErrCodeNotRegistered, "wallet registration is inactive")
	}

	existing, err := s.mints.Get(ctx, w, door)
	if err == nil {
		s.metrics.ObserveMint(false)
		return &Result{Record: existing}, nil
	}
	if !errors.Is(err, calendar.ErrNotFound) {
		return nil, apperrors.NewStoreError("get mint", err)
	}

	today := s.window.Day(now)
	switch {
	case !s.window.Contains(now):
		return nil, apperrors.New(apperrors.ErrCodeWindowClosed, "calendar is not active")
	case door > today:
		return nil, apperrors.Newf(apperrors.ErrCodeDoorNotYetOpen, "door %d is not open yet", door).
			WithDetail("opens_at", s.window.DoorOpensAt(door, now))
	case door < today:
		return nil, apperrors.Newf(apperrors.ErrCodeDoorClosed, "door %d can no longer be opened", door)
	}

	log := s.log.With().Str("wallet", w).Int("door", door).Logger()
	nft, err := s.minter.MintDoor(ctx, w, door)
	if err != nil {
		log.Error().Err(err).Msg("door mint failed")
		return nil, apperrors.Wrap(err, apperrors.ErrCodeMintFailed, "failed to mint door NFT")
	}

	rec := &calendar.MintRecord{
		ID:                  uuid.NewString(),
		Wallet:              w,
		Door:                door,
		NFTReference:        nft,
		IsEligibleForRaffle: true,
		MintedAt:            now.UTC(),
	}
	if err := s.mints.Create(ctx, rec); err != nil {
		if errors.Is(err, calendar.ErrConflict) {
			// A concurrent request won; report its row.
			existing, getErr := s.mints.Get(ctx, w, door)
			if getErr != nil {
				return nil, apperrors.NewStoreError("get mint", getErr)
			}
			log.Warn().Str("nft", nft).Msg("duplicate door mint discarded")
			s.metrics.ObserveMint(false)
			return &Result{Record: existing}, nil
		}
		return nil, apperrors.NewStoreError("create mint", err)
	}
	s.metrics.ObserveMint(true)
	log.Info().Str("nft", nft).Msg("door opened")
	return &Result{Record: rec, Created: true}, nil
}

// OpenedDoors lists the wallet's mints ordered by door.
func (s *Service) OpenedDoors(ctx context.Context, addr string) ([]calendar.MintRecord, error) {
	w, err := wallet.Normalize(addr)
	if err != nil {
		return nil, apperrors.NewValidationError("wallet", "must be a base58 encoded 32-byte public key")
	}
	list, err := s.mints.ListByWallet(ctx, w)
	if err != nil {
		return nil, apperrors.NewStoreError("list mints", err)
	}
	if list == nil {
		list = []calendar.MintRecord{}
	}
	return list, nil
}
