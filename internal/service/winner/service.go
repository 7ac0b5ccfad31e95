package winner

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	apperrors "advent-raffle-backend/internal/common/errors"
	"advent-raffle-backend/internal/common/logger"
	"advent-raffle-backend/internal/domain/calendar"
	"advent-raffle-backend/internal/platform/metrics"
	"advent-raffle-backend/internal/utils/wallet"
)

// Query results, as recorded in metrics.
const (
	resultWinner   = "winner"
	resultNoWin    = "not_winner"
	resultRejected = "rejected"
)

// Result answers whether a wallet won a door.
type Result struct {
	IsWinner       bool            `json:"isWinner"`
	Prize          *calendar.Prize `json:"prize"`
	AlreadyClaimed bool            `json:"alreadyClaimed"`
}

// Service looks up persisted allocations. It never draws winners itself.
type Service struct {
	participants calendar.ParticipantRepository
	winners      calendar.WinnerRepository
	prizes       calendar.PrizeRepository
	window       calendar.Window
	log          zerolog.Logger
	metrics      *metrics.Metrics
}

type Option func(*Service)

func WithLogger(l zerolog.Logger) Option   { return func(s *Service) { s.log = l } }
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func NewService(participants calendar.ParticipantRepository, winners calendar.WinnerRepository, prizes calendar.PrizeRepository, window calendar.Window, opts ...Option) *Service {
	s := &Service{
		participants: participants,
		winners:      winners,
		prizes:       prizes,
		window:       window,
		log:          logger.Component("winner"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryWinner reports whether wallet won door as of now.
func (s *Service) QueryWinner(ctx context.Context, addr string, door int, now time.Time) (*Result, error) {
	res, err := s.query(ctx, addr, door, now)
	switch {
	case err != nil:
		s.metrics.ObserveWinnerQuery(resultRejected)
	case res.IsWinner:
		s.metrics.ObserveWinnerQuery(resultWinner)
	default:
		s.metrics.ObserveWinnerQuery(resultNoWin)
	}
	return res, err
}

func (s *Service) query(ctx context.Context, addr string, door int, now time.Time) (*Result, error) {
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

	if !s.window.DoorOpen(door, now) {
		return nil, apperrors.Newf(apperrors.ErrCodeDoorNotYetOpen, "door %d is not open yet", door).
			WithDetail("opens_at", s.window.DoorOpensAt(door, now))
	}

	assignment, err := s.winners.FindByWalletAndDoor(ctx, w, door)
	if errors.Is(err, calendar.ErrNotFound) {
		return &Result{}, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreError("find winner", err)
	}

	prize, err := s.prizes.Get(ctx, assignment.PrizeID)
	if errors.Is(err, calendar.ErrNotFound) {
		s.metrics.IncStaleReference()
		s.log.Warn().
			Str("wallet", w).
			Int("door", door).
			Str("prize_id", assignment.PrizeID).
			Int64("assignment_id", assignment.ID).
			Msg("winner record references a missing prize")
		return &Result{}, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get prize", err)
	}
	return &Result{IsWinner: true, Prize: prize, AlreadyClaimed: assignment.Claimed}, nil
}
