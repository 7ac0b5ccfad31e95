package raffle

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	apperrors "advent-raffle-backend/internal/common/errors"
	"advent-raffle-backend/internal/common/logger"
	"advent-raffle-backend/internal/domain/calendar"
	"advent-raffle-backend/internal/platform/metrics"
	"advent-raffle-backend/internal/utils/random"
)

// Result statuses.
const (
	StatusAllocated        = "allocated"
	StatusAlreadyAllocated = "already_allocated"
)

const defaultLockTTL = 30 * time.Second

var errAlreadyAllocated = errors.New("door already allocated")

// Locker is a best-effort cross-instance lease.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

// AllocationRequest triggers a raffle run. Door 0 means the current day's door.
type AllocationRequest struct {
	Door  int
	Token string
	Now   time.Time
}

// AllocationResult reports a run. Winners holds only assignments created by this call.
type AllocationResult struct {
	Status  string                      `json:"status"`
	Door    int                         `json:"door"`
	Day     int                         `json:"day"`
	DayDate string                      `json:"day_date"`
	Winners []calendar.WinnerAssignment `json:"winners"`
}

func (r *AllocationResult) WinnersCount() int { return len(r.Winners) }

// Service runs the daily prize allocation.
type Service struct {
	prizes  calendar.PrizeRepository
	winners calendar.WinnerRepository
	window  calendar.Window
	secret  string

	picker  random.Picker
	locker  Locker
	lockTTL time.Duration
	log     zerolog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithPicker(p random.Picker) Option { return func(s *Service) { s.picker = p } }

// WithLocker guards runs with a lease taken for ttl.
func WithLocker(l Locker, ttl time.Duration) Option {
	return func(s *Service) {
		s.locker = l
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func WithLogger(l zerolog.Logger) Option   { return func(s *Service) { s.log = l } }
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func NewService(prizes calendar.PrizeRepository, winners calendar.WinnerRepository, window calendar.Window, secret string, opts ...Option) *Service {
	s := &Service{
		prizes:  prizes,
		winners: winners,
		window:  window,
		secret:  secret,
		lockTTL: defaultLockTTL,
		log:     logger.Component("raffle"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.picker == nil {
		src, err := random.NewSourceFromSeed(0)
		if err != nil {
			src = random.NewSource(time.Now().UnixNano())
		}
		s.picker = src
	}
	return s
}

func (s *Service) authorized(token string) bool {
	if s.secret == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.secret)) == 1
}

// Allocate draws and persists the winners of a door. A door that already has
// winners yields StatusAlreadyAllocated and writes nothing.
func (s *Service) Allocate(ctx context.Context, req AllocationRequest) (*AllocationResult, error) {
	if !s.authorized(req.Token) {
		s.metrics.ObserveAllocation(metrics.OutcomeRejected)
		return nil, apperrors.New(apperrors.ErrCodeUnauthorized, "invalid or missing raffle token")
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	if !s.window.Contains(now) {
		s.metrics.ObserveAllocation(metrics.OutcomeRejected)
		return nil, apperrors.New(apperrors.ErrCodeWindowClosed, "raffle is not active").
			WithDetail("starts_at", s.window.Start(now)).
			WithDetail("ends_at", s.window.End(now))
	}

	today := s.window.Day(now)
	door := req.Door
	if door == 0 {
		door = today
	}
	if !calendar.ValidDoor(door) {
		s.metrics.ObserveAllocation(metrics.OutcomeRejected)
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidDoor, "door must be between 1 and %d", calendar.DoorCount).
			WithDetail("door", door)
	}
	if door > today {
		s.metrics.ObserveAllocation(metrics.OutcomeRejected)
		return nil, apperrors.Newf(apperrors.ErrCodeDoorNotYetOpen, "door %d opens on day %d", door, door).
			WithDetail("opens_at", s.window.DoorOpensAt(door, now))
	}

	result := &AllocationResult{Door: door, Day: today, DayDate: s.window.DayDate(now)}
	log := s.log.With().Int("door", door).Str("day_date", result.DayDate).Logger()

	prizes, err := s.prizes.ListByDoor(ctx, door)
	if err != nil {
		s.metrics.ObserveAllocation(metrics.OutcomeFailed)
		return nil, apperrors.NewStoreError("list prizes", err)
	}
	if len(prizes) == 0 {
		s.metrics.ObserveAllocation(metrics.OutcomeRejected)
		return nil, apperrors.Newf(apperrors.ErrCodeNoPrizes, "no prizes configured for door %d", door)
	}

	existing, err := s.winners.CountByDoor(ctx, door)
	if err != nil {
		s.metrics.ObserveAllocation(metrics.OutcomeFailed)
		return nil, apperrors.NewStoreError("count winners", err)
	}
	if existing > 0 {
		return s.alreadyAllocated(log, result, existing), nil
	}

	release, err := s.lock(ctx, log, door)
	if err != nil {
		s.metrics.ObserveAllocation(metrics.OutcomeConflict)
		return nil, err
	}
	defer release()

	created, err := s.winners.AllocateDoor(ctx, door, func(snap calendar.DoorSnapshot) ([]calendar.WinnerAssignment, error) {
		if len(snap.Existing) > 0 {
			return nil, errAlreadyAllocated
		}
		picks := Draw(snap, s.picker)
		for i := range picks {
			picks[i].DayDate = result.DayDate
		}
		return picks, nil
	})
	switch {
	case errors.Is(err, errAlreadyAllocated):
		return s.alreadyAllocated(log, result, 0), nil
	case errors.Is(err, calendar.ErrConflict):
		s.metrics.ObserveAllocation(metrics.OutcomeConflict)
		log.Warn().Err(err).Msg("concurrent allocation detected, nothing persisted")
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConflict, "allocation conflicted with a concurrent run; retry")
	case err != nil:
		s.metrics.ObserveAllocation(metrics.OutcomeFailed)
		log.Error().Err(err).Msg("allocation failed")
		return nil, apperrors.NewStoreError("allocate door", err)
	}

	result.Status = StatusAllocated
	result.Winners = created
	if result.Winners == nil {
		result.Winners = []calendar.WinnerAssignment{}
	}
	s.metrics.ObserveAllocation(metrics.OutcomeAllocated)
	s.metrics.AddWinners(strconv.Itoa(door), len(created))

	ev := log.Info()
	if len(created) == 0 {
		ev = log.Warn()
	}
	ev.Int("winners", len(created)).Int("prizes", len(prizes)).Msg("raffle allocated")
	return result, nil
}

func (s *Service) alreadyAllocated(log zerolog.Logger, result *AllocationResult, existing int) *AllocationResult {
	s.metrics.ObserveAllocation(metrics.OutcomeAlreadyAllocated)
	log.Info().Int("existing", existing).Msg("door already allocated")
	result.Status = StatusAlreadyAllocated
	result.Winners = []calendar.WinnerAssignment{}
	return result
}

// lock takes the door lease. An unreachable lock backend is logged and
// skipped since the transaction still serialises runs.
func (s *Service) lock(ctx context.Context, log zerolog.Logger, door int) (func(), error) {
	noop := func() {}
	if s.locker == nil {
		return noop, nil
	}
	key := fmt.Sprintf("lock:raffle:door:%d", door)
	token, err := s.locker.AcquireLock(ctx, key, s.lockTTL)
	if errors.Is(err, calendar.ErrLocked) {
		return nil, apperrors.Newf(apperrors.ErrCodeConflict, "allocation for door %d is already running", door)
	}
	if err != nil {
		log.Warn().Err(err).Msg("allocation lock unavailable, continuing without it")
		return noop, nil
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.locker.ReleaseLock(releaseCtx, key, token); err != nil {
			log.Warn().Err(err).Msg("failed to release allocation lock")
		}
	}, nil
}
