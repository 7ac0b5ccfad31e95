package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "advent-raffle-backend/internal/common/errors"
	"advent-raffle-backend/internal/common/logger"
	"advent-raffle-backend/internal/common/validation"
	"advent-raffle-backend/internal/domain/calendar"
)

// Cache is a read-through JSON cache for door listings.
type Cache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func() (interface{}, error)) error
	DeletePattern(ctx context.Context, pattern string) error
}

// Service manages the prize catalog. The catalog freezes once the window opens.
type Service struct {
	prizes   calendar.PrizeRepository
	window   calendar.Window
	cache    Cache
	cacheTTL time.Duration
	log      zerolog.Logger
}

type Option func(*Service)

func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

// WithCache serves ListByDoor from c for ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

func NewService(prizes calendar.PrizeRepository, window calendar.Window, opts ...Option) *Service {
	s := &Service{prizes: prizes, window: window, log: logger.Component("catalog")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Decode reads a JSON array of prizes.
func Decode(r io.Reader) ([]calendar.Prize, error) {
	var prizes []calendar.Prize
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&prizes); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "prize file is not a JSON array of prizes")
	}
	return prizes, nil
}

// Import validates and stores prizes. Entries are upserted by id.
func (s *Service) Import(ctx context.Context, prizes []calendar.Prize, now time.Time) (int, error) {
	if now.IsZero() {
		now = time.Now()
	}
	if s.window.Started(now) {
		return 0, apperrors.New(apperrors.ErrCodeCatalogLocked, "prize catalog is frozen once the raffle has started").
			WithDetail("started_at", s.window.Start(now))
	}
	if len(prizes) == 0 {
		return 0, apperrors.NewValidationError("prizes", "at least one prize is required")
	}

	seen := make(map[string]struct{}, len(prizes))
	clean := make([]calendar.Prize, 0, len(prizes))
	for i, p := range prizes {
		p.ID = strings.TrimSpace(p.ID)
		p.Name = strings.TrimSpace(p.Name)
		field := func(name string) string { return fmt.Sprintf("prizes[%d].%s", i, name) }
		if err := validation.ValidatePrizeID(p.ID); err != nil {
			return 0, apperrors.NewValidationError(field("id"), err.Error())
		}
		if !calendar.ValidDoor(p.Door) {
			return 0, apperrors.NewValidationError(field("door"), fmt.Sprintf("must be between 1 and %d", calendar.DoorCount))
		}
		if err := validation.ValidatePositiveInt(p.Quantity); err != nil {
			return 0, apperrors.NewValidationError(field("quantity"), err.Error())
		}
		if err := validation.ValidateRequiredText(p.Name, validation.MaxPrizeNameLength); err != nil {
			return 0, apperrors.NewValidationError(field("name"), err.Error())
		}
		if err := validation.ValidateOptionalText(p.Message, validation.MaxPrizeMessageLength); err != nil {
			return 0, apperrors.NewValidationError(field("message"), err.Error())
		}
		if err := validation.ValidateOptionalText(p.Sponsor, validation.MaxSponsorLength); err != nil {
			return 0, apperrors.NewValidationError(field("sponsor"), err.Error())
		}
		if _, dup := seen[p.ID]; dup {
			return 0, apperrors.NewValidationError(field("id"), fmt.Sprintf("duplicate id %q", p.ID))
		}
		seen[p.ID] = struct{}{}
		p.Position = 0
		clean = append(clean, p)
	}

	if err := s.prizes.Save(ctx, clean); err != nil {
		return 0, apperrors.NewStoreError("save prizes", err)
	}
	if s.cache != nil {
		if err := s.cache.DeletePattern(ctx, "door:*"); err != nil {
			s.log.Warn().Err(err).Msg("failed to invalidate catalog cache")
		}
	}
	s.log.Info().Int("prizes", len(clean)).Msg("prize catalog imported")
	return len(clean), nil
}

// ListByDoor returns the door's prizes in draw order.
func (s *Service) ListByDoor(ctx context.Context, door int) ([]calendar.Prize, error) {
	if !calendar.ValidDoor(door) {
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidDoor, "door must be between 1 and %d", calendar.DoorCount).
			WithDetail("door", door)
	}
	if s.cache == nil {
		return s.load(ctx, door)
	}

	var (
		prizes  []calendar.Prize
		loadErr error
	)
	err := s.cache.GetOrSet(ctx, fmt.Sprintf("door:%d", door), &prizes, s.cacheTTL, func() (interface{}, error) {
		list, err := s.load(ctx, door)
		loadErr = err
		return list, err
	})
	switch {
	case loadErr != nil:
		return nil, loadErr
	case err != nil:
		s.log.Warn().Err(err).Int("door", door).Msg("catalog cache unavailable")
		return s.load(ctx, door)
	}
	if prizes == nil {
		prizes = []calendar.Prize{}
	}
	return prizes, nil
}

func (s *Service) load(ctx context.Context, door int) ([]calendar.Prize, error) {
	prizes, err := s.prizes.ListByDoor(ctx, door)
	if err != nil {
		return nil, apperrors.NewStoreError("list prizes", err)
	}
	if prizes == nil {
		prizes = []calendar.Prize{}
	}
	return prizes, nil
}
