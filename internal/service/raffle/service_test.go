package raffle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	apperrors "advent-raffle-backend/internal/common/errors"
	"advent-raffle-backend/internal/domain/calendar"
	"advent-raffle-backend/internal/platform/metrics"
	"advent-raffle-backend/internal/repository/memory"
	"advent-raffle-backend/internal/testutil"
	"advent-raffle-backend/internal/utils/random"
)

const secret = "s3cret"

type fixture struct {
	store   *memory.Store
	metrics *metrics.Metrics
	svc     *Service
}

func newFixture(t *testing.T, participants int, opts ...Option) *fixture {
	t.Helper()
	store := memory.New()
	for _, w := range testutil.Wallets(participants) {
		require.NoError(t, store.Participants().Create(context.Background(), &calendar.Participant{Wallet: w, Active: true}))
	}
	m := metrics.New(prometheus.NewRegistry())
	opts = append([]Option{WithPicker(random.NewSource(42)), WithMetrics(m), WithLogger(zerolog.Nop())}, opts...)
	return &fixture{
		store:   store,
		metrics: m,
		svc:     NewService(store.Prizes(), store.Winners(), testutil.Window(), secret, opts...),
	}
}

func (f *fixture) prizes(t *testing.T, prizes ...calendar.Prize) {
	t.Helper()
	require.NoError(t, f.store.Prizes().Save(context.Background(), prizes))
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperrors.CodeOf(err), "error: %v", err)
}

func TestAllocate_DoorThreeScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)
	f.prizes(t,
		calendar.Prize{ID: "A", Door: 3, Quantity: 2, Name: "Hoodie"},
		calendar.Prize{ID: "B", Door: 3, Quantity: 1, Name: "Mug"},
	)

	res, err := f.svc.Allocate(ctx, AllocationRequest{Door: 3, Token: secret, Now: testutil.Day(3)})
	require.NoError(t, err)
	assert.Equal(t, StatusAllocated, res.Status)
	assert.Equal(t, 3, res.WinnersCount())
	assert.Equal(t, "2024-12-03", res.DayDate)

	stored, err := f.store.Winners().ListByDoor(ctx, 3)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, map[string]int{"A": 2, "B": 1}, countByPrize(stored))
	assertDistinctWallets(t, stored)

	valid := map[string]bool{}
	for _, w := range testutil.Wallets(5) {
		valid[w] = true
	}
	for _, w := range stored {
		assert.True(t, valid[w.Wallet])
		assert.False(t, w.Claimed)
		assert.Equal(t, "2024-12-03", w.DayDate)
	}
	assert.Equal(t, 3.0, promtest.ToFloat64(f.metrics.WinnersAssigned.WithLabelValues("3")))
}

func TestAllocate_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)
	f.prizes(t, calendar.Prize{ID: "A", Door: 2, Quantity: 2, Name: "Hoodie"})
	req := AllocationRequest{Door: 2, Token: secret, Now: testutil.Day(2)}

	first, err := f.svc.Allocate(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 2, first.WinnersCount())

	second, err := f.svc.Allocate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadyAllocated, second.Status)
	assert.Zero(t, second.WinnersCount())

	n, err := f.store.Winners().CountByDoor(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.AllocationsTotal.WithLabelValues(metrics.OutcomeAlreadyAllocated)))
}

func TestAllocate_ExhaustionIsNotAnError(t *testing.T) {
	f := newFixture(t, 3)
	f.prizes(t, calendar.Prize{ID: "A", Door: 1, Quantity: 5, Name: "Sticker"})

	res, err := f.svc.Allocate(context.Background(), AllocationRequest{Door: 1, Token: secret, Now: testutil.Day(1)})
	require.NoError(t, err)
	assert.Equal(t, 3, res.WinnersCount())
}

func TestAllocate_NoParticipants(t *testing.T) {
	f := newFixture(t, 0)
	f.prizes(t, calendar.Prize{ID: "A", Door: 1, Quantity: 1, Name: "Sticker"})

	res, err := f.svc.Allocate(context.Background(), AllocationRequest{Door: 1, Token: secret, Now: testutil.Day(1)})
	require.NoError(t, err)
	assert.Equal(t, StatusAllocated, res.Status)
	assert.NotNil(t, res.Winners)
	assert.Zero(t, res.WinnersCount())
}

func TestAllocate_DefaultsToTodaysDoor(t *testing.T) {
	f := newFixture(t, 2)
	f.prizes(t, calendar.Prize{ID: "A", Door: 5, Quantity: 1, Name: "Sticker"})

	res, err := f.svc.Allocate(context.Background(), AllocationRequest{Token: secret, Now: testutil.Day(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Door)
	assert.Equal(t, 5, res.Day)
	assert.Equal(t, 1, res.WinnersCount())
}

func TestAllocate_LatePastDoorIsAllowed(t *testing.T) {
	f := newFixture(t, 2)
	f.prizes(t, calendar.Prize{ID: "A", Door: 4, Quantity: 1, Name: "Sticker"})

	res, err := f.svc.Allocate(context.Background(), AllocationRequest{Door: 4, Token: secret, Now: testutil.Day(6)})
	require.NoError(t, err)
	assert.Equal(t, 1, res.WinnersCount())
}

func TestAllocate_Preconditions(t *testing.T) {
	tests := []struct {
		name string
		req  AllocationRequest
		code apperrors.ErrorCode
	}{
		{"missing token", AllocationRequest{Door: 3, Now: testutil.Day(3)}, apperrors.ErrCodeUnauthorized},
		{"wrong token", AllocationRequest{Door: 3, Token: "nope", Now: testutil.Day(3)}, apperrors.ErrCodeUnauthorized},
		{"before window", AllocationRequest{Door: 3, Token: secret, Now: time.Date(2024, time.November, 30, 23, 0, 0, 0, testutil.Window().Location())}, apperrors.ErrCodeWindowClosed},
		{"after window", AllocationRequest{Door: 3, Token: secret, Now: testutil.Day(25)}, apperrors.ErrCodeWindowClosed},
		{"door out of range", AllocationRequest{Door: 25, Token: secret, Now: testutil.Day(3)}, apperrors.ErrCodeInvalidDoor},
		{"negative door", AllocationRequest{Door: -1, Token: secret, Now: testutil.Day(3)}, apperrors.ErrCodeInvalidDoor},
		{"future door", AllocationRequest{Door: 4, Token: secret, Now: testutil.Day(3)}, apperrors.ErrCodeDoorNotYetOpen},
		{"no prizes", AllocationRequest{Door: 2, Token: secret, Now: testutil.Day(3)}, apperrors.ErrCodeNoPrizes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 5)
			f.prizes(t,
				calendar.Prize{ID: "A", Door: 3, Quantity: 2, Name: "Hoodie"},
				calendar.Prize{ID: "C", Door: 4, Quantity: 1, Name: "Cap"},
			)

			res, err := f.svc.Allocate(context.Background(), tt.req)
			requireCode(t, err, tt.code)
			assert.Nil(t, res)

			for door := 1; door <= calendar.DoorCount; door++ {
				n, err := f.store.Winners().CountByDoor(context.Background(), door)
				require.NoError(t, err)
				assert.Zero(t, n, "no state change on door %d", door)
			}
		})
	}
}

func TestAllocate_ConcurrentRunsAllocateOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	f.prizes(t,
		calendar.Prize{ID: "A", Door: 3, Quantity: 2, Name: "Hoodie"},
		calendar.Prize{ID: "B", Door: 3, Quantity: 1, Name: "Mug"},
	)

	const runs = 8
	results := make([]*AllocationResult, runs)
	var g errgroup.Group
	for i := 0; i < runs; i++ {
		i := i
		g.Go(func() error {
			res, err := f.svc.Allocate(ctx, AllocationRequest{Door: 3, Token: secret, Now: testutil.Day(3)})
			results[i] = res
			return err
		})
	}
	require.NoError(t, g.Wait())

	allocated := 0
	for _, res := range results {
		if res.Status == StatusAllocated {
			allocated++
			assert.Equal(t, 3, res.WinnersCount())
		} else {
			assert.Equal(t, StatusAlreadyAllocated, res.Status)
		}
	}
	assert.Equal(t, 1, allocated)

	stored, err := f.store.Winners().ListByDoor(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
	assertDistinctWallets(t, stored)
}

func TestAllocate_SameSeedSameWinners(t *testing.T) {
	run := func() []string {
		f := newFixture(t, 12, WithPicker(random.NewSource(7)))
		f.prizes(t, calendar.Prize{ID: "A", Door: 1, Quantity: 4, Name: "Sticker"})
		res, err := f.svc.Allocate(context.Background(), AllocationRequest{Door: 1, Token: secret, Now: testutil.Day(1)})
		require.NoError(t, err)
		var wallets []string
		for _, w := range res.Winners {
			wallets = append(wallets, w.Wallet)
		}
		return wallets
	}
	assert.Equal(t, run(), run())
}

// fakeLocker records lease calls.
type fakeLocker struct {
	mu       sync.Mutex
	err      error
	acquired []string
	released []string
}

func (l *fakeLocker) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", l.err
	}
	l.acquired = append(l.acquired, key)
	return "token", nil
}

func (l *fakeLocker) ReleaseLock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released = append(l.released, key)
	return nil
}

func TestAllocate_Lock(t *testing.T) {
	req := AllocationRequest{Door: 1, Token: secret, Now: testutil.Day(1)}
	prize := calendar.Prize{ID: "A", Door: 1, Quantity: 1, Name: "Sticker"}

	t.Run("held and released", func(t *testing.T) {
		locker := &fakeLocker{}
		f := newFixture(t, 2, WithLocker(locker, time.Minute))
		f.prizes(t, prize)

		_, err := f.svc.Allocate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, []string{"lock:raffle:door:1"}, locker.acquired)
		assert.Equal(t, []string{"lock:raffle:door:1"}, locker.released)
	})

	t.Run("held elsewhere", func(t *testing.T) {
		f := newFixture(t, 2, WithLocker(&fakeLocker{err: calendar.ErrLocked}, time.Minute))
		f.prizes(t, prize)

		_, err := f.svc.Allocate(context.Background(), req)
		requireCode(t, err, apperrors.ErrCodeConflict)
		n, _ := f.store.Winners().CountByDoor(context.Background(), 1)
		assert.Zero(t, n)
	})

	t.Run("backend down", func(t *testing.T) {
		f := newFixture(t, 2, WithLocker(&fakeLocker{err: errors.New("connection refused")}, time.Minute))
		f.prizes(t, prize)

		res, err := f.svc.Allocate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 1, res.WinnersCount())
	})
}

// failingWinners breaks every write.
type failingWinners struct {
	calendar.WinnerRepository
	err error
}

func (w failingWinners) AllocateDoor(ctx context.Context, door int, plan calendar.AllocationPlan) ([]calendar.WinnerAssignment, error) {
	return nil, w.err
}

func TestAllocate_StoreFailures(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.Prizes().Save(context.Background(), []calendar.Prize{{ID: "A", Door: 1, Quantity: 1, Name: "Sticker"}}))
	req := AllocationRequest{Door: 1, Token: secret, Now: testutil.Day(1)}

	t.Run("unique violation", func(t *testing.T) {
		winners := failingWinners{WinnerRepository: store.Winners(), err: calendar.ErrConflict}
		svc := NewService(store.Prizes(), winners, testutil.Window(), secret, WithLogger(zerolog.Nop()))
		_, err := svc.Allocate(context.Background(), req)
		requireCode(t, err, apperrors.ErrCodeConflict)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.True(t, appErr.Retryable())
	})

	t.Run("connectivity", func(t *testing.T) {
		winners := failingWinners{WinnerRepository: store.Winners(), err: context.DeadlineExceeded}
		svc := NewService(store.Prizes(), winners, testutil.Window(), secret, WithLogger(zerolog.Nop()))
		_, err := svc.Allocate(context.Background(), req)
		requireCode(t, err, apperrors.ErrCodeStoreUnavailable)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
