package calendar

import (
	"context"
	"errors"
)

// Infrastructure facts returned (optionally wrapped) by repositories.
// Services translate them into application errors.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrLocked   = errors.New("already locked")
)

// ParticipantRepository persists registrations.
type ParticipantRepository interface {
	Get(ctx context.Context, wallet string) (*Participant, error)
	Create(ctx context.Context, p *Participant) error
	ListActive(ctx context.Context) ([]Participant, error)
	SetActive(ctx context.Context, wallet string, active bool) error
}

// PrizeRepository persists the prize catalog.
type PrizeRepository interface {
	// ListByDoor returns the door's prizes ordered by catalog position.
	ListByDoor(ctx context.Context, door int) ([]Prize, error)
	Get(ctx context.Context, id string) (*Prize, error)
	// Save inserts or replaces catalog entries, keeping the position of known ids.
	Save(ctx context.Context, prizes []Prize) error
}

// DoorSnapshot is the state an allocation plan is computed from.
type DoorSnapshot struct {
	Door         int
	Prizes       []Prize
	Participants []Participant
	Existing     []WinnerAssignment
}

// AllocationPlan computes the assignments to insert for a door. Returning an
// error aborts the allocation without persisting anything.
type AllocationPlan func(DoorSnapshot) ([]WinnerAssignment, error)

// WinnerRepository persists raffle results.
type WinnerRepository interface {
	CountByDoor(ctx context.Context, door int) (int, error)
	ListByDoor(ctx context.Context, door int) ([]WinnerAssignment, error)
	FindByWalletAndDoor(ctx context.Context, wallet string, door int) (*WinnerAssignment, error)
	// AllocateDoor loads a snapshot of door and inserts the plan's assignments
	// as one atomic batch. Concurrent calls for the same door are serialised;
	// a uniqueness violation fails the call with ErrConflict.
	AllocateDoor(ctx context.Context, door int, plan AllocationPlan) ([]WinnerAssignment, error)
}

// MintRepository persists opened doors.
type MintRepository interface {
	Get(ctx context.Context, wallet string, door int) (*MintRecord, error)
	// Create fails with ErrConflict when (wallet, door) is already minted.
	Create(ctx context.Context, m *MintRecord) error
	ListByWallet(ctx context.Context, wallet string) ([]MintRecord, error)
}

// WhitelistRepository is the table-backed allow-list.
type WhitelistRepository interface {
	Contains(ctx context.Context, wallet string) (bool, error)
	Add(ctx context.Context, wallets ...string) (int, error)
}
