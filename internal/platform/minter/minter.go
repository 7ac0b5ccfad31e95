// Package minter is the boundary to the NFT minting backend.
package minter

//go:generate mockgen -source=minter.go -destination=mocks/mocks.go -package=mocks Minter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Minter issues NFTs to wallets and returns a reference to the minted asset.
type Minter interface {
	MintRegistration(ctx context.Context, wallet string) (string, error)
	MintDoor(ctx context.Context, wallet string, door int) (string, error)
}

// Dev fabricates references without touching a chain. It backs local runs.
type Dev struct {
	log zerolog.Logger
}

func NewDev(log zerolog.Logger) *Dev { return &Dev{log: log} }

func (d *Dev) MintRegistration(ctx context.Context, wallet string) (string, error) {
	ref := "dev-registration-" + uuid.NewString()
	d.log.Debug().Str("wallet", wallet).Str("nft", ref).Msg("registration NFT minted")
	return ref, ctx.Err()
}

func (d *Dev) MintDoor(ctx context.Context, wallet string, door int) (string, error) {
	ref := fmt.Sprintf("dev-door-%02d-%s", door, uuid.NewString())
	d.log.Debug().Str("wallet", wallet).Int("door", door).Str("nft", ref).Msg("door NFT minted")
	return ref, ctx.Err()
}

// WithTimeout bounds every call of m.
func WithTimeout(m Minter, d time.Duration) Minter {
	if d <= 0 {
		return m
	}
	return timeoutMinter{next: m, timeout: d}
}

type timeoutMinter struct {
	next    Minter
	timeout time.Duration
}

func (t timeoutMinter) MintRegistration(ctx context.Context, wallet string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.MintRegistration(ctx, wallet)
}

func (t timeoutMinter) MintDoor(ctx context.Context, wallet string, door int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.MintDoor(ctx, wallet, door)
}
