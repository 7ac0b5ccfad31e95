package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advent-raffle-backend/internal/app"
	apperrors "advent-raffle-backend/internal/common/errors"
	"advent-raffle-backend/internal/config"
	"advent-raffle-backend/internal/domain/calendar"
	"advent-raffle-backend/internal/service/raffle"
	"advent-raffle-backend/internal/testutil"
)

type harness struct {
	app *app.App
	out bytes.Buffer
}

func newHarness(t *testing.T, year string) *harness {
	t.Helper()
	t.Setenv("RAFFLE_SECRET_TOKEN", "s3cret")
	t.Setenv("STORAGE_DRIVER", config.StorageDriverMemory)
	t.Setenv("CALENDAR_YEAR", year)
	cfg, err := config.Load()
	require.NoError(t, err)
	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	return &harness{app: a}
}

// run executes args against the shared in-memory app.
func (h *harness) run(args ...string) error {
	h.out.Reset()
	open := func(context.Context, bool) (*app.App, error) { return h.app, nil }
	return newCLI(open, &h.out).Run(append([]string{"raffle"}, args...))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPrizesImportAndList(t *testing.T) {
	// Imports are evaluated at the real clock, so the window must lie ahead.
	h := newHarness(t, "2099")
	path := writeFile(t, "prizes.json", `[
		{"id": "A", "door": 3, "quantity": 2, "name": "Hoodie"},
		{"id": "B", "door": 3, "quantity": 1, "name": "Mug", "sponsor": "Acme"}
	]`)

	require.NoError(t, h.run("prizes", "import", path))
	assert.Contains(t, h.out.String(), "imported 2 prizes")

	require.NoError(t, h.run("prizes", "list", "--door", "3"))
	var prizes []calendar.Prize
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &prizes))
	require.Len(t, prizes, 2)
	assert.Equal(t, "A", prizes[0].ID)
	assert.Equal(t, "Acme", prizes[1].Sponsor)

	assert.Error(t, h.run("prizes", "import", writeFile(t, "bad.json", `[{"id": "C", "door": 30, "quantity": 1, "name": "x"}]`)))
	assert.Error(t, h.run("prizes", "import"))
}

func TestPrizesImportLockedOnceWindowStarted(t *testing.T) {
	h := newHarness(t, "2024")
	path := writeFile(t, "prizes.json", `[{"id": "A", "door": 3, "quantity": 1, "name": "Hoodie"}]`)

	err := h.run("prizes", "import", path)
	assert.Equal(t, apperrors.ErrCodeCatalogLocked, apperrors.CodeOf(err))
}

func TestRunAllocatesDoor(t *testing.T) {
	h := newHarness(t, "2024")
	ctx := context.Background()
	for _, w := range testutil.Wallets(3) {
		require.NoError(t, h.app.Participants.Create(ctx, &calendar.Participant{Wallet: w, Active: true}))
	}
	require.NoError(t, h.app.Prizes.Save(ctx, []calendar.Prize{{ID: "A", Door: 4, Quantity: 5, Name: "Hoodie"}}))

	require.NoError(t, h.run("run", "--door", "4", "--at", "2024-12-04T09:00:00+01:00"))
	var res raffle.AllocationResult
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &res))
	assert.Equal(t, raffle.StatusAllocated, res.Status)
	assert.Len(t, res.Winners, 3, "pool exhaustion caps the winners")

	require.NoError(t, h.run("run", "--door", "4", "--at", "2024-12-05T09:00:00+01:00"))
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &res))
	assert.Equal(t, raffle.StatusAlreadyAllocated, res.Status)

	err := h.run("run", "--at", "2024-11-20T09:00:00+01:00")
	assert.Equal(t, apperrors.ErrCodeWindowClosed, apperrors.CodeOf(err))

	assert.Error(t, h.run("run", "--at", "yesterday"))
}

func TestWhitelistCommands(t *testing.T) {
	h := newHarness(t, "2024")
	ctx := context.Background()

	require.NoError(t, h.run("whitelist", "add", testutil.Wallet(1), testutil.Wallet(2)))
	assert.Contains(t, h.out.String(), "added 2 of 2 wallets")

	path := writeFile(t, "wl.csv", "wallet,name\n"+testutil.Wallet(2)+",bob\n"+testutil.Wallet(3)+",eve\nnot-a-wallet,x\n")
	require.NoError(t, h.run("whitelist", "import", path))
	assert.Contains(t, h.out.String(), "added 1 of 2 wallets")

	ok, err := h.app.WhitelistTable.Contains(ctx, testutil.Wallet(3))
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Error(t, h.run("whitelist", "add", "not-a-wallet"))
	assert.Error(t, h.run("whitelist", "add"))
}

func TestParticipantsDeactivate(t *testing.T) {
	h := newHarness(t, "2024")
	ctx := context.Background()
	w := testutil.Wallet(1)
	require.NoError(t, h.app.Participants.Create(ctx, &calendar.Participant{Wallet: w, Active: true}))

	require.NoError(t, h.run("participants", "deactivate", w))
	p, err := h.app.Participants.Get(ctx, w)
	require.NoError(t, err)
	assert.False(t, p.Active)

	err = h.run("participants", "deactivate", testutil.Wallet(2))
	assert.Equal(t, apperrors.ErrCodeNotRegistered, apperrors.CodeOf(err))
}

func TestMigrateNeedsPostgres(t *testing.T) {
	h := newHarness(t, "2024")
	assert.Error(t, h.run("migrate"))
}
