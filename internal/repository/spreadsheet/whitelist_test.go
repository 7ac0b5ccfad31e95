package spreadsheet

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advent-raffle-backend/internal/testutil"
)

func TestParse(t *testing.T) {
	in := "\uFEFFwallet,name\n" +
		testutil.Wallet(1) + ",alice\n" +
		"# paused for now\n" +
		" " + testutil.Wallet(2) + "\n" +
		"not-a-wallet,bob\n" +
		testutil.Wallet(1) + ",alice again\n"

	got, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, got, testutil.Wallet(1))
	assert.Contains(t, got, testutil.Wallet(2))
}

func TestOpenAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whitelist.csv")
	require.NoError(t, os.WriteFile(path, []byte(testutil.Wallet(1)+"\n"), 0o600))

	wl, err := Open(path)
	require.NoError(t, err)
	ok, err := wl.Contains(context.Background(), testutil.Wallet(1))
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, os.WriteFile(path, []byte(testutil.Wallet(2)+"\n"), 0o600))
	require.NoError(t, wl.Reload())
	ok, _ = wl.Contains(context.Background(), testutil.Wallet(1))
	assert.False(t, ok)
	assert.Equal(t, 1, wl.Len())

	_, err = Open(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
